package marketdata

import (
	"math"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"

	"github.com/google/uuid"
)

// Quote is a single observation of a market quantity.
type Quote struct {
	ID         uuid.UUID               `json:"id"`
	Key        basics.ObservableKey    `json:"key"`
	Source     basics.ObservableSource `json:"source"`
	Value      float64                 `json:"value"`
	ObservedAt time.Time               `json:"observed_at"`
	Metadata   map[string]any          `json:"metadata,omitempty"`
}

func (q *Quote) Validate() error {
	switch {
	case q.Key.Scheme == "" || q.Key.Value == "":
		return bean.Required("Quote", "key")
	case !q.Key.Valid():
		return bean.Invalid("Quote", "key", "scheme must not contain the key separator")
	case q.Source == "":
		return bean.Required("Quote", "source")
	case math.IsNaN(q.Value) || math.IsInf(q.Value, 0):
		return bean.Invalid("Quote", "value", "must be finite")
	case q.ObservedAt.IsZero():
		return bean.Required("Quote", "observedAt")
	}
	return nil
}
