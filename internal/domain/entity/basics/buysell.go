package basics

import (
	"fmt"
	"math"
	"strings"
)

// BuySell is the direction of a trade from the point of view of the holder.
type BuySell string

const (
	Buy  BuySell = "BUY"
	Sell BuySell = "SELL"
)

func (bs BuySell) String() string {
	return string(bs)
}

func (bs BuySell) IsValid() bool {
	switch bs {
	case Buy, Sell:
		return true
	default:
		return false
	}
}

func NewBuySell(s string) (BuySell, error) {
	bs := BuySell(strings.ToUpper(strings.TrimSpace(s)))
	if !bs.IsValid() {
		return "", fmt.Errorf("invalid buy/sell: %s", s)
	}
	return bs, nil
}

// Normalize returns amount with the sign of the direction: positive for BUY, negative for SELL.
func (bs BuySell) Normalize(amount float64) float64 {
	if bs == Sell {
		return -math.Abs(amount)
	}
	return math.Abs(amount)
}
