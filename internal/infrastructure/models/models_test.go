package models_test

import (
	"sync"
	"testing"

	"github.com/Jeff-Lewis/Strata/internal/infrastructure/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestModels_Schema(t *testing.T) {
	cache := &sync.Map{}
	tables := map[string][]string{}
	for _, model := range models.All() {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		var keys []string
		for _, f := range s.PrimaryFields {
			keys = append(keys, f.DBName)
		}
		tables[s.Table] = keys
	}

	assert.Equal(t, map[string][]string{
		"quotes":       {"quote_id"},
		"curve_groups": {"name", "source"},
		"dsf_trades":   {"trade_id"},
		"dsf_products": {"trade_id"},
	}, tables)
}

func TestModels_QuoteIndex(t *testing.T) {
	s, err := schema.Parse(&models.QuoteModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx := s.LookIndex("idx_quotes_key_observed")
	require.NotNil(t, idx)
	var columns []string
	for _, opt := range idx.Fields {
		columns = append(columns, opt.DBName)
	}
	assert.Equal(t, []string{"scheme", "ticker", "source", "observed_at"}, columns)
}
