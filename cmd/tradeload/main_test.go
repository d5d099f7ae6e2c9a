package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trades.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadTrades(t *testing.T) {
	t.Run("Should load the sample trades", func(t *testing.T) {
		messages, err := readTrades("trades.json")
		require.NoError(t, err)
		require.Len(t, messages, 1)

		tr, err := messages[0].Trade()
		require.NoError(t, err)
		assert.Equal(t, "DSF-T1U5-0001", tr.Info().ID)
		assert.Equal(t, "CME~T1U5", tr.Product().SecurityID)
	})

	t.Run("Should reject a trade that does not build", func(t *testing.T) {
		_, err := readTrades(writeFile(t, `[{"quantity":1,"price":0.5}]`))
		assert.ErrorIs(t, err, bean.ErrRequired)
		assert.ErrorContains(t, err, "trade 0")
	})

	t.Run("Should reject an empty file", func(t *testing.T) {
		_, err := readTrades(writeFile(t, `[]`))
		assert.Error(t, err)
	})

	t.Run("Should report a missing file", func(t *testing.T) {
		_, err := readTrades(filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorContains(t, err, "read trades file")
	})
}
