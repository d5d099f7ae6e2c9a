package main

import (
	"testing"
	"time"

	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestQuoteFromTrade(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("Should key the quote by figi", func(t *testing.T) {
		msg, err := quoteFromTrade(&pb.Trade{
			Figi:      "BBG004730N88",
			Price:     &pb.Quotation{Units: 301, Nano: 500000000},
			Quantity:  7,
			Direction: pb.TradeDirection_TRADE_DIRECTION_BUY,
			Time:      timestamppb.New(at),
		}, "Invest")
		require.NoError(t, err)

		assert.Equal(t, "FIGI", msg.Scheme)
		assert.Equal(t, "BBG004730N88", msg.Ticker)
		assert.Equal(t, "Invest", msg.Source)
		assert.InDelta(t, 301.5, msg.Value, 1e-9)
		assert.True(t, at.Equal(msg.ObservedAt))
		assert.Equal(t, int64(7), msg.Metadata["quantity_lots"])
		assert.Equal(t, "BUY", msg.Metadata["side"])

		q, err := msg.Quote()
		require.NoError(t, err)
		assert.Equal(t, "FIGI~BBG004730N88", q.Key.String())
	})

	t.Run("Should omit the side of an unspecified direction", func(t *testing.T) {
		msg, err := quoteFromTrade(&pb.Trade{
			Figi:  "BBG004730N88",
			Price: &pb.Quotation{Units: 301},
			Time:  timestamppb.New(at),
		}, "Invest")
		require.NoError(t, err)
		assert.NotContains(t, msg.Metadata, "side")
	})

	t.Run("Should skip incomplete prints", func(t *testing.T) {
		_, err := quoteFromTrade(nil, "Invest")
		assert.Error(t, err)
		_, err = quoteFromTrade(&pb.Trade{Figi: "X", Time: timestamppb.New(at)}, "Invest")
		assert.ErrorContains(t, err, "no price")
		_, err = quoteFromTrade(&pb.Trade{Price: &pb.Quotation{Units: 1}}, "Invest")
		assert.ErrorContains(t, err, "figi")
	})
}
