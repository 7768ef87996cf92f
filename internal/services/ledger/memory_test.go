package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/lanova-arcade/internal/dependencies/mocks"
	"github.com/mcoot/lanova-arcade/internal/model"
)

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	clk := mocks.NewMockClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	client := NewMemoryClient(clk, 20)

	result, err := client.AwardCoins(ctx, model.AwardRequest{IdempotencyKey: "a:1", PlayerID: "p", Score: 1599})
	assert.NoError(t, err)
	assert.Equal(t, 15, result.CoinsAwarded)
	assert.Equal(t, 15, result.NewBalance)

	// Same key returns the first answer without paying twice
	result, err = client.AwardCoins(ctx, model.AwardRequest{IdempotencyKey: "a:1", PlayerID: "p", Score: 1599})
	assert.NoError(t, err)
	assert.Equal(t, 15, result.CoinsAwarded)
	assert.Equal(t, 15, client.Balance("p"))

	// Daily cap clamps the award
	result, err = client.AwardCoins(ctx, model.AwardRequest{IdempotencyKey: "b:1", PlayerID: "p", Score: 1000})
	assert.NoError(t, err)
	assert.Equal(t, 5, result.CoinsAwarded)
	assert.Equal(t, 20, client.Balance("p"))

	// Next day the cap resets
	clk.Advance(24 * time.Hour)
	result, err = client.AwardCoins(ctx, model.AwardRequest{IdempotencyKey: "c:1", PlayerID: "p", Score: 300})
	assert.NoError(t, err)
	assert.Equal(t, 3, result.CoinsAwarded)
	assert.Equal(t, 23, client.Balance("p"))
	assert.Equal(t, 4, client.Calls())

	_, err = client.AwardCoins(ctx, model.AwardRequest{IdempotencyKey: "d:1", PlayerID: "p", Score: -1})
	assert.ErrorIs(t, err, model.ErrLedgerRejected)
}
