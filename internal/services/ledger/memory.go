package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/model"
)

// DefaultDailyCap is the most coins MemoryClient awards a player per day
const DefaultDailyCap = 100

// MemoryClient is a local stand-in for the ledger. It awards floor(score/100)
// coins up to a per-day cap and answers repeated keys with the first result.
type MemoryClient struct {
	mu       sync.Mutex
	clock    clock.Clock
	dailyCap int

	balances map[model.PlayerID]int
	daily    map[string]int // player:date -> coins awarded
	results  map[string]model.AwardResult
	calls    int
}

// NewMemoryClient creates a local ledger; dailyCap <= 0 disables the cap
func NewMemoryClient(clk clock.Clock, dailyCap int) *MemoryClient {
	return &MemoryClient{
		clock:    clk,
		dailyCap: dailyCap,
		balances: make(map[model.PlayerID]int),
		daily:    make(map[string]int),
		results:  make(map[string]model.AwardResult),
	}
}

var _ Client = (*MemoryClient)(nil)

func (c *MemoryClient) AwardCoins(ctx context.Context, req model.AwardRequest) (*model.AwardResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrLedgerCallFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	if prev, ok := c.results[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return &prev, nil
	}

	if req.Score < 0 {
		result := model.AwardResult{Success: false, Error: "score must not be negative"}
		c.results[req.IdempotencyKey] = result
		return &result, fmt.Errorf("%w: %s", model.ErrLedgerRejected, result.Error)
	}

	coins := req.Score / 100
	dayKey := fmt.Sprintf("%s:%s", req.PlayerID, c.clock.Now().UTC().Format("2006-01-02"))
	if c.dailyCap > 0 {
		coins = min(coins, max(c.dailyCap-c.daily[dayKey], 0))
	}
	c.daily[dayKey] += coins
	c.balances[req.PlayerID] += coins

	result := model.AwardResult{
		Success:      true,
		CoinsAwarded: coins,
		NewBalance:   c.balances[req.PlayerID],
	}
	if req.IdempotencyKey != "" {
		c.results[req.IdempotencyKey] = result
	}
	return &result, nil
}

// Balance returns a player's coin balance
func (c *MemoryClient) Balance(playerID model.PlayerID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[playerID]
}

// Calls returns how many award calls have been received
func (c *MemoryClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
