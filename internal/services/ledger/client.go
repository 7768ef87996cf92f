package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/lanova-arcade/internal/model"
)

// Client awards coins for finished runs. The ledger owns balances, daily
// limits and the score to coin conversion.
type Client interface {
	AwardCoins(ctx context.Context, req model.AwardRequest) (*model.AwardResult, error)
}

// HTTPConfig holds settings for the backend RPC client
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultHTTPConfig returns sensible defaults for the ledger client
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{Timeout: 10 * time.Second}
}

// HTTPClient calls the backend's award_coins RPC
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a new ledger client
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPConfig().Timeout
	}
	return &HTTPClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ Client = (*HTTPClient)(nil)

type awardCoinsArgs struct {
	UserID          string `json:"p_user_id"`
	GameType        string `json:"p_game_type"`
	Score           int    `json:"p_score"`
	DurationSeconds int    `json:"p_duration_seconds"`
}

type awardCoinsReply struct {
	Success      bool   `json:"success"`
	CoinsAwarded int    `json:"coins_awarded"`
	NewBalance   int    `json:"new_balance"`
	Error        string `json:"error"`
}

// AwardCoins performs a single award call. Transport failures and HTTP
// errors wrap model.ErrLedgerCallFailed; a well-formed refusal wraps
// model.ErrLedgerRejected and still returns the parsed result.
func (c *HTTPClient) AwardCoins(ctx context.Context, award model.AwardRequest) (*model.AwardResult, error) {
	data, err := json.Marshal(awardCoinsArgs{
		UserID:          string(award.PlayerID),
		GameType:        string(award.Game),
		Score:           award.Score,
		DurationSeconds: award.DurationSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/rest/v1/rpc/award_coins"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", model.ErrLedgerCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if award.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", award.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrLedgerCallFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", model.ErrLedgerCallFailed, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", model.ErrLedgerCallFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reply awardCoinsReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", model.ErrLedgerCallFailed, err)
	}

	result := &model.AwardResult{
		Success:      reply.Success,
		CoinsAwarded: reply.CoinsAwarded,
		NewBalance:   reply.NewBalance,
		Error:        reply.Error,
	}
	if !reply.Success {
		return result, fmt.Errorf("%w: %s", model.ErrLedgerRejected, reply.Error)
	}
	return result, nil
}
