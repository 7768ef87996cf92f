package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/notify"
)

// Broadcaster fans session events out to the SSE clients watching the
// session. It implements notify.Publisher so the game controller can drive
// it the same way as any other event sink.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

var _ notify.Publisher = (*Broadcaster)(nil)

// Publish sends the event to the session's hub. Sessions nobody is watching
// are skipped.
func (b *Broadcaster) Publish(_ context.Context, event model.Event) error {
	hub := b.hubManager.GetHub(event.SessionID)
	if hub == nil {
		return nil
	}

	msg := notify.NewMessage(event)
	msg.Payload = payloadFor(event)
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("session_id", string(event.SessionID)),
			slog.Any("error", err))
		return err
	}

	hub.Publish(EventName(event.Type), string(data))
	return nil
}

// Close disconnects every client
func (b *Broadcaster) Close() error {
	b.hubManager.CloseAll()
	return nil
}

// EventName is the SSE event name for an event type
func EventName(t model.EventType) string {
	if t == model.EventSettled {
		return "settlement"
	}
	return strings.ReplaceAll(string(t), "_", "-")
}

// CascadeStep is the cascade-step event body
type CascadeStep struct {
	CascadeIndex int                    `json:"cascade_index"`
	Cleared      []response.Position    `json:"cleared"`
	Specials     []response.PlacedPiece `json:"specials"`
	ScoreDelta   int                    `json:"score_delta"`
	MoveScore    int                    `json:"move_score"`
	Score        int                    `json:"score"`
	Board        *response.Board        `json:"board"`
	Done         bool                   `json:"done"`
}

// Swap is the swap-accepted and swap-rejected event body
type Swap struct {
	A response.Position `json:"a"`
	B response.Position `json:"b"`
}

// CellSelected is the cell-selected event body
type CellSelected struct {
	Selected *response.Position `json:"selected"`
}

// LevelUp is the level-up event body
type LevelUp struct {
	Level          int `json:"level"`
	TargetScore    int `json:"target_score"`
	MovesRemaining int `json:"moves_remaining"`
}

// SessionEnded is the session-ended event body
type SessionEnded struct {
	Reason          string `json:"reason"`
	Score           int    `json:"score"`
	DurationSeconds int    `json:"duration_seconds"`
}

// payloadFor converts a domain payload to its JSON body
func payloadFor(event model.Event) any {
	switch p := event.Payload.(type) {
	case model.CellSelectedPayload:
		out := CellSelected{}
		if p.Selected != nil {
			pos := response.PositionFromModel(*p.Selected)
			out.Selected = &pos
		}
		return out
	case model.SwapPayload:
		return Swap{A: response.PositionFromModel(p.A), B: response.PositionFromModel(p.B)}
	case model.CascadeStepPayload:
		specials := make([]response.PlacedPiece, len(p.Specials))
		for i, piece := range p.Specials {
			specials[i] = response.PlacedPieceFromModel(piece)
		}
		return CascadeStep{
			CascadeIndex: p.CascadeIndex,
			Cleared:      response.PositionsFromModel(p.Cleared),
			Specials:     specials,
			ScoreDelta:   p.ScoreDelta,
			MoveScore:    p.MoveScore,
			Score:        p.Score,
			Board:        response.BoardFromModel(p.Board),
			Done:         p.Done,
		}
	case model.LevelUpPayload:
		return LevelUp{Level: p.Level, TargetScore: p.TargetScore, MovesRemaining: p.MovesRemaining}
	case model.SessionEndedPayload:
		return SessionEnded{Reason: string(p.Reason), Score: p.Score, DurationSeconds: p.DurationSeconds}
	case model.SettledPayload:
		return response.SettlementFromModel(&p.Settlement)
	default:
		return event.Payload
	}
}
