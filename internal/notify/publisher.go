package notify

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/lanova-arcade/internal/model"
)

// Publisher forwards domain events to systems outside the game server
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
	Close() error
}

// Message is the JSON body published for an event
type Message struct {
	Type      model.EventType `json:"type"`
	SessionID model.SessionID `json:"session_id"`
	PlayerID  model.PlayerID  `json:"player_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload,omitempty"`
}

// NewMessage converts an event to its wire form
func NewMessage(event model.Event) Message {
	return Message{
		Type:      event.Type,
		SessionID: event.SessionID,
		PlayerID:  event.PlayerID,
		Timestamp: event.Timestamp,
		Payload:   event.Payload,
	}
}

// MemoryPublisher keeps published events in memory
type MemoryPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

// NewMemoryPublisher creates an empty MemoryPublisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far
func (p *MemoryPublisher) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Event, len(p.events))
	copy(out, p.events)
	return out
}

var _ Publisher = (*MemoryPublisher)(nil)
