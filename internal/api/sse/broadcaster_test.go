package sse

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lanova-arcade/internal/dependencies/mocks"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/testutil"
)

type wireEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

// receive reads one queued event and splits out its name and data
func receive(t *testing.T, w *Watcher) (string, wireEvent) {
	t.Helper()
	select {
	case msg := <-w.send:
		var name string
		var data strings.Builder
		for _, l := range strings.Split(strings.TrimSpace(string(msg)), "\n") {
			switch {
			case strings.HasPrefix(l, "event: "):
				name = strings.TrimPrefix(l, "event: ")
			case strings.HasPrefix(l, "data: "):
				data.WriteString(strings.TrimPrefix(l, "data: "))
			}
		}
		var ev wireEvent
		require.NoError(t, json.Unmarshal([]byte(data.String()), &ev))
		return name, ev
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
		return "", wireEvent{}
	}
}

func watch(t *testing.T, manager *HubManager, id model.SessionID) *Watcher {
	t.Helper()
	return manager.GetOrCreateHub(id).Subscribe("player1", "")
}

func newTestManager() *HubManager {
	return NewHubManager(mocks.NewMockClock(time.Now()), testutil.NopLogger())
}

func TestEventName(t *testing.T) {
	tests := []struct {
		in   model.EventType
		want string
	}{
		{model.EventSessionStarted, "session-started"},
		{model.EventCellSelected, "cell-selected"},
		{model.EventSwapRejected, "swap-rejected"},
		{model.EventSwapAccepted, "swap-accepted"},
		{model.EventCascadeStep, "cascade-step"},
		{model.EventLevelUp, "level-up"},
		{model.EventSessionEnded, "session-ended"},
		{model.EventSettled, "settlement"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EventName(tt.in))
	}
}

func TestBroadcaster_CascadeStep(t *testing.T) {
	manager := newTestManager()
	defer manager.CloseAll()
	b := NewBroadcaster(manager, testutil.NopLogger())
	client := watch(t, manager, "S1")

	board := model.NewBoard(2)
	board.Place(model.Position{Row: 0, Col: 0}, 1, model.SpecialStriped)
	board.Place(model.Position{Row: 1, Col: 1}, 2, model.SpecialNone)

	err := b.Publish(context.Background(), model.Event{
		Type:      model.EventCascadeStep,
		SessionID: "S1",
		Payload: model.CascadeStepPayload{
			CascadeIndex: 1,
			Cleared:      []model.Position{{Row: 0, Col: 1}},
			ScoreDelta:   23,
			MoveScore:    56,
			Score:        53,
			Board:        board,
			Done:         true,
		},
	})
	require.NoError(t, err)

	name, ev := receive(t, client)
	assert.Equal(t, "cascade-step", name)
	assert.Equal(t, "S1", ev.SessionID)

	var step CascadeStep
	require.NoError(t, json.Unmarshal(ev.Payload, &step))
	assert.Equal(t, 1, step.CascadeIndex)
	assert.Equal(t, 23, step.ScoreDelta)
	assert.Equal(t, 56, step.MoveScore)
	assert.Equal(t, 53, step.Score)
	assert.True(t, step.Done)
	require.Len(t, step.Cleared, 1)
	assert.Equal(t, 1, step.Cleared[0].Col)
	require.NotNil(t, step.Board)
	require.NotNil(t, step.Board.Rows[0][0])
	assert.Equal(t, "orange", step.Board.Rows[0][0].Type)
	assert.Equal(t, "striped", step.Board.Rows[0][0].Special)
	assert.Nil(t, step.Board.Rows[0][1])
}

func TestBroadcaster_Settlement(t *testing.T) {
	manager := newTestManager()
	defer manager.CloseAll()
	b := NewBroadcaster(manager, testutil.NopLogger())
	client := watch(t, manager, "S1")

	require.NoError(t, b.Publish(context.Background(), model.Event{
		Type:      model.EventSettled,
		SessionID: "S1",
		Payload: model.SettledPayload{Settlement: model.Settlement{
			Key:          "S1:1",
			Status:       model.SettlementAwarded,
			CoinsAwarded: 4,
		}},
	}))

	name, ev := receive(t, client)
	assert.Equal(t, "settlement", name)
	assert.JSONEq(t, `"S1:1"`, string(mustField(t, ev.Payload, "key")))
	assert.JSONEq(t, `4`, string(mustField(t, ev.Payload, "coins_awarded")))
}

func TestBroadcaster_NoPayload(t *testing.T) {
	manager := newTestManager()
	defer manager.CloseAll()
	b := NewBroadcaster(manager, testutil.NopLogger())
	client := watch(t, manager, "S1")

	require.NoError(t, b.Publish(context.Background(), model.Event{Type: model.EventSessionStarted, SessionID: "S1"}))

	name, ev := receive(t, client)
	assert.Equal(t, "session-started", name)
	assert.Empty(t, ev.Payload)
}

func TestBroadcaster_UnwatchedSessionIsSkipped(t *testing.T) {
	manager := newTestManager()
	b := NewBroadcaster(manager, testutil.NopLogger())

	err := b.Publish(context.Background(), model.Event{Type: model.EventLevelUp, SessionID: "NOBODY"})
	assert.NoError(t, err)
	assert.Nil(t, manager.GetHub("NOBODY"))
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[key]
	require.True(t, ok, "missing field %s", key)
	return v
}
