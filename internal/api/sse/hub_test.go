package sse

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lanova-arcade/internal/dependencies/mocks"
	"github.com/mcoot/lanova-arcade/internal/testutil"
)

func newTestHub() (*Hub, *mocks.MockClock) {
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	return NewHub("SESSION1", 42, clk, testutil.NopLogger()), clk
}

func next(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case msg, ok := <-w.send:
		require.True(t, ok, "watcher was disconnected")
		return string(msg)
	default:
		t.Fatal("nothing queued for watcher")
		return ""
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		event    string
		data     string
		expected string
	}{
		{"with id", "5-7", "cascade-step", `{"score":33}`, "id: 5-7\nevent: cascade-step\ndata: {\"score\":33}\n\n"},
		{"without id", "", "connected", `{}`, "event: connected\ndata: {}\n\n"},
		{"multi-line", "5-1", "session-ended", "{\n  \"score\": 30\n}", "id: 5-1\nevent: session-ended\ndata: {\ndata:   \"score\": 30\ndata: }\n\n"},
		{"carriage returns", "5-2", "x", "a\r\nb", "id: 5-2\nevent: x\ndata: a\ndata: b\n\n"},
		{"empty data", "5-3", "ping", "", "id: 5-3\nevent: ping\ndata: \n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatEvent(tt.id, tt.event, tt.data)))
		})
	}
}

func TestHub_PublishAssignsSequentialIDs(t *testing.T) {
	hub, _ := newTestHub()
	w := hub.Subscribe("player1", "")

	hub.Publish("swap-accepted", "{}")
	hub.Publish("cascade-step", `{"cascade_index":0}`)

	assert.Equal(t, "id: 42-1\nevent: swap-accepted\ndata: {}\n\n", next(t, w))
	assert.Equal(t, "id: 42-2\nevent: cascade-step\ndata: {\"cascade_index\":0}\n\n", next(t, w))
}

func TestHub_ResumeFromLastEventID(t *testing.T) {
	hub, _ := newTestHub()
	for i := range 4 {
		hub.Publish("cascade-step", fmt.Sprintf(`{"cascade_index":%d}`, i))
	}

	fresh := hub.Subscribe("player1", "")
	assert.Empty(t, fresh.send, "a fresh watcher gets no replay")

	resumed := hub.Subscribe("player1", "42-2")
	assert.Contains(t, next(t, resumed), "id: 42-3\n")
	assert.Contains(t, next(t, resumed), "id: 42-4\n")
	assert.Empty(t, resumed.send)

	upToDate := hub.Subscribe("player1", "42-4")
	assert.Empty(t, upToDate.send)
}

// resyncReason reads the watcher's next event and requires it to be a resync
func resyncReason(t *testing.T, w *Watcher) (string, string) {
	t.Helper()
	msg := next(t, w)
	var id string
	for _, l := range strings.Split(msg, "\n") {
		if v, ok := strings.CutPrefix(l, "id: "); ok {
			id = v
		}
	}
	w.send <- []byte(msg)
	name, ev := receive(t, w)
	require.Equal(t, EventResync, name)
	var payload ResyncPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	return payload.Reason, id
}

func TestHub_ResumeAcrossBacklogBoundary(t *testing.T) {
	hub, _ := newTestHub()
	for range backlogSize + 10 {
		hub.Publish("cascade-step", "{}")
	}

	// The oldest kept event is 11, so a client that saw 10 misses nothing
	w := hub.Subscribe("player1", "42-10")
	assert.Len(t, w.send, backlogSize)
	assert.Contains(t, next(t, w), "id: 42-11\n")
}

func TestHub_ResumeBeyondBacklogSendsResync(t *testing.T) {
	hub, _ := newTestHub()
	for range backlogSize + 10 {
		hub.Publish("cascade-step", "{}")
	}

	w := hub.Subscribe("player1", "42-1")
	require.Len(t, w.send, 1, "nothing is replayed past a gap")
	reason, id := resyncReason(t, w)
	assert.Equal(t, ResyncBacklogExpired, reason)
	assert.Equal(t, "42-74", id)

	hub.Publish("cascade-step", `{"cascade_index":1}`)
	assert.Contains(t, next(t, w), "id: 42-75\n", "live events follow the resync")

	// Reconnecting from the resync id resumes normally
	again := hub.Subscribe("player1", id)
	assert.Contains(t, next(t, again), "id: 42-75\n")
	assert.Empty(t, again.send)
}

func TestHub_ResumeWithUnknownIDSendsResync(t *testing.T) {
	hub, _ := newTestHub()
	hub.Publish("swap-accepted", "{}")
	hub.Publish("cascade-step", "{}")

	for _, lastID := range []string{"41-1", "42-9", "7", "not-an-id", "42-x"} {
		t.Run(lastID, func(t *testing.T) {
			w := hub.Subscribe("player1", lastID)
			require.Len(t, w.send, 1)
			reason, id := resyncReason(t, w)
			assert.Equal(t, ResyncStreamReset, reason)
			assert.Equal(t, "42-2", id)
		})
	}
}

func TestHub_SlowWatcherIsDisconnected(t *testing.T) {
	hub, _ := newTestHub()
	slow := hub.Subscribe("slow", "")

	for range watcherBuffer + 1 {
		hub.Publish("cascade-step", "{}")
	}

	assert.Equal(t, 0, hub.WatcherCount())
	for range watcherBuffer {
		<-slow.send
	}
	_, ok := <-slow.send
	assert.False(t, ok, "channel is closed after the queued events")

	// Unsubscribing an evicted watcher is a no-op
	hub.Unsubscribe(slow)
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	hub, _ := newTestHub()
	a := hub.Subscribe("a", "")
	b := hub.Subscribe("b", "")
	require.Equal(t, 2, hub.WatcherCount())

	hub.Unsubscribe(a)
	_, ok := <-a.send
	assert.False(t, ok)
	assert.Equal(t, 1, hub.WatcherCount())

	hub.Close()
	hub.Close()
	_, ok = <-b.send
	assert.False(t, ok)

	hub.Publish("ignored", "{}")
	late := hub.Subscribe("late", "")
	_, ok = <-late.send
	assert.False(t, ok)
}

func TestHubManager_CleanupKeepsRecentlyWatchedHubs(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	manager := NewHubManager(clk, testutil.NopLogger())

	assert.Nil(t, manager.GetHub("S1"))
	hub := manager.GetOrCreateHub("S1")
	assert.Same(t, hub, manager.GetOrCreateHub("S1"))

	w := hub.Subscribe("player1", "")
	clk.Advance(time.Hour)
	manager.CleanupEmptyHubs()
	assert.Same(t, hub, manager.GetHub("S1"), "watched hubs stay")

	hub.Unsubscribe(w)
	clk.Advance(idleHubTTL / 2)
	manager.CleanupEmptyHubs()
	assert.Same(t, hub, manager.GetHub("S1"), "backlog is kept for reconnects")

	clk.Advance(idleHubTTL)
	manager.CleanupEmptyHubs()
	assert.Nil(t, manager.GetHub("S1"))
}

func TestHubManager_RemoveAndCloseAll(t *testing.T) {
	manager := NewHubManager(mocks.NewMockClock(time.Now()), testutil.NopLogger())

	w := manager.GetOrCreateHub("S2").Subscribe("p", "")
	manager.RemoveHub("S2")
	assert.Nil(t, manager.GetHub("S2"))
	_, ok := <-w.send
	assert.False(t, ok)

	manager.GetOrCreateHub("S3")
	manager.CloseAll()
	assert.Nil(t, manager.GetHub("S3"))
}

func TestHubManager_RecreatedHubSendsResync(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	manager := NewHubManager(clk, testutil.NopLogger())

	first := manager.GetOrCreateHub("S1")
	w := first.Subscribe("player1", "")
	first.Publish("swap-accepted", "{}")
	first.Publish("cascade-step", "{}")
	var lastID string
	for range 2 {
		for _, l := range strings.Split(next(t, w), "\n") {
			if v, ok := strings.CutPrefix(l, "id: "); ok {
				lastID = v
			}
		}
	}
	first.Unsubscribe(w)

	clk.Advance(idleHubTTL + time.Second)
	manager.CleanupEmptyHubs()
	require.Nil(t, manager.GetHub("S1"))

	// Events while no hub existed are gone; the new hub must say so
	second := manager.GetOrCreateHub("S1")
	require.NotEqual(t, first.epoch, second.epoch)
	resumed := second.Subscribe("player1", lastID)
	reason, _ := resyncReason(t, resumed)
	assert.Equal(t, ResyncStreamReset, reason)
}

func TestHubManager_EpochsAreUnique(t *testing.T) {
	manager := NewHubManager(mocks.NewMockClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)), testutil.NopLogger())
	a := manager.GetOrCreateHub("A")
	b := manager.GetOrCreateHub("B")
	manager.RemoveHub("A")
	c := manager.GetOrCreateHub("A")
	assert.Less(t, a.epoch, b.epoch)
	assert.Less(t, b.epoch, c.epoch)
}
