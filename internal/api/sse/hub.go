package sse

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/model"
)

const (
	// backlogSize is how many recent events a hub keeps for resuming
	// watchers. A full cascade is well under this.
	backlogSize = 64

	// watcherBuffer is the per-watcher queue. A watcher that falls this
	// far behind is disconnected rather than silently skipping steps.
	watcherBuffer = 128

	// idleHubTTL is how long an unwatched hub keeps its backlog
	idleHubTTL = 2 * time.Minute

	// EventResync tells a resuming client that events were lost and it must
	// fetch the session again
	EventResync = "resync"
)

// Resync reasons
const (
	ResyncBacklogExpired = "backlog_expired"
	ResyncStreamReset    = "stream_reset"
)

// Resync is the resync event body
type Resync struct {
	Type      string          `json:"type"`
	SessionID model.SessionID `json:"session_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   ResyncPayload   `json:"payload"`
}

// ResyncPayload says why the stream could not be resumed
type ResyncPayload struct {
	Reason      string `json:"reason"`
	LastEventID string `json:"last_event_id"`
}

type frame struct {
	id   uint64
	data []byte
}

// Watcher is one open event stream on a session
type Watcher struct {
	playerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

// Hub fans one session's events out to its watchers. Every event gets an id
// of the form "<epoch>-<seq>" and the most recent ones are kept so a client
// that reconnects with Last-Event-ID picks up where it left off. The epoch
// changes whenever the hub is recreated, so ids from an earlier hub are
// never mistaken for ids of this one.
type Hub struct {
	sessionID model.SessionID
	epoch     uint64
	clock     clock.Clock
	logger    *slog.Logger

	mu       sync.Mutex
	nextID   uint64
	backlog  []frame
	watchers map[*Watcher]struct{}
	idleFrom time.Time
	closed   bool
}

// NewHub creates an empty hub for a session
func NewHub(sessionID model.SessionID, epoch uint64, clk clock.Clock, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID: sessionID,
		epoch:     epoch,
		clock:     clk,
		logger:    logger.With(slog.String("session_id", string(sessionID))),
		watchers:  make(map[*Watcher]struct{}),
		idleFrom:  clk.Now(),
	}
}

// Subscribe adds a watcher. lastEventID is the id the client last saw, or
// empty for a fresh stream. When every later event is still in the backlog
// they are queued first. Otherwise the watcher gets a single resync event
// and then live events only. Subscribing to a closed hub returns a watcher
// whose channel is already closed.
func (h *Hub) Subscribe(playerID model.PlayerID, lastEventID string) *Watcher {
	w := &Watcher{
		playerID:    playerID,
		send:        make(chan []byte, watcherBuffer),
		connectedAt: h.clock.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(w.send)
		return w
	}

	replayed := 0
	if lastEventID != "" {
		seq, reason := h.resumePoint(lastEventID)
		if reason != "" {
			w.send <- h.resyncFrame(reason, lastEventID)
			h.logger.Warn("sse watcher cannot resume, resync sent",
				slog.String("player_id", string(playerID)),
				slog.String("last_event_id", lastEventID),
				slog.String("reason", reason))
		} else {
			for _, f := range h.backlog {
				if f.id > seq && replayed < watcherBuffer {
					w.send <- f.data
					replayed++
				}
			}
		}
	}
	h.watchers[w] = struct{}{}

	h.logger.Info("sse watcher subscribed",
		slog.String("player_id", string(playerID)),
		slog.Int("replayed", replayed),
		slog.Int("watchers", len(h.watchers)))
	return w
}

// resumePoint returns the sequence number to replay after, or a resync
// reason when the events after lastEventID are no longer all available.
// Callers hold mu.
func (h *Hub) resumePoint(lastEventID string) (uint64, string) {
	epoch, seq, ok := parseEventID(lastEventID)
	if !ok || epoch != h.epoch || seq > h.nextID {
		return 0, ResyncStreamReset
	}
	if len(h.backlog) > 0 && seq+1 < h.backlog[0].id {
		return 0, ResyncBacklogExpired
	}
	return seq, ""
}

// resyncFrame renders the resync event. It carries the current id so the
// client resumes from here on its next reconnect. Callers hold mu.
func (h *Hub) resyncFrame(reason, lastEventID string) []byte {
	data, _ := json.Marshal(Resync{
		Type:      EventResync,
		SessionID: h.sessionID,
		Timestamp: h.clock.Now(),
		Payload:   ResyncPayload{Reason: reason, LastEventID: lastEventID},
	})
	return formatEvent(h.eventID(h.nextID), EventResync, string(data))
}

func (h *Hub) eventID(seq uint64) string {
	return strconv.FormatUint(h.epoch, 10) + "-" + strconv.FormatUint(seq, 10)
}

// parseEventID splits an "<epoch>-<seq>" id
func parseEventID(id string) (epoch, seq uint64, ok bool) {
	rawEpoch, rawSeq, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, false
	}
	epoch, err := strconv.ParseUint(rawEpoch, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.ParseUint(rawSeq, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return epoch, seq, true
}

// Unsubscribe removes a watcher and closes its channel
func (h *Hub) Unsubscribe(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[w]; !ok {
		return
	}
	h.drop(w)
	h.logger.Info("sse watcher unsubscribed",
		slog.String("player_id", string(w.playerID)),
		slog.Duration("connected_for", h.clock.Since(w.connectedAt)),
		slog.Int("watchers", len(h.watchers)))
}

// drop removes w. Callers hold mu.
func (h *Hub) drop(w *Watcher) {
	delete(h.watchers, w)
	close(w.send)
	if len(h.watchers) == 0 {
		h.idleFrom = h.clock.Now()
	}
}

// Publish assigns the next event id, records the event and queues it for
// every watcher
func (h *Hub) Publish(eventName, data string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.nextID++
	f := frame{id: h.nextID, data: formatEvent(h.eventID(h.nextID), eventName, data)}
	h.backlog = append(h.backlog, f)
	if len(h.backlog) > backlogSize {
		h.backlog = h.backlog[len(h.backlog)-backlogSize:]
	}

	for w := range h.watchers {
		select {
		case w.send <- f.data:
		default:
			h.drop(w)
			h.logger.Warn("sse watcher too slow, disconnecting",
				slog.String("player_id", string(w.playerID)),
				slog.Uint64("event_id", f.id))
		}
	}
}

// Close disconnects every watcher. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for w := range h.watchers {
		h.drop(w)
	}
}

// WatcherCount returns the number of open streams
func (h *Hub) WatcherCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// idleSince reports whether the hub has had no watchers since before t
func (h *Hub) idleSince(t time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers) == 0 && !h.idleFrom.After(t)
}

// formatEvent renders one event. Each line of data gets its own "data: "
// prefix; an empty id is left out.
func formatEvent(id, eventName, data string) []byte {
	var b strings.Builder
	if id != "" {
		b.WriteString("id: ")
		b.WriteString(id)
		b.WriteByte('\n')
	}
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// HubManager owns the hubs of every watched session
type HubManager struct {
	clock  clock.Clock
	logger *slog.Logger

	mu        sync.Mutex
	hubs      map[model.SessionID]*Hub
	lastEpoch uint64
}

// NewHubManager creates an empty manager
func NewHubManager(clk clock.Clock, logger *slog.Logger) *HubManager {
	return &HubManager{
		clock:  clk,
		logger: logger.With(slog.String("component", "sse")),
		hubs:   make(map[model.SessionID]*Hub),
	}
}

// GetOrCreateHub returns the session's hub, creating it on first watch
func (m *HubManager) GetOrCreateHub(sessionID model.SessionID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	hub, ok := m.hubs[sessionID]
	if !ok {
		hub = NewHub(sessionID, m.nextEpoch(), m.clock, m.logger)
		m.hubs[sessionID] = hub
	}
	return hub
}

// nextEpoch derives a hub epoch from the clock so ids also change across
// server restarts. Callers hold mu.
func (m *HubManager) nextEpoch() uint64 {
	epoch := uint64(m.clock.Now().UnixNano())
	if epoch <= m.lastEpoch {
		epoch = m.lastEpoch + 1
	}
	m.lastEpoch = epoch
	return epoch
}

// GetHub returns the session's hub, or nil if nobody has watched it
func (m *HubManager) GetHub(sessionID model.SessionID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[sessionID]
}

// RemoveHub closes and forgets a session's hub
func (m *HubManager) RemoveHub(sessionID model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hub, ok := m.hubs[sessionID]; ok {
		hub.Close()
		delete(m.hubs, sessionID)
	}
}

// CleanupEmptyHubs drops hubs that have had no watchers for idleHubTTL,
// along with their backlog
func (m *HubManager) CleanupEmptyHubs() {
	cutoff := m.clock.Now().Add(-idleHubTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, hub := range m.hubs {
		if hub.idleSince(cutoff) {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse idle hubs removed", slog.Int("removed", removed), slog.Int("remaining", len(m.hubs)))
	}
}

// CloseAll disconnects every watcher of every session
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
