package sse

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/lanova-arcade/internal/model"
)

const (
	keepalivePeriod = 15 * time.Second
	reconnectDelay  = 3 * time.Second
)

// ServeSSE streams the hub's events until the client goes away or the hub
// closes. A Last-Event-ID header (or last_event_id query parameter, for
// clients that cannot set headers) resumes from the backlog, or gets a
// resync event when the missed events are gone.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, playerID model.PlayerID) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	watcher := hub.Subscribe(playerID, lastEventID(r))
	defer hub.Unsubscribe(watcher)

	w.WriteHeader(http.StatusOK)
	hello := "retry: " + strconv.FormatInt(reconnectDelay.Milliseconds(), 10) + "\n" +
		string(formatEvent("", "connected", `{"session_id":"`+string(hub.sessionID)+`"}`))
	if _, err := w.Write([]byte(hello)); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		var chunk []byte
		select {
		case msg, ok := <-watcher.send:
			if !ok {
				return
			}
			chunk = msg
		case <-ticker.C:
			chunk = []byte(": keepalive\n\n")
		case <-r.Context().Done():
			return
		}

		if _, err := w.Write(chunk); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func lastEventID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("Last-Event-ID")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("last_event_id"))
}
