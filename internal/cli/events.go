package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const (
	eventSettlement = "settlement"
	reconnectWait   = 2 * time.Second
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		follow     bool
		untilEnd   bool
	)

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Stream a session's live events",
		Long: `Stream the session's event feed as it happens.

Event names: session-started, cell-selected, swap-accepted, swap-rejected,
cascade-step, level-up, session-ended and settlement. A resync event means
events were missed while disconnected; run "session get" for the current board.

With --follow a dropped connection is retried and resumes after the last
event received. Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			s := &eventStream{
				sessionID: args[0],
				untilEnd:  untilEnd,
				emit: func(ev streamEvent) {
					printEvent(w, ev, jsonOutput)
				},
			}
			for {
				err := s.run(ctx)
				if !follow || s.finished || ctx.Err() != nil {
					return err
				}
				var reqErr *RequestError
				if errors.As(err, &reqErr) {
					return err
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(reconnectWait):
				}
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print events as JSON lines")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "reconnect and resume when the stream drops")
	cmd.Flags().BoolVar(&untilEnd, "until-settled", false, "exit after the settlement event")
	return cmd
}

// streamEvent is one event read off the wire
type streamEvent struct {
	Time  time.Time `json:"time"`
	ID    string    `json:"id,omitempty"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

type eventStream struct {
	sessionID string
	untilEnd  bool
	emit      func(streamEvent)

	lastID   string
	finished bool
}

// run holds one connection open until it drops, the context ends or the
// settlement arrives with untilEnd set
func (s *eventStream) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := client.Stream(ctx, sessionPath(s.sessionID, "events"), s.lastID)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	err = readEvents(resp.Body, func(id, event, data string) {
		if id != "" {
			s.lastID = id
		}
		s.emit(streamEvent{Time: time.Now(), ID: id, Event: event, Data: data})
		if s.untilEnd && event == eventSettlement {
			s.finished = true
			cancel()
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream: %w", err)
	}
	return nil
}

// Stream opens a server-sent event stream. lastEventID resumes after that
// event when non-empty. The caller closes the body.
func (c *Client) Stream(ctx context.Context, path, lastEventID string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	// The stream outlives the client's request timeout
	resp, err := (&http.Client{Transport: c.httpClient.Transport}).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return nil, decodeError(resp.StatusCode, data)
	}
	return resp, nil
}

// readEvents parses an event stream and calls emit for each named event.
// Data lines are joined with newlines. Comments, retry hints and events
// without a name are skipped.
func readEvents(r io.Reader, emit func(id, event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	var id, event string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if event != "" {
				emit(id, event, strings.Join(data, "\n"))
			}
			id, event, data = "", "", nil
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "id":
			id = value
		case "event":
			event = value
		case "data":
			data = append(data, value)
		}
	}
	return scanner.Err()
}

func printEvent(w io.Writer, ev streamEvent, jsonOutput bool) {
	if jsonOutput {
		line, _ := json.Marshal(ev)
		_, _ = fmt.Fprintln(w, string(line))
		return
	}
	_, _ = fmt.Fprintf(w, "[%s] %-15s %s\n", ev.Time.Format("15:04:05"), ev.Event, summarizeEvent(ev.Event, ev.Data))
}

// summarizeEvent picks the interesting fields out of the event payload
func summarizeEvent(event, data string) string {
	var msg struct {
		Payload map[string]json.RawMessage `json:"payload"`
	}
	if json.Unmarshal([]byte(data), &msg) != nil || msg.Payload == nil {
		return truncate(strings.ReplaceAll(data, "\n", " "), 100)
	}
	p := msg.Payload
	field := func(k string) string { return strings.Trim(string(p[k]), `"`) }

	switch event {
	case "cascade-step":
		var cleared []json.RawMessage
		_ = json.Unmarshal(p["cleared"], &cleared)
		return fmt.Sprintf("cascade %s cleared %d, +%s (score %s)", field("cascade_index"), len(cleared), field("score_delta"), field("score"))
	case "level-up":
		return fmt.Sprintf("level %s, target %s, %s moves", field("level"), field("target_score"), field("moves_remaining"))
	case "session-ended":
		return fmt.Sprintf("%s with %s points", field("reason"), field("score"))
	case eventSettlement:
		return fmt.Sprintf("%s, %s coins", field("status"), field("coins_awarded"))
	case "resync":
		return fmt.Sprintf("events missed (%s), fetch the session again", field("reason"))
	}
	return truncate(string(mustJSON(p)), 100)
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
