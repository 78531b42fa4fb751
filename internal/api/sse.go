package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ralphx-cli/internal/model"
)

// EventStream is one open SSE connection delivering a session's events.
// Events arrives in non-decreasing id order until the channel closes; after
// that Err reports why the stream ended (nil means server-side EOF).
type EventStream struct {
	Events <-chan model.IterationEvent

	cancel context.CancelFunc
	err    error
	done   chan struct{}
}

// Err is valid only after the Events channel has closed.
func (s *EventStream) Err() error {
	<-s.done
	return s.err
}

// Close tears the connection down. Safe to call more than once.
func (s *EventStream) Close() {
	s.cancel()
}

// StreamEvents opens the session's SSE stream, requesting events strictly
// after afterEventID. A frame that fails to parse is logged and skipped;
// only transport errors end the stream.
func (c *Client) StreamEvents(ctx context.Context, sessionID string, afterEventID int64) (*EventStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	path := fmt.Sprintf("/api/sessions/%s/events?after=%d", url.PathEscape(sessionID), afterEventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if afterEventID > 0 {
		req.Header.Set("Last-Event-ID", strconv.FormatInt(afterEventID, 10))
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.streamHTTP.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		cancel()
		return nil, decodeAPIError(resp)
	}

	ch := make(chan model.IterationEvent)
	st := &EventStream{
		Events: ch,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(st.done)
		defer close(ch)
		defer resp.Body.Close()
		defer cancel()

		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var (
			id    int64
			typ   string
			data  strings.Builder
			hasID bool
		)
		reset := func() {
			id, typ, hasID = 0, "", false
			data.Reset()
		}

		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				// Frame boundary.
				if data.Len() == 0 && typ == "" {
					reset()
					continue
				}
				ev, ok := decodeEventFrame(id, hasID, typ, data.String())
				reset()
				if !ok {
					c.log.Warn().Str("session", sessionID).Msg("skipping malformed stream event")
					continue
				}
				ev.SessionID = sessionID
				select {
				case ch <- ev:
				case <-ctx.Done():
					st.err = ctx.Err()
					return
				}
			case strings.HasPrefix(line, ":"):
				// Comment/keepalive line.
			case strings.HasPrefix(line, "id:"):
				v := strings.TrimSpace(strings.TrimPrefix(line, "id:"))
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					id, hasID = n, true
				}
			case strings.HasPrefix(line, "event:"):
				typ = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			}
		}
		if err := sc.Err(); err != nil && ctx.Err() == nil {
			st.err = err
		} else if ctx.Err() != nil {
			st.err = ctx.Err()
		}
	}()

	return st, nil
}

// decodeEventFrame turns one SSE frame into an IterationEvent. The data
// payload is JSON; the frame's event field wins over any type in the body,
// and the frame's id field wins over any id in the body.
func decodeEventFrame(id int64, hasID bool, typ, data string) (model.IterationEvent, bool) {
	var ev model.IterationEvent
	if strings.TrimSpace(data) != "" {
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return model.IterationEvent{}, false
		}
	}
	if typ != "" {
		ev.Type = model.EventType(typ)
	}
	if hasID {
		ev.ID = id
	}
	if ev.Type == "" {
		return model.IterationEvent{}, false
	}
	return ev, true
}
