package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ralphx-cli/internal/model"
)

type fakeStream struct {
	ch   chan model.IterationEvent
	err  error
	once sync.Once
}

func (s *fakeStream) Events() <-chan model.IterationEvent { return s.ch }
func (s *fakeStream) Err() error                          { return s.err }
func (s *fakeStream) Close()                              { s.once.Do(func() { close(s.ch) }) }

// scriptedConn describes one connection lifetime: either a connect error, or
// a batch of events after which the connection drops (or stays open silently
// when hold is set, for watchdog tests).
type scriptedConn struct {
	err     error
	events  []model.IterationEvent
	dropErr error
	hold    bool
}

type fakeBackend struct {
	mu        sync.Mutex
	conns     []scriptedConn
	connects  []int64 // cursor passed to each StreamEvents call
	running   []bool  // successive probe answers; the last one repeats
	probes    int
	cancelled int
}

func (b *fakeBackend) StreamEvents(_ context.Context, _ string, after int64) (Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connects = append(b.connects, after)
	if len(b.conns) == 0 {
		return nil, errors.New("unscripted connection")
	}
	c := b.conns[0]
	b.conns = b.conns[1:]
	if c.err != nil {
		return nil, c.err
	}
	fs := &fakeStream{ch: make(chan model.IterationEvent, len(c.events)+1), err: c.dropErr}
	for _, e := range c.events {
		fs.ch <- e
	}
	if !c.hold {
		fs.Close()
	}
	return fs, nil
}

func (b *fakeBackend) SessionRunning(context.Context, string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probes++
	if len(b.running) == 0 {
		return false, nil
	}
	v := b.running[0]
	if len(b.running) > 1 {
		b.running = b.running[1:]
	}
	return v, nil
}

func (b *fakeBackend) CancelSession(context.Context, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled++
	return nil
}

func (b *fakeBackend) connectCursors() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.connects...)
}

func ev(id int64, typ model.EventType) model.IterationEvent {
	return model.IterationEvent{ID: id, Type: typ}
}

func content(id int64, text string) model.IterationEvent {
	return model.IterationEvent{ID: id, Type: model.EventContent, Text: text}
}

// collectUntilTerminal drains updates until a terminal state arrives.
func collectUntilTerminal(t *testing.T, r *Reconnector) []Update {
	t.Helper()
	var got []Update
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-r.Updates():
			got = append(got, u)
			if u.State.Terminal() {
				return got
			}
		case <-deadline:
			t.Fatalf("no terminal update; got %d updates so far", len(got))
		}
	}
}

func appliedText(updates []Update) string {
	var b strings.Builder
	for _, u := range updates {
		if u.Event != nil && u.Event.Type == model.EventContent {
			b.WriteString(u.Event.Text)
		}
	}
	return b.String()
}

func newTestReconnector(b Backend, opts ...Option) *Reconnector {
	base := []Option{WithBackoff(time.Millisecond), WithStaleTimeout(time.Second)}
	return New(b, "sess-1", append(base, opts...)...)
}

func TestReplayAcrossReconnect(t *testing.T) {
	// cursor=0: connect, receive ids 1-2, drop; reconnect with after=2,
	// receive ids 3-4. Displayed text must equal the unbroken-stream result.
	b := &fakeBackend{
		conns: []scriptedConn{
			{events: []model.IterationEvent{ev(1, model.EventIterationStart), content(2, "ab")}, dropErr: errors.New("conn reset")},
			{events: []model.IterationEvent{content(3, "cd"), ev(4, model.EventDone)}},
		},
		running: []bool{true},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)

	if text := appliedText(got); text != "abcd" {
		t.Fatalf("displayed text = %q, want %q", text, "abcd")
	}
	last := got[len(got)-1]
	if last.State != StateDone || last.Reason != ReasonDoneEvent {
		t.Fatalf("final state = %v reason %v, want done/done-event", last.State, last.Reason)
	}
	cursors := b.connectCursors()
	if len(cursors) != 2 || cursors[0] != 0 || cursors[1] != 2 {
		t.Fatalf("connect cursors = %v, want [0 2]", cursors)
	}
	if r.Cursor() != 4 {
		t.Fatalf("cursor = %d, want 4", r.Cursor())
	}
}

func TestReplayedEventsAreDroppedByID(t *testing.T) {
	// The second connection replays id=2; it must not be applied twice.
	b := &fakeBackend{
		conns: []scriptedConn{
			{events: []model.IterationEvent{content(1, "x"), content(2, "y")}, dropErr: errors.New("drop")},
			{events: []model.IterationEvent{content(2, "y"), content(3, "z"), ev(4, model.EventDone)}},
		},
		running: []bool{true},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	if text := appliedText(got); text != "xyz" {
		t.Fatalf("displayed text = %q, want %q", text, "xyz")
	}
}

func TestHeartbeatChangesNothing(t *testing.T) {
	b := &fakeBackend{
		conns: []scriptedConn{
			{events: []model.IterationEvent{
				ev(7, model.EventHeartbeat),
				content(10, "a"),
				ev(11, model.EventHeartbeat),
				ev(12, model.EventDone),
			}},
		},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	for _, u := range got {
		if u.Event != nil && u.Event.Type == model.EventHeartbeat {
			t.Fatalf("heartbeat was forwarded to the UI: %+v", u)
		}
	}
	// Heartbeat ids never advance the cursor.
	if r.Cursor() != 12 {
		t.Fatalf("cursor = %d, want 12", r.Cursor())
	}
}

func TestReconnectAttemptBoundThenManualRetry(t *testing.T) {
	failed := scriptedConn{err: errors.New("refused")}
	b := &fakeBackend{
		conns: []scriptedConn{
			failed, failed, failed, failed, failed, failed,
			// Only reachable via Retry.
			{events: []model.IterationEvent{ev(1, model.EventDone)}},
		},
		running: []bool{true},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	last := got[len(got)-1]
	if last.State != StateLost || last.Reason != ReasonConnectionLost {
		t.Fatalf("final state = %v reason %v, want lost/connection-lost", last.State, last.Reason)
	}
	var reconnects []int
	for _, u := range got {
		if u.State == StateReconnecting {
			reconnects = append(reconnects, u.Attempt)
		}
	}
	if len(reconnects) != 5 {
		t.Fatalf("reconnecting updates = %v, want attempts 1..5", reconnects)
	}
	for i, a := range reconnects {
		if a != i+1 {
			t.Fatalf("attempt sequence = %v", reconnects)
		}
	}

	// No further attempts happen on their own.
	if n := len(b.connectCursors()); n != 6 {
		t.Fatalf("connect attempts = %d, want 6", n)
	}
	select {
	case u := <-r.Updates():
		t.Fatalf("unexpected update after lost: %+v", u)
	case <-time.After(20 * time.Millisecond):
	}

	// Manual retry resets the counter and restarts from connecting.
	r.Retry()
	got = collectUntilTerminal(t, r)
	if got[0].State != StateConnecting {
		t.Fatalf("retry first update = %v, want connecting", got[0].State)
	}
	if last := got[len(got)-1]; last.State != StateDone {
		t.Fatalf("retry final state = %v, want done", last.State)
	}
}

func TestSuccessfulConnectResetsAttemptCounter(t *testing.T) {
	failed := scriptedConn{err: errors.New("refused")}
	drop := scriptedConn{events: []model.IterationEvent{content(1, "a")}, dropErr: errors.New("drop")}
	b := &fakeBackend{
		// 4 failures, a success (resets the streak), then 5 more failures
		// before the final good connection: never exceeds the bound.
		conns: []scriptedConn{
			failed, failed, failed, failed,
			drop,
			failed, failed, failed, failed, failed,
			{events: []model.IterationEvent{ev(2, model.EventDone)}},
		},
		running: []bool{true},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	if last := got[len(got)-1]; last.State != StateDone {
		t.Fatalf("final state = %v, want done (bound must not trip)", last.State)
	}
}

func TestTerminalEventsAreSticky(t *testing.T) {
	cases := []struct {
		name      string
		event     model.IterationEvent
		wantState State
		wantWhy   Reason
	}{
		{"done", ev(3, model.EventDone), StateDone, ReasonDoneEvent},
		{"cancelled", ev(3, model.EventCancelled), StateCancelled, ReasonCancelledEvent},
		{"fatal error", model.IterationEvent{ID: 3, Type: model.EventError, ErrorMessage: "boom", Fatal: true}, StateErrored, ReasonFatalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{
				conns: []scriptedConn{
					{events: []model.IterationEvent{content(1, "a"), tc.event}},
					// Present but must never be reached.
					{events: []model.IterationEvent{content(9, "never")}},
				},
				running: []bool{true},
			}
			r := newTestReconnector(b)
			defer r.Stop()
			r.Connect(0)

			got := collectUntilTerminal(t, r)
			last := got[len(got)-1]
			if last.State != tc.wantState || last.Reason != tc.wantWhy {
				t.Fatalf("final = %v/%v, want %v/%v", last.State, last.Reason, tc.wantState, tc.wantWhy)
			}
			select {
			case u := <-r.Updates():
				t.Fatalf("update after terminal state: %+v", u)
			case <-time.After(20 * time.Millisecond):
			}
			if n := len(b.connectCursors()); n != 1 {
				t.Fatalf("connected %d times, want 1", n)
			}
		})
	}
}

func TestNonFatalErrorEventDoesNotStopStream(t *testing.T) {
	b := &fakeBackend{
		conns: []scriptedConn{
			{events: []model.IterationEvent{
				{ID: 1, Type: model.EventError, ErrorMessage: "tool failed"},
				content(2, "recovered"),
				ev(3, model.EventDone),
			}},
		},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	if text := appliedText(got); text != "recovered" {
		t.Fatalf("displayed text = %q", text)
	}
	if last := got[len(got)-1]; last.State != StateDone {
		t.Fatalf("final state = %v, want done", last.State)
	}
}

func TestReconnectFindsSessionGone(t *testing.T) {
	b := &fakeBackend{
		conns: []scriptedConn{
			{events: []model.IterationEvent{content(1, "a")}, dropErr: errors.New("drop")},
		},
		running: []bool{false},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	last := got[len(got)-1]
	if last.State != StateDone || last.Reason != ReasonSessionGone {
		t.Fatalf("final = %v/%v, want done/session-gone", last.State, last.Reason)
	}
	if n := len(b.connectCursors()); n != 1 {
		t.Fatalf("connected %d times, want 1 (no reconnect after session gone)", n)
	}
}

func TestWatchdogForceStopsDeadConnection(t *testing.T) {
	// The connection stays open but silent and the backend reports nothing
	// active: the watchdog must move the UI out of "running" on its own.
	b := &fakeBackend{
		conns:   []scriptedConn{{hold: true}},
		running: []bool{false},
	}
	r := newTestReconnector(b, WithStaleTimeout(20*time.Millisecond))
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	last := got[len(got)-1]
	if last.State != StateDone || last.Reason != ReasonSessionGone {
		t.Fatalf("final = %v/%v, want done/session-gone", last.State, last.Reason)
	}
}

func TestWatchdogKeepsWaitingWhileBackendRuns(t *testing.T) {
	b := &fakeBackend{
		conns:   []scriptedConn{{hold: true}},
		running: []bool{true},
	}
	r := newTestReconnector(b, WithStaleTimeout(10*time.Millisecond))
	defer r.Stop()
	r.Connect(0)

	// connecting + streaming, then silence: while the probe says running,
	// the watchdog must not emit anything.
	first := <-r.Updates()
	if first.State != StateConnecting {
		t.Fatalf("first update = %v", first.State)
	}
	second := <-r.Updates()
	if second.State != StateStreaming {
		t.Fatalf("second update = %v", second.State)
	}
	select {
	case u := <-r.Updates():
		t.Fatalf("unexpected update during silent-but-running session: %+v", u)
	case <-time.After(60 * time.Millisecond):
	}
	b.mu.Lock()
	probes := b.probes
	b.mu.Unlock()
	if probes == 0 {
		t.Fatal("watchdog never probed the backend")
	}
}

func TestCancelClosesLocallyRegardless(t *testing.T) {
	b := &fakeBackend{
		conns:   []scriptedConn{{hold: true}},
		running: []bool{true},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	// Wait for streaming before cancelling.
	for u := range r.Updates() {
		if u.State == StateStreaming {
			break
		}
	}
	r.Cancel(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-r.Updates():
			if u.State == StateCancelled {
				if b.cancelled != 1 {
					t.Fatalf("cancel requests = %d, want 1", b.cancelled)
				}
				return
			}
		case <-deadline:
			t.Fatal("never reached cancelled state")
		}
	}
}

func TestUnknownEventTypesAdvanceCursorAndForward(t *testing.T) {
	b := &fakeBackend{
		conns: []scriptedConn{
			{events: []model.IterationEvent{
				{ID: 1, Type: "future_thing"},
				ev(2, model.EventDone),
			}},
		},
	}
	r := newTestReconnector(b)
	defer r.Stop()
	r.Connect(0)

	got := collectUntilTerminal(t, r)
	var sawUnknown bool
	for _, u := range got {
		if u.Event != nil && u.Event.Type == "future_thing" {
			sawUnknown = true
		}
	}
	if !sawUnknown {
		t.Fatal("unknown event type was not forwarded")
	}
	if r.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", r.Cursor())
	}
}
