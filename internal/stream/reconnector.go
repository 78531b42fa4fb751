package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ralphx-cli/internal/model"
)

// State is the client-observed view of a session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateReconnecting
	// Terminal states. Sticky: once reached, no further reconnects happen
	// until a manual Retry.
	StateDone
	StateCancelled
	StateErrored
	StateLost
)

func (s State) Terminal() bool { return s >= StateDone }

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateReconnecting:
		return "reconnecting"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateErrored:
		return "error"
	case StateLost:
		return "lost"
	}
	return "unknown"
}

// Reason says why a terminal state was reached.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonDoneEvent: an explicit done event arrived.
	ReasonDoneEvent
	// ReasonCancelledEvent: an explicit cancelled event arrived, or the user
	// cancelled locally.
	ReasonCancelledEvent
	// ReasonFatalError: an error event with the fatal flag arrived.
	ReasonFatalError
	// ReasonSessionGone: no running session was found while reconnecting or
	// after the staleness watchdog fired. No terminal event was ever seen,
	// so the session may have ended uncleanly; the UI should say so rather
	// than present it as a clean completion.
	ReasonSessionGone
	// ReasonConnectionLost: the reconnect attempt bound was exceeded.
	ReasonConnectionLost
)

// Update is one state-machine transition or forwarded event.
type Update struct {
	State State
	// Event is set when a non-heartbeat event is forwarded (State streaming)
	// and on terminal transitions caused by an explicit terminal event.
	Event *model.IterationEvent
	// Attempt is the consecutive failure count (State reconnecting).
	Attempt int
	Reason  Reason
	Err     error
}

const (
	defaultMaxAttempts  = 5
	defaultBackoff      = 2 * time.Second
	defaultStaleTimeout = 90 * time.Second
	probeTimeout        = 10 * time.Second
)

// Reconnector drives one session's stream. At most one connection and one
// backoff timer exist at any time; all timers stop on teardown or on
// reaching a terminal state.
type Reconnector struct {
	backend   Backend
	sessionID string

	maxAttempts  int
	backoff      time.Duration
	staleTimeout time.Duration
	log          zerolog.Logger

	updates chan Update
	stopCh  chan struct{}

	mu      sync.Mutex
	cursor  int64
	state   State
	running bool
	cancel  context.CancelFunc
	stopped bool
}

type Option func(*Reconnector)

func WithMaxAttempts(n int) Option {
	return func(r *Reconnector) { r.maxAttempts = n }
}

func WithBackoff(d time.Duration) Option {
	return func(r *Reconnector) { r.backoff = d }
}

func WithStaleTimeout(d time.Duration) Option {
	return func(r *Reconnector) { r.staleTimeout = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(r *Reconnector) { r.log = log }
}

func New(backend Backend, sessionID string, opts ...Option) *Reconnector {
	r := &Reconnector{
		backend:      backend,
		sessionID:    sessionID,
		maxAttempts:  defaultMaxAttempts,
		backoff:      defaultBackoff,
		staleTimeout: defaultStaleTimeout,
		log:          zerolog.Nop(),
		updates:      make(chan Update, 16),
		stopCh:       make(chan struct{}),
		state:        StateIdle,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Updates delivers state transitions and forwarded events. The channel never
// closes; consumers stop reading once they have seen a terminal update (or
// after calling Stop).
func (r *Reconnector) Updates() <-chan Update { return r.updates }

// Cursor is the highest event id applied so far.
func (r *Reconnector) Cursor() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// State is the last state emitted.
func (r *Reconnector) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Connect starts streaming events strictly after afterEventID. No-op if the
// reconnector is already running or has been stopped.
func (r *Reconnector) Connect(afterEventID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.stopped {
		return
	}
	r.cursor = afterEventID
	r.startLocked()
}

// Retry restarts a lost or errored session from the current cursor with a
// fresh attempt counter. No-op unless the state is terminal.
func (r *Reconnector) Retry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.stopped || !r.state.Terminal() {
		return
	}
	r.startLocked()
}

func (r *Reconnector) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.running = true
	go r.run(ctx)
}

// Cancel requests backend cancellation, then unconditionally closes the
// local connection. Fire-and-forget: the UI treats itself as stopped
// without waiting for a server acknowledgment.
func (r *Reconnector) Cancel(ctx context.Context) {
	if err := r.backend.CancelSession(ctx, r.sessionID); err != nil {
		r.log.Warn().Err(err).Str("session", r.sessionID).Msg("cancel request failed")
	}
	r.mu.Lock()
	cancel := r.cancel
	r.running = false
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.emit(Update{State: StateCancelled, Reason: ReasonCancelledEvent})
}

// Stop tears the reconnector down. Pending updates may remain buffered but
// nothing further is emitted.
func (r *Reconnector) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	close(r.stopCh)
}

// emit delivers an update unless the reconnector has been stopped. The send
// blocks (so no transition is lost) but gives up on Stop.
func (r *Reconnector) emit(u Update) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.state = u.State
	r.mu.Unlock()
	select {
	case r.updates <- u:
	case <-r.stopCh:
	}
}

func (r *Reconnector) finish(u Update) {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	r.emit(u)
}

// run is the connection-owning goroutine: one iteration of the outer loop is
// one connection lifetime.
func (r *Reconnector) run(ctx context.Context) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	attempts := 0
	r.emit(Update{State: StateConnecting})

	for {
		r.mu.Lock()
		cursor := r.cursor
		r.mu.Unlock()

		st, err := r.backend.StreamEvents(ctx, r.sessionID, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.Debug().Err(err).Int("attempt", attempts+1).Msg("stream open failed")
			if !r.awaitReconnect(ctx, &attempts, err) {
				return
			}
			continue
		}

		// A successful connection ends the consecutive-failure streak.
		attempts = 0
		r.emit(Update{State: StateStreaming})

		streamErr, terminal := r.consume(ctx, st)
		if terminal || ctx.Err() != nil {
			return
		}
		if !r.awaitReconnect(ctx, &attempts, streamErr) {
			return
		}
	}
}

// consume reads one connection until it ends. Returns terminal=true when a
// sticky terminal update has been emitted (no reconnect may follow).
func (r *Reconnector) consume(ctx context.Context, st Stream) (streamErr error, terminal bool) {
	defer st.Close()

	stale := time.NewTimer(r.staleTimeout)
	defer stale.Stop()
	resetStale := func() {
		if !stale.Stop() {
			select {
			case <-stale.C:
			default:
			}
		}
		stale.Reset(r.staleTimeout)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, true

		case ev, ok := <-st.Events():
			if !ok {
				// Connection dropped (or server EOF): reconnect path.
				return st.Err(), false
			}
			if ev.Type == model.EventHeartbeat {
				// Liveness only; never touches displayed state or cursor.
				resetStale()
				continue
			}
			r.mu.Lock()
			applied := ev.ID > r.cursor
			if applied {
				r.cursor = ev.ID
			}
			r.mu.Unlock()
			if !applied {
				// Seen before a reconnect; replay must be idempotent on id.
				r.log.Debug().Int64("id", ev.ID).Msg("dropping duplicate event")
				continue
			}
			resetStale()
			if ev.Terminal() {
				r.finish(terminalUpdate(ev))
				return nil, true
			}
			e := ev
			r.emit(Update{State: StateStreaming, Event: &e})

		case <-stale.C:
			// Watchdog: the connection neither errored nor produced events.
			// If the backend has nothing running, force-stop; otherwise keep
			// waiting on the same connection.
			running, err := r.probe()
			if err == nil && !running {
				r.log.Info().Str("session", r.sessionID).Msg("watchdog: no active session, stopping")
				r.finish(Update{State: StateDone, Reason: ReasonSessionGone})
				return nil, true
			}
			if err != nil {
				r.log.Debug().Err(err).Msg("watchdog probe failed")
			}
			resetStale()
		}
	}
}

// awaitReconnect handles one connection failure: bound the attempt count,
// back off, then probe whether the session is still worth reconnecting to.
// Returns false when the run loop must exit (a terminal update was emitted
// or the context was cancelled).
func (r *Reconnector) awaitReconnect(ctx context.Context, attempts *int, cause error) bool {
	*attempts++
	if *attempts > r.maxAttempts {
		r.log.Warn().Str("session", r.sessionID).Int("attempts", *attempts-1).Msg("reconnect attempts exhausted")
		r.finish(Update{State: StateLost, Reason: ReasonConnectionLost, Err: cause})
		return false
	}
	r.emit(Update{State: StateReconnecting, Attempt: *attempts, Err: cause})

	t := time.NewTimer(r.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
	}

	running, err := r.probe()
	if err != nil {
		// Probe failure is indistinguishable from the connection failure
		// that got us here; let the next connect attempt decide.
		r.log.Debug().Err(err).Msg("reconnect probe failed")
		return true
	}
	if !running {
		// The session ended while we were disconnected and we never saw its
		// terminal event. Surfaced as session-gone, not as a clean done.
		r.finish(Update{State: StateDone, Reason: ReasonSessionGone})
		return false
	}
	return true
}

func (r *Reconnector) probe() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return r.backend.SessionRunning(ctx, r.sessionID)
}

func terminalUpdate(ev model.IterationEvent) Update {
	e := ev
	u := Update{Event: &e}
	switch ev.Type {
	case model.EventDone:
		u.State = StateDone
		u.Reason = ReasonDoneEvent
	case model.EventCancelled:
		u.State = StateCancelled
		u.Reason = ReasonCancelledEvent
	default: // fatal error event
		u.State = StateErrored
		u.Reason = ReasonFatalError
	}
	return u
}
