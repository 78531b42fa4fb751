// Package stream maintains a live view of an iteration session's event
// stream across network interruptions. A dedicated goroutine owns the
// connection and pushes updates onto a channel consumed by the UI loop;
// reconnects resume from the highest event id seen so far, so a session
// replayed across any number of drops renders identically to one delivered
// over a single unbroken connection.
package stream

import (
	"context"

	"ralphx-cli/internal/api"
	"ralphx-cli/internal/model"
)

// Stream is one open connection delivering events in non-decreasing id order.
type Stream interface {
	Events() <-chan model.IterationEvent
	// Err is valid after Events closes; nil means a server-side EOF.
	Err() error
	Close()
}

// Backend is the slice of the API the reconnector needs. *api.Client
// satisfies it via ClientBackend.
type Backend interface {
	StreamEvents(ctx context.Context, sessionID string, afterEventID int64) (Stream, error)
	// SessionRunning probes whether the session still has running status.
	SessionRunning(ctx context.Context, sessionID string) (bool, error)
	CancelSession(ctx context.Context, sessionID string) error
}

// ClientBackend adapts *api.Client to the Backend interface.
type ClientBackend struct {
	Client *api.Client
}

func (b ClientBackend) StreamEvents(ctx context.Context, sessionID string, afterEventID int64) (Stream, error) {
	st, err := b.Client.StreamEvents(ctx, sessionID, afterEventID)
	if err != nil {
		return nil, err
	}
	return clientStream{st}, nil
}

func (b ClientBackend) SessionRunning(ctx context.Context, sessionID string) (bool, error) {
	s, err := b.Client.GetSession(ctx, sessionID)
	if err != nil {
		if api.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return s.Status == model.SessionRunning, nil
}

func (b ClientBackend) CancelSession(ctx context.Context, sessionID string) error {
	return b.Client.CancelSession(ctx, sessionID)
}

type clientStream struct {
	st *api.EventStream
}

func (s clientStream) Events() <-chan model.IterationEvent { return s.st.Events }
func (s clientStream) Err() error                          { return s.st.Err() }
func (s clientStream) Close()                              { s.st.Close() }
