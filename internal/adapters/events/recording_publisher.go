package events

import (
	"context"
	"sync"
)

type Recorded struct {
	Event   string
	Key     string
	Payload any
}

// RecordingPublisher keeps published events in memory for tests.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Recorded
	Err    error
}

func (r *RecordingPublisher) Publish(_ context.Context, event string, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Recorded{Event: event, Key: key, Payload: payload})
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }

func (r *RecordingPublisher) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}
