package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SessionEventKind string

const (
	SessionSignedIn       SessionEventKind = "signed_in"
	SessionSignedOut      SessionEventKind = "signed_out"
	SessionTokenRefreshed SessionEventKind = "token_refreshed"
)

type SessionEvent struct {
	Kind   SessionEventKind `json:"kind"`
	UserID uuid.UUID        `json:"user_id"`
	Email  string           `json:"email"`
	At     time.Time        `json:"at"`
}

// SessionNotifier fans session changes out to in-process subscribers and the
// event publisher.
type SessionNotifier struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(SessionEvent)
	events   EventPublisher
}

func NewSessionNotifier(events EventPublisher) *SessionNotifier {
	return &SessionNotifier{
		handlers: make(map[int]func(SessionEvent)),
		events:   events,
	}
}

// Subscribe registers handler and returns a function that removes it.
func (notifier *SessionNotifier) Subscribe(handler func(SessionEvent)) func() {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	id := notifier.nextID
	notifier.nextID++
	notifier.handlers[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			notifier.mu.Lock()
			defer notifier.mu.Unlock()
			delete(notifier.handlers, id)
		})
	}
}

func (notifier *SessionNotifier) Notify(ctx context.Context, event SessionEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	notifier.mu.RLock()
	handlers := make([]func(SessionEvent), 0, len(notifier.handlers))
	for _, handler := range notifier.handlers {
		handlers = append(handlers, handler)
	}
	notifier.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
	publishEvent(ctx, notifier.events, TopicSessionChanged, event)
}
