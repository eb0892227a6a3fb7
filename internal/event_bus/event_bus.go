package event_bus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType is an identifier for events.
type EventType string

// Event is the envelope delivered to subscribers. Data holds the payload, usually a Change.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent creates a new Event stamped with the current time.
func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context returns the context the event was published with.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is a typed envelope used by typed handlers.
type EventT[T any] struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      T
}

func (e EventT[T]) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type subscription struct {
	id uint64
	h  func(Event) error
}

// EventBus is a concurrency-safe synchronous dispatcher. Handlers run one after
// another, in subscription order, on the publishing goroutine.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	nextID      uint64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]subscription),
	}
}

// Subscribe registers h for every given event type. The returned function removes
// all of those registrations and is safe to call more than once.
func (eb *EventBus) Subscribe(h func(Event) error, eventTypes ...EventType) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID
	for _, eventType := range eventTypes {
		eb.subscribers[eventType] = append(eb.subscribers[eventType], subscription{id: id, h: h})
	}
	eb.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			eb.mu.Lock()
			defer eb.mu.Unlock()
			for _, eventType := range eventTypes {
				subs := slices.DeleteFunc(eb.subscribers[eventType], func(s subscription) bool {
					return s.id == id
				})
				if len(subs) == 0 {
					delete(eb.subscribers, eventType)
				} else {
					eb.subscribers[eventType] = subs
				}
			}
		})
	}
}

// SubscribeTyped registers a handler that only sees events whose payload is a T.
// Events with another payload type are skipped.
//
//	unsub := event_bus.SubscribeTyped(bus, func(e event_bus.EventT[event_bus.Change]) error {
//	    log.Infof("%s %s", e.Data.Kind, e.Data.EntityID)
//	    return nil
//	}, event_bus.ItemInserted, event_bus.ItemDeleted)
func SubscribeTyped[T any](eb *EventBus, h func(EventT[T]) error, eventTypes ...EventType) (unsubscribe func()) {
	wrapper := func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("EventBus: skipping %s, expected %T payload, got %T", e.Type, *new(T), e.Data)
			return nil
		}
		return h(EventT[T]{
			ctx:       e.ctx,
			Type:      e.Type,
			Timestamp: e.Timestamp,
			Data:      payload,
		})
	}
	return eb.Subscribe(wrapper, eventTypes...)
}

// Publish delivers e to every handler subscribed to e.Type. A failing or panicking
// handler does not stop the others; all failures are joined into the returned error.
// Remaining handlers are skipped once the event's context is cancelled.
func (eb *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s: context cancelled before publish: %w", e.Type, err)
	}

	eb.mu.RLock()
	subs := slices.Clone(eb.subscribers[e.Type])
	eb.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("context cancelled during event processing: %w", err))
			break
		}
		if err := invoke(sub, e); err != nil {
			log.Errorf("EventBus: handler %d failed for event %s: %v", sub.id, e.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %w", e.Type, len(errs), errors.Join(errs...))
	}
	return nil
}

func invoke(sub subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %d panicked on event %s: %v", sub.id, e.Type, r)
		}
	}()
	return sub.h(e)
}
