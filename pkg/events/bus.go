package events

import (
	"context"
	"fmt"
	"sync"
	"time"
	"travelbook/pkg/logger"
	"travelbook/pkg/metrics"

	"github.com/google/uuid"
)

// Handler reacts to a published event. It must not block for long.
type Handler func(ctx context.Context, e Event)

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Sink forwards events out of the process.
type Sink interface {
	Name() string
	Send(ctx context.Context, e Event) error
	Close() error
}

type subscription struct {
	types   map[Type]bool
	handler Handler
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[int]subscription
	nextID int
	order  []int
	sink   Sink
	orgOf  func(ctx context.Context) string
	log    *logger.Logger
}

// NewBus creates a bus. sink may be nil.
func NewBus(sink Sink, log *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[int]subscription),
		sink: sink,
		log:  log,
	}
}

// ResolveOrganization sets how events without an organization get one from
// the publishing context.
func (b *Bus) ResolveOrganization(fn func(ctx context.Context) string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orgOf = fn
}

// Subscribe registers handler for the given types, or for every type when
// none are given. The returned func removes the subscription.
func (b *Bus) Subscribe(handler Handler, types ...Type) func() {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[Type]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	if e.OrganizationID == "" && b.orgOf != nil {
		e.OrganizationID = b.orgOf(ctx)
	}
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		sub := b.subs[id]
		if sub.types == nil || sub.types[e.Type] {
			handlers = append(handlers, sub.handler)
		}
	}
	sink := b.sink
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, h, e)
	}

	if sink == nil {
		return
	}
	if err := sink.Send(ctx, e); err != nil {
		metrics.EventsFailed.WithLabelValues(string(e.Type), sink.Name()).Inc()
		b.log.Warn("Event sink rejected event",
			"sink", sink.Name(),
			"event_type", e.Type,
			"event_id", e.ID,
			"error", err,
		)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(e.Type), sink.Name()).Inc()
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Event handler panicked",
				"event_type", e.Type,
				"event_id", e.ID,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	h(ctx, e)
}

func (b *Bus) Close() error {
	if b.sink == nil {
		return nil
	}
	return b.sink.Close()
}

// Discard drops every event. Used where no bus is wired.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
