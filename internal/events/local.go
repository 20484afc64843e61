package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log; used when Redis is not configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, stream string, event Event) error {
	p.log.Debug("event",
		zap.String("stream", stream),
		zap.String("type", event.Type),
		zap.Any("payload", event.Payload),
	)
	return nil
}

// Bus is an in-process publisher/subscriber pair. It keeps nothing after
// delivery.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]func(Event)
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]func(Event))}
}

func (b *Bus) Publish(_ context.Context, stream string, event Event) error {
	b.mu.RLock()
	handlers := append([]func(Event){}, b.handlers[stream]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (b *Bus) Subscribe(_ context.Context, stream string, handler func(Event)) error {
	b.mu.Lock()
	b.handlers[stream] = append(b.handlers[stream], handler)
	b.mu.Unlock()
	return nil
}

// RecordingBus is a Bus that also keeps every published event so tests
// can inspect them. Its memory grows with each event.
type RecordingBus struct {
	*Bus
	mu       sync.Mutex
	recorded []Recorded
}

type Recorded struct {
	Stream string
	Event  Event
}

func NewRecordingBus() *RecordingBus {
	return &RecordingBus{Bus: NewBus()}
}

func (b *RecordingBus) Publish(ctx context.Context, stream string, event Event) error {
	b.mu.Lock()
	b.recorded = append(b.recorded, Recorded{Stream: stream, Event: event})
	b.mu.Unlock()
	return b.Bus.Publish(ctx, stream, event)
}

func (b *RecordingBus) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, 0, len(b.recorded))
	for _, r := range b.recorded {
		out = append(out, r.Event)
	}
	return out
}

// OfType filters recorded events by type.
func (b *RecordingBus) OfType(eventType string) []Event {
	var out []Event
	for _, e := range b.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
