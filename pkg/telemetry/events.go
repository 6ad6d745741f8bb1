package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event represents a telemetry event in the hydrate system.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// RunID is the associated run ID, if applicable.
	RunID string `json:"run_id,omitempty"`

	// Cycle is the associated cycle number, if applicable.
	Cycle int `json:"cycle,omitempty"`

	// Path is the associated placeholder path, if applicable.
	Path string `json:"path,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`
}

// EventType constants for hydrate events.
const (
	EventTypeRunStarted      = "run.started"
	EventTypeRunCompleted    = "run.completed"
	EventTypeCycleStarted    = "cycle.started"
	EventTypeCycleCompleted  = "cycle.completed"
	EventTypeEntryDispatched = "entry.dispatched"
	EventTypeEntryExcluded   = "entry.excluded"
	EventTypeEntrySucceeded  = "entry.succeeded"
	EventTypeEntryTimedOut   = "entry.timed_out"
)

// EventLevel constants for event severity.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventPublisher delivers events asynchronously to registered subscribers.
// Publishing never blocks the engine: when the buffer is full, events are
// dropped with a debug log.
type EventPublisher struct {
	config EventsConfig
	buffer chan Event

	mu          sync.RWMutex
	subscribers []EventSubscriber

	wg sync.WaitGroup
}

// NewEventPublisher creates an event publisher. When disabled, Publish is a
// no-op.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	p := &EventPublisher{config: cfg}
	if !cfg.Enabled {
		return p, nil
	}

	size := cfg.BufferSize
	if size <= 0 {
		size = 256
	}
	p.buffer = make(chan Event, size)

	p.wg.Add(1)
	go p.dispatch()
	return p, nil
}

func (p *EventPublisher) dispatch() {
	defer p.wg.Done()
	for event := range p.buffer {
		p.mu.RLock()
		subs := p.subscribers
		p.mu.RUnlock()
		for _, sub := range subs {
			sub(event)
		}
	}
}

// Subscribe registers a subscriber for all future events.
func (p *EventPublisher) Subscribe(sub EventSubscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, sub)
}

// Publish enqueues an event, filling in its ID and timestamp.
func (p *EventPublisher) Publish(_ context.Context, event Event) {
	if p.buffer == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case p.buffer <- event:
	default:
		log.Debug().Str("type", event.Type).Msg("event buffer full, dropping event")
	}
}

// Close stops the publisher after draining buffered events.
func (p *EventPublisher) Close() {
	if p.buffer == nil {
		return
	}
	close(p.buffer)
	p.wg.Wait()
}
