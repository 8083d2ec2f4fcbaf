package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGiveawayDetected EventType = "giveaway_detected"
	EventTypeEntryRecorded    EventType = "entry_recorded"
	EventTypeWinnersDrawn     EventType = "winners_drawn"
	EventTypeGroupApproved    EventType = "group_approved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// GiveawayDetectedEvent represents a mention-tagged channel post entering tracking
type GiveawayDetectedEvent struct {
	ChannelID         int64
	ChannelPostID     int64
	DiscussionGroupID *int64
}

func (e GiveawayDetectedEvent) Type() EventType {
	return EventTypeGiveawayDetected
}

// EntryRecordedEvent represents a comment entry accepted into the ledger
type EntryRecordedEvent struct {
	GroupID       int64
	ChannelID     int64
	ChannelPostID int64
	UserID        int64
}

func (e EntryRecordedEvent) Type() EventType {
	return EventTypeEntryRecorded
}

// WinnersDrawnEvent represents a completed draw commit for one post
type WinnersDrawnEvent struct {
	DrawID        string
	GroupID       int64
	ChannelID     int64
	ChannelPostID int64
	EntryCount    int
	WinnerUserIDs []int64
}

func (e WinnersDrawnEvent) Type() EventType {
	return EventTypeWinnersDrawn
}

// GroupApprovedEvent represents an owner approval of a discussion group
type GroupApprovedEvent struct {
	GroupID    int64
	ApprovedBy int64
}

func (e GroupApprovedEvent) Type() EventType {
	return EventTypeGroupApproved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to the unit of work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission to avoid issues with transaction context expiration
	// Events should be processed independently of the transaction lifecycle
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
