// Package telemetry records one structured event per completed billing
// operation. Events are the single observability output of the engine;
// business logic never logs inline.
package telemetry

import (
	"context"
	"time"

	"github.com/inkledger/inkledger/internal/platform/id"
)

// Event types, one per completed operation.
const (
	EventPlanCreated         = "billing.plan.created"
	EventInstallmentAdjusted = "billing.installment.adjusted"
	EventInstallmentPaid     = "billing.installment.paid"
	EventInstallmentUpdated  = "billing.installment.updated"
	EventInstallmentDeleted  = "billing.installment.deleted"
	EventOrderCompleted      = "billing.order.completed"
	EventOverdueMarked       = "billing.overdue.marked"
)

// Event is one structured operation record.
type Event struct {
	ID         string
	Type       string
	OccurredAt time.Time
	Fields     map[string]string
}

// Sink accepts completed-operation events.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// NopSink discards every event.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(context.Context, Event) error { return nil }

// EventStore is the persistence boundary for emitted events.
type EventStore interface {
	AppendEvent(ctx context.Context, event Event) error
}

// Emitter persists events to an EventStore, assigning each an ID.
type Emitter struct {
	store EventStore
	newID func() (string, error)
}

// NewEmitter constructs a store-backed event sink.
func NewEmitter(store EventStore, newID func() (string, error)) *Emitter {
	if newID == nil {
		newID = id.NewID
	}
	return &Emitter{store: store, newID: newID}
}

// Emit implements Sink.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if e == nil || e.store == nil {
		return nil
	}
	if event.ID == "" {
		eventID, err := e.newID()
		if err != nil {
			return err
		}
		event.ID = eventID
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return e.store.AppendEvent(ctx, event)
}
