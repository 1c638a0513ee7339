package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkledger/inkledger/internal/services/billing/storage"
	"github.com/inkledger/inkledger/internal/telemetry"
)

// eventStoreAdapter persists telemetry events to the billing_events table,
// encoding their fields as JSON.
type eventStoreAdapter struct {
	events storage.EventStore
}

func newEventStoreAdapter(events storage.EventStore) *eventStoreAdapter {
	return &eventStoreAdapter{events: events}
}

func (a *eventStoreAdapter) AppendEvent(ctx context.Context, event telemetry.Event) error {
	if a == nil || a.events == nil {
		return nil
	}
	fieldsJSON := "{}"
	if len(event.Fields) > 0 {
		encoded, err := json.Marshal(event.Fields)
		if err != nil {
			return fmt.Errorf("encode event fields: %w", err)
		}
		fieldsJSON = string(encoded)
	}
	return a.events.AppendEvent(ctx, storage.EventRecord{
		ID:         event.ID,
		EventType:  event.Type,
		OccurredAt: event.OccurredAt,
		FieldsJSON: fieldsJSON,
	})
}
