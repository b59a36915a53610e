// events/events.go
package events

import (
	"context"
	"errors"
	"time"

	"hotel-addons/models"
)

type EventType string

const (
	AddonCommitted EventType = "addon.committed"
	AddonUpdated   EventType = "addon.updated"
	AddonDeleted   EventType = "addon.deleted"
	AddonInvoiced  EventType = "addon.invoiced"
)

// AddonEvent is emitted by the order store after a mutation has been persisted.
// Events of one addon may arrive out of order; a reader keeps the highest
// Version it has seen per addon and drops anything older (see IsNewer).
type AddonEvent struct {
	Type       EventType                      `json:"type"`
	AddonID    uint                           `json:"addonId"`
	Version    uint                           `json:"version"`
	PayerRef   string                         `json:"payerRef"`
	Actor      string                         `json:"actor"`
	Addon      models.ReservationServiceAddon `json:"addon"`
	OccurredAt time.Time                      `json:"occurredAt"`
}

// IsNewer reports whether e supersedes the last version applied for its addon.
func (e AddonEvent) IsNewer(lastApplied uint) bool {
	return e.Version > lastApplied
}

type Publisher interface {
	Publish(ctx context.Context, event AddonEvent) error
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event AddonEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, AddonEvent) error { return nil }
