// Package ingest turns decoded measurements into durable rows: it
// resolves a hardware address to a stable sensor id, registering
// unseen sensors lazily, and appends the reading.
package ingest

import (
	"context"
	"fmt"
	"time"

	"co2-monitor/internal/db"
	"co2-monitor/internal/model"
)

// Resolver maps a volatile hardware address to a stable sensor id,
// creating the identity lazily and exactly once.
type Resolver struct {
	store *db.DB
}

func NewResolver(store *db.DB) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the sensor id for the address, creating a sensor row
// with first_seen = observedAt on first contact.
//
// Two concurrent first-contact requests can both observe "absent" and
// both attempt the insert; the unique constraint on mac_address makes
// the loser fail with a duplicate-key error. That one failure is
// recovered locally by retrying the lookup once, since the winner's row
// is visible by then. Every other storage error propagates unchanged.
func (r *Resolver) Resolve(ctx context.Context, address string, observedAt time.Time) (int64, error) {
	id, ok, err := r.store.FindSensorIDByAddress(ctx, address)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	id, err = r.store.CreateSensor(ctx, address, model.Millis(observedAt))
	if err == nil {
		return id, nil
	}
	if !db.IsDuplicate(err) {
		return 0, err
	}

	id, ok, lookupErr := r.store.FindSensorIDByAddress(ctx, address)
	if lookupErr != nil {
		return 0, lookupErr
	}
	if !ok {
		// the winner's row vanished between insert and retry;
		// nothing left to recover
		return 0, fmt.Errorf("resolve %s: %w", address, err)
	}
	return id, nil
}
