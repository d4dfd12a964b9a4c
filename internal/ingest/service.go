package ingest

import (
	"context"
	"fmt"
	"time"

	"co2-monitor/internal/db"
	"co2-monitor/internal/model"
)

// IngestionError attributes a failed ingestion to the address and
// capture time it was submitted with.
type IngestionError struct {
	Address    string
	CapturedAt time.Time
	Err        error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s at %s: %v", e.Address, e.CapturedAt.Format(time.RFC3339Nano), e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Service accepts one decoded measurement and durably records it.
type Service struct {
	resolver *Resolver
	store    *db.DB
}

func NewService(store *db.DB) *Service {
	return &Service{resolver: NewResolver(store), store: store}
}

// Ingest resolves the sensor identity for address and appends the
// reading, returning the new reading id.
//
// A failed append does not roll back an identity created in the resolve
// step: a sensor row without readings is harmless, and the caller is
// still told ingestion failed.
func (s *Service) Ingest(ctx context.Context, address string, m model.Measurement, capturedAt time.Time) (int64, error) {
	sensorID, err := s.resolver.Resolve(ctx, address, capturedAt)
	if err != nil {
		return 0, &IngestionError{Address: address, CapturedAt: capturedAt, Err: err}
	}
	readingID, err := s.store.AppendReading(ctx, sensorID, m, model.Millis(capturedAt))
	if err != nil {
		return 0, &IngestionError{Address: address, CapturedAt: capturedAt, Err: err}
	}
	return readingID, nil
}
