package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"co2-monitor/internal/db"
	"co2-monitor/internal/ingest"
	"co2-monitor/internal/model"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "co2monitor_test.sqlite")
	store, err := db.Open(path, db.PoolConfig{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestResolveCreatesOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestDB(t)
	resolver := ingest.NewResolver(store)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Minute)

	id1, err := resolver.Resolve(ctx, "AA:BB", t1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	id2, err := resolver.Resolve(ctx, "AA:BB", t2)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected stable sensor id, got %d then %d", id1, id2)
	}

	sl, err := store.SensorByID(ctx, id1)
	if err != nil {
		t.Fatalf("SensorByID failed: %v", err)
	}
	if sl.Sensor.FirstSeen != model.Millis(t1) {
		t.Fatalf("expected first_seen from first resolve (%d), got %d", model.Millis(t1), sl.Sensor.FirstSeen)
	}
}

func TestResolveConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestDB(t)
	resolver := ingest.NewResolver(store)

	const callers = 8
	ids := make([]int64, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = resolver.Resolve(ctx, "CC:DD", time.Now())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("caller %d got id %d, caller 0 got %d", i, ids[i], ids[0])
		}
	}

	var count int64
	if err := store.ORM.Model(&model.Sensor{}).Where("mac_address = ?", "CC:DD").Count(&count).Error; err != nil {
		t.Fatalf("count sensors: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one sensor row, got %d", count)
	}
}

func TestIngestLazyRegistration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestDB(t)
	svc := ingest.NewService(store)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	m := model.Measurement{CO2: 450, Temperature: 21.5, Humidity: 40, Lumen: 300}

	r1, err := svc.Ingest(ctx, "AA:BB", m, t1)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	r2, err := svc.Ingest(ctx, "AA:BB", model.Measurement{CO2: 460}, t2)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if r1 == r2 {
		t.Fatalf("expected distinct reading ids, got %d twice", r1)
	}

	id, ok, err := store.FindSensorIDByAddress(ctx, "AA:BB")
	if err != nil || !ok {
		t.Fatalf("expected sensor to exist after ingest (ok=%v, err=%v)", ok, err)
	}
	sl, err := store.SensorByID(ctx, id)
	if err != nil {
		t.Fatalf("SensorByID failed: %v", err)
	}
	if sl.Sensor.FirstSeen != model.Millis(t1) {
		t.Fatalf("expected first_seen %d, got %d", model.Millis(t1), sl.Sensor.FirstSeen)
	}
	if sl.Sensor.Name != "AA:BB" {
		t.Fatalf("expected name defaulted to address, got %q", sl.Sensor.Name)
	}

	snapshot, err := store.LatestReadingPerSensor(ctx)
	if err != nil {
		t.Fatalf("LatestReadingPerSensor failed: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected one sensor entry, got %d", len(snapshot))
	}
	if snapshot[0].Reading.ReadingTime != model.Millis(t2) {
		t.Fatalf("expected snapshot to report the %v reading, got %d", t2, snapshot[0].Reading.ReadingTime)
	}
}

func TestIngestErrorCarriesContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestDB(t)
	svc := ingest.NewService(store)

	// closing the store forces the storage error path
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	capturedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := svc.Ingest(ctx, "EE:FF", model.Measurement{}, capturedAt)
	if err == nil {
		t.Fatal("expected ingest against a closed store to fail")
	}
	var ie *ingest.IngestionError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IngestionError, got %T: %v", err, err)
	}
	if ie.Address != "EE:FF" {
		t.Fatalf("expected address in error, got %q", ie.Address)
	}
	if !ie.CapturedAt.Equal(capturedAt) {
		t.Fatalf("expected capture time in error, got %v", ie.CapturedAt)
	}
}
