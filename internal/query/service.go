// Package query serves the read-only views for dashboards: the
// all-sensor snapshot, per-sensor history ranges, and the day-oriented
// detail view.
package query

import (
	"context"
	"time"

	"co2-monitor/internal/db"
	"co2-monitor/internal/model"
)

// DefaultWindow is the history window used when the caller supplies no
// explicit range, anchored at the sensor's latest reading time.
const DefaultWindow = 24 * time.Hour

// Service answers read-only queries against the storage engine.
type Service struct {
	store *db.DB
	loc   *time.Location
	now   func() time.Time
}

func NewService(store *db.DB) *Service {
	return &Service{store: store, loc: time.Local, now: time.Now}
}

// NewServiceIn pins the calendar timezone, for callers that do not want
// the process-local one.
func NewServiceIn(store *db.DB, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, now: time.Now}
}

// Snapshot returns every sensor paired with its most recent reading,
// ordered by sensor name.
func (s *Service) Snapshot(ctx context.Context) ([]db.SensorLatest, error) {
	return s.store.LatestReadingPerSensor(ctx)
}

// History returns the sensor's readings in [from, to] inclusive,
// ordered by reading time. A zero from and to selects the 24 hours
// ending at the sensor's latest reading time, not at wall-clock now, so
// a sensor with stale data still shows its most recent day of activity.
// With an explicit range an unknown sensor yields an empty slice; the
// default window reports ErrSensorNotFound since it must look the
// sensor up.
func (s *Service) History(ctx context.Context, sensorID int64, from, to time.Time) ([]model.Reading, error) {
	if from.IsZero() && to.IsZero() {
		sl, err := s.store.SensorByID(ctx, sensorID)
		if err != nil {
			return nil, err
		}
		if sl.Reading == nil {
			return []model.Reading{}, nil
		}
		toMs := sl.Reading.ReadingTime
		return s.store.ReadingsInRange(ctx, sensorID, toMs-DefaultWindow.Milliseconds(), toMs)
	}
	if from.IsZero() {
		from = to.Add(-DefaultWindow)
	}
	if to.IsZero() {
		to = from.Add(DefaultWindow)
	}
	return s.store.ReadingsInRange(ctx, sensorID, model.Millis(from), model.Millis(to))
}

// Detail is one sensor's day view: its latest reading, all readings of
// the displayed calendar day, and the adjacent dates for navigation.
// NextDate is zero when not offered.
type Detail struct {
	Sensor   model.Sensor
	Latest   *model.Reading
	Date     time.Time
	Readings []model.Reading
	PrevDate time.Time
	NextDate time.Time
}

// Detail returns the day view for one sensor. A zero onDate shows the
// most recent day, the local calendar day of the sensor's latest
// reading; otherwise the requested date's local start-of-day to
// end-of-day. NextDate is only offered when an explicitly requested
// date lies before today; the most-recent view has no next day.
func (s *Service) Detail(ctx context.Context, sensorID int64, onDate time.Time) (*Detail, error) {
	sl, err := s.store.SensorByID(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	d := &Detail{
		Sensor:   sl.Sensor,
		Latest:   sl.Reading,
		Readings: []model.Reading{},
	}

	var day time.Time
	switch {
	case !onDate.IsZero():
		day = s.startOfDay(onDate)
	case sl.Reading != nil:
		day = s.startOfDay(model.FromMillis(sl.Reading.ReadingTime))
	default:
		// never any readings: nothing to show, no navigation
		return d, nil
	}

	fromMs := model.Millis(day)
	toMs := model.Millis(day.AddDate(0, 0, 1)) - 1
	readings, err := s.store.ReadingsInRange(ctx, sensorID, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	d.Date = day
	d.Readings = readings
	d.PrevDate = day.AddDate(0, 0, -1)
	if !onDate.IsZero() && day.Before(s.startOfDay(s.now())) {
		d.NextDate = day.AddDate(0, 0, 1)
	}
	return d, nil
}

func (s *Service) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}
