// Package sensordb is the public client for the sensor time-series
// store. It exposes ingestion and query operations over plain data
// structures, keeping gorm and the internal packages out of the
// presentation layer.
package sensordb

import (
	"context"
	"errors"
	"time"

	"co2-monitor/internal/db"
	"co2-monitor/internal/ingest"
	"co2-monitor/internal/model"
	"co2-monitor/internal/query"
)

// ErrSensorNotFound reports a query for a sensor id that does not exist.
var ErrSensorNotFound = db.ErrSensorNotFound

// Options tune an opened client. The zero value picks sane defaults.
type Options struct {
	Pool db.PoolConfig
	// Location is the calendar timezone for day-oriented detail views;
	// defaults to the process-local zone.
	Location *time.Location
}

// Client bundles the storage engine with the ingestion and query
// services over one connection pool.
type Client struct {
	db     *db.DB
	ingest *ingest.Service
	query  *query.Service
}

// Open opens (creating if missing) the SQLite store at path.
func Open(path string) (*Client, error) {
	return OpenWith(path, Options{})
}

// OpenWith opens the store with explicit options.
func OpenWith(path string, opts Options) (*Client, error) {
	store, err := db.Open(path, opts.Pool)
	if err != nil {
		return nil, err
	}
	var q *query.Service
	if opts.Location != nil {
		q = query.NewServiceIn(store, opts.Location)
	} else {
		q = query.NewService(store)
	}
	return &Client{
		db:     store,
		ingest: ingest.NewService(store),
		query:  q,
	}, nil
}

func (c *Client) Close() error { return c.db.Close() }

// Ingest records one measurement for the sensor at address, creating
// the sensor on first contact, and returns the new reading id.
// capturedAt is stamped with millisecond precision (floor rounding).
func (c *Client) Ingest(ctx context.Context, address string, m Measurement, capturedAt time.Time) (int64, error) {
	return c.ingest.Ingest(ctx, address, toModelMeasurement(m), capturedAt)
}

// Snapshot returns every sensor with its most recent reading, ordered
// by sensor name.
func (c *Client) Snapshot(ctx context.Context) ([]SensorLatest, error) {
	sls, err := c.query.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SensorLatest, 0, len(sls))
	for _, sl := range sls {
		out = append(out, fromSensorLatest(sl))
	}
	return out, nil
}

// History returns the sensor's readings in [from, to] inclusive. Zero
// from and to select the 24 hours ending at the sensor's latest
// reading time.
func (c *Client) History(ctx context.Context, sensorID int64, from, to time.Time) ([]Reading, error) {
	rs, err := c.query.History(ctx, sensorID, from, to)
	if err != nil {
		return nil, err
	}
	return fromModelReadings(rs), nil
}

// Detail returns the day view for one sensor; a zero onDate shows the
// most recent day. ErrSensorNotFound when the id is unknown.
func (c *Client) Detail(ctx context.Context, sensorID int64, onDate time.Time) (*Detail, error) {
	d, err := c.query.Detail(ctx, sensorID, onDate)
	if err != nil {
		return nil, err
	}
	return fromQueryDetail(d), nil
}

// IsNotFound reports whether err means "no such sensor", as opposed to
// a storage malfunction.
func IsNotFound(err error) bool {
	return errors.Is(err, db.ErrSensorNotFound)
}

func toModelMeasurement(m Measurement) model.Measurement {
	return model.Measurement{
		CO2:         m.CO2,
		Temperature: m.Temperature,
		Humidity:    m.Humidity,
		Lumen:       m.Lumen,
	}
}
