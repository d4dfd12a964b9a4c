package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"co2-monitor/internal/model"
)

// DB is the storage engine. It owns the persisted schema; all other
// components go through its operations.
type DB struct {
	ORM *gorm.DB
}

// Open opens the SQLite database using GORM and runs migrations.
func Open(path string, pool PoolConfig) (*DB, error) {
	g, err := openORM(path, pool)
	if err != nil {
		return nil, err
	}
	if err := migrateORM(g); err != nil {
		_ = closeORM(g)
		return nil, storageErr("migrate", err)
	}
	return &DB{ORM: g}, nil
}

func (d *DB) Close() error { return closeORM(d.ORM) }

// FindSensorIDByAddress does a point lookup on the unique mac_address.
// The second return is false when the address has never been seen.
func (d *DB) FindSensorIDByAddress(ctx context.Context, address string) (int64, bool, error) {
	var s model.Sensor
	err := d.ORM.WithContext(ctx).
		Select("id").
		Where("mac_address = ?", address).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storageErr("findSensorIdByAddress", err)
	}
	return s.ID, true, nil
}

// CreateSensor inserts a new sensor row with name defaulted to the
// hardware address. A concurrent insert for the same address fails the
// unique constraint; callers detect that with IsDuplicate.
func (d *DB) CreateSensor(ctx context.Context, address string, firstSeen int64) (int64, error) {
	s := model.Sensor{
		MacAddress: address,
		Name:       address,
		FirstSeen:  firstSeen,
	}
	if err := d.ORM.WithContext(ctx).Create(&s).Error; err != nil {
		return 0, storageErr("createSensor", err)
	}
	return s.ID, nil
}

// AppendReading inserts one immutable reading row. A sensorID that does
// not reference an existing sensor fails the foreign key.
func (d *DB) AppendReading(ctx context.Context, sensorID int64, m model.Measurement, readingTime int64) (int64, error) {
	r := model.Reading{
		SensorID:    sensorID,
		CO2:         m.CO2,
		Temperature: m.Temperature,
		Humidity:    m.Humidity,
		Lumen:       m.Lumen,
		ReadingTime: readingTime,
	}
	if err := d.ORM.WithContext(ctx).Create(&r).Error; err != nil {
		return 0, storageErr("appendReading", err)
	}
	return r.ID, nil
}

// SensorLatest pairs a sensor with its most recent reading. Reading is
// nil for a sensor that has no readings yet.
type SensorLatest struct {
	Sensor  model.Sensor
	Reading *model.Reading
}

type sensorLatestRow struct {
	SensorID    int64   `gorm:"column:sensor_id"`
	MacAddress  string  `gorm:"column:mac_address"`
	Name        string  `gorm:"column:name"`
	FirstSeen   int64   `gorm:"column:first_seen"`
	ReadingID   int64   `gorm:"column:reading_id"`
	CO2         float64 `gorm:"column:co2"`
	Temperature float64 `gorm:"column:temperature"`
	Humidity    float64 `gorm:"column:humidity"`
	Lumen       float64 `gorm:"column:lumen"`
	ReadingTime int64   `gorm:"column:reading_time"`
}

func (r sensorLatestRow) toSensorLatest() SensorLatest {
	return SensorLatest{
		Sensor: model.Sensor{
			ID:         r.SensorID,
			MacAddress: r.MacAddress,
			Name:       r.Name,
			FirstSeen:  r.FirstSeen,
		},
		Reading: &model.Reading{
			ID:          r.ReadingID,
			SensorID:    r.SensorID,
			CO2:         r.CO2,
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
			Lumen:       r.Lumen,
			ReadingTime: r.ReadingTime,
		},
	}
}

// LatestReadingPerSensor returns, for every sensor with at least one
// reading, the reading with the maximum reading_time. Ties on equal
// reading_time go to the highest reading id. Result ordered by sensor
// name ascending.
func (d *DB) LatestReadingPerSensor(ctx context.Context) ([]SensorLatest, error) {
	// correlated subquery: newest reading id per sensor, walking the
	// (sensor_id, reading_time) index
	sub := d.ORM.Table("readings AS l").
		Select("l.id").
		Where("l.sensor_id = s.id").
		Order("l.reading_time DESC, l.id DESC").
		Limit(1)
	var rows []sensorLatestRow
	err := d.ORM.WithContext(ctx).
		Table("sensors AS s").
		Select("s.id AS sensor_id, s.mac_address, s.name, s.first_seen, r.id AS reading_id, r.co2, r.temperature, r.humidity, r.lumen, r.reading_time").
		Joins("JOIN readings r ON r.sensor_id = s.id").
		Where("r.id = (?)", sub).
		Order("s.name ASC, s.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("latestReadingPerSensor", err)
	}
	out := make([]SensorLatest, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toSensorLatest())
	}
	return out, nil
}

// ReadingsInRange returns all readings for the sensor with reading_time
// in [from, to] inclusive, ordered by reading_time ascending. An
// unknown sensor yields an empty slice, not an error.
func (d *DB) ReadingsInRange(ctx context.Context, sensorID int64, from, to int64) ([]model.Reading, error) {
	out := []model.Reading{}
	err := d.ORM.WithContext(ctx).
		Where("sensor_id = ? AND reading_time >= ? AND reading_time <= ?", sensorID, from, to).
		Order("reading_time ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageErr("readingsInRange", err)
	}
	return out, nil
}

// SensorByID returns the sensor joined with its latest reading.
// ErrSensorNotFound when the id is unknown; Reading is nil when the
// sensor exists but has no readings.
func (d *DB) SensorByID(ctx context.Context, sensorID int64) (SensorLatest, error) {
	var s model.Sensor
	err := d.ORM.WithContext(ctx).First(&s, sensorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SensorLatest{}, ErrSensorNotFound
	}
	if err != nil {
		return SensorLatest{}, storageErr("sensorById", err)
	}
	var latest []model.Reading
	err = d.ORM.WithContext(ctx).
		Where("sensor_id = ?", sensorID).
		Order("reading_time DESC, id DESC").
		Limit(1).
		Find(&latest).Error
	if err != nil {
		return SensorLatest{}, storageErr("sensorById", err)
	}
	sl := SensorLatest{Sensor: s}
	if len(latest) > 0 {
		sl.Reading = &latest[0]
	}
	return sl, nil
}
