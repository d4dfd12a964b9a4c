package model

import "time"

// Sensor is a registered device. Exactly one row exists per distinct
// hardware address; the unique index on mac_address enforces that under
// concurrent first-contact ingestion.
type Sensor struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	MacAddress string `gorm:"column:mac_address;uniqueIndex;not null"`
	Name       string `gorm:"column:name;not null"`
	// FirstSeen is the capture time of the first accepted reading,
	// epoch milliseconds.
	FirstSeen int64 `gorm:"column:first_seen;not null"`

	Readings []Reading `gorm:"foreignKey:SensorID;references:ID"`
}

func (Sensor) TableName() string { return "sensors" }

// Reading is one immutable measurement. Rows are append-only: never
// updated or deleted.
type Reading struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	SensorID    int64   `gorm:"column:sensor_id;not null;index:idx_readings_sensor_time,priority:1"`
	CO2         float64 `gorm:"column:co2"`
	Temperature float64 `gorm:"column:temperature"`
	Humidity    float64 `gorm:"column:humidity"`
	Lumen       float64 `gorm:"column:lumen"`
	// ReadingTime is the client-side capture time in epoch milliseconds.
	// Epoch integers sort numerically in chronological order, which the
	// range and latest-per-sensor queries rely on.
	ReadingTime int64 `gorm:"column:reading_time;not null;index:idx_readings_sensor_time,priority:2"`

	Sensor Sensor `gorm:"foreignKey:SensorID;references:ID"`
}

func (Reading) TableName() string { return "readings" }

// Measurement is one decoded sample as received from a sensor,
// unit-agnostic.
type Measurement struct {
	CO2         float64
	Temperature float64
	Humidity    float64
	Lumen       float64
}

// Millis converts a time to epoch milliseconds with floor rounding.
// Floor (not round-to-nearest) keeps repeated conversions monotonic
// non-decreasing.
func Millis(t time.Time) int64 {
	return t.Truncate(time.Millisecond).UnixMilli()
}

// FromMillis converts stored epoch milliseconds back to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
