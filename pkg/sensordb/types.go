package sensordb

import (
	"time"

	"co2-monitor/internal/db"
	"co2-monitor/internal/model"
	"co2-monitor/internal/query"
)

// --------------------
// DTOs
// --------------------

// Sensor is a registered device.
type Sensor struct {
	ID         int64     `json:"id"`
	MacAddress string    `json:"mac_address"`
	Name       string    `json:"name"`
	FirstSeen  time.Time `json:"first_seen"`
}

// Reading is one immutable measurement.
type Reading struct {
	ID          int64     `json:"id"`
	SensorID    int64     `json:"sensor_id"`
	CO2         float64   `json:"co2"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Lumen       float64   `json:"lumen"`
	ReadingTime time.Time `json:"reading_time"`
}

// Measurement is one decoded sample to ingest.
type Measurement struct {
	CO2         float64 `json:"co2"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Lumen       float64 `json:"lumen"`
}

// SensorLatest pairs a sensor with its most recent reading.
type SensorLatest struct {
	Sensor  Sensor   `json:"sensor"`
	Reading *Reading `json:"reading,omitempty"`
}

// Detail is one sensor's day view with adjacent-date navigation.
// NextDate is zero when no next day is offered.
type Detail struct {
	Sensor   Sensor    `json:"sensor"`
	Latest   *Reading  `json:"latest,omitempty"`
	Date     time.Time `json:"date"`
	Readings []Reading `json:"readings"`
	PrevDate time.Time `json:"prev_date"`
	NextDate time.Time `json:"next_date"`
}

// --------------------
// Converters
// --------------------

func fromModelSensor(s model.Sensor) Sensor {
	return Sensor{
		ID:         s.ID,
		MacAddress: s.MacAddress,
		Name:       s.Name,
		FirstSeen:  model.FromMillis(s.FirstSeen),
	}
}

func fromModelReading(r model.Reading) Reading {
	return Reading{
		ID:          r.ID,
		SensorID:    r.SensorID,
		CO2:         r.CO2,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Lumen:       r.Lumen,
		ReadingTime: model.FromMillis(r.ReadingTime),
	}
}

func fromModelReadings(rs []model.Reading) []Reading {
	out := make([]Reading, 0, len(rs))
	for _, r := range rs {
		out = append(out, fromModelReading(r))
	}
	return out
}

func fromSensorLatest(sl db.SensorLatest) SensorLatest {
	out := SensorLatest{Sensor: fromModelSensor(sl.Sensor)}
	if sl.Reading != nil {
		r := fromModelReading(*sl.Reading)
		out.Reading = &r
	}
	return out
}

func fromQueryDetail(d *query.Detail) *Detail {
	out := &Detail{
		Sensor:   fromModelSensor(d.Sensor),
		Date:     d.Date,
		Readings: fromModelReadings(d.Readings),
		PrevDate: d.PrevDate,
		NextDate: d.NextDate,
	}
	if d.Latest != nil {
		r := fromModelReading(*d.Latest)
		out.Latest = &r
	}
	return out
}
