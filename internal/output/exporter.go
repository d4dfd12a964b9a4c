// Package output writes snapshot and history exports to JSON or CSV
// files for offline analysis.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"co2-monitor/pkg/sensordb"
)

// WriteSnapshotJSON writes the all-sensor snapshot with pretty formatting.
func WriteSnapshotJSON(path string, snapshot []sensordb.SensorLatest) error {
	return writeJSON(path, snapshot)
}

// WriteHistoryJSON writes one sensor's readings with pretty formatting.
func WriteHistoryJSON(path string, readings []sensordb.Reading) error {
	return writeJSON(path, readings)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteSnapshotCSV flattens the snapshot to one row per sensor.
// Columns: sensor_id,name,mac_address,co2,temperature,humidity,lumen,reading_time
func WriteSnapshotCSV(path string, snapshot []sensordb.SensorLatest) error {
	return writeCSV(path,
		[]string{"sensor_id", "name", "mac_address", "co2", "temperature", "humidity", "lumen", "reading_time"},
		len(snapshot),
		func(i int) []string {
			sl := snapshot[i]
			rec := []string{
				strconv.FormatInt(sl.Sensor.ID, 10),
				sl.Sensor.Name,
				sl.Sensor.MacAddress,
				"", "", "", "", "",
			}
			if sl.Reading != nil {
				rec[3] = formatValue(sl.Reading.CO2)
				rec[4] = formatValue(sl.Reading.Temperature)
				rec[5] = formatValue(sl.Reading.Humidity)
				rec[6] = formatValue(sl.Reading.Lumen)
				rec[7] = timeToRFC3339(sl.Reading.ReadingTime)
			}
			return rec
		})
}

// WriteHistoryCSV writes one sensor's readings, one row per reading.
// Columns: reading_id,sensor_id,co2,temperature,humidity,lumen,reading_time
func WriteHistoryCSV(path string, readings []sensordb.Reading) error {
	return writeCSV(path,
		[]string{"reading_id", "sensor_id", "co2", "temperature", "humidity", "lumen", "reading_time"},
		len(readings),
		func(i int) []string {
			r := readings[i]
			return []string{
				strconv.FormatInt(r.ID, 10),
				strconv.FormatInt(r.SensorID, 10),
				formatValue(r.CO2),
				formatValue(r.Temperature),
				formatValue(r.Humidity),
				formatValue(r.Lumen),
				timeToRFC3339(r.ReadingTime),
			}
		})
}

func writeCSV(path string, header []string, n int, record func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func timeToRFC3339(t time.Time) string { return t.Format(time.RFC3339Nano) }
