package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"co2-monitor/internal/output"
	"co2-monitor/pkg/sensordb"
)

func main() {
	var dbPath string
	var outJSON string
	var outCSV string
	var sensorID int64
	var fromStr, toStr string
	flag.StringVar(&dbPath, "db", "co2monitor.sqlite", "path to sqlite database")
	flag.StringVar(&outJSON, "json", "", "path to write JSON output (optional)")
	flag.StringVar(&outCSV, "csv", "", "path to write CSV output (optional)")
	flag.Int64Var(&sensorID, "sensor", 0, "sensor id: export that sensor's history instead of the snapshot")
	flag.StringVar(&fromStr, "from", "", "history range start (RFC3339), default: 24h before latest reading")
	flag.StringVar(&toStr, "to", "", "history range end (RFC3339)")
	flag.Parse()

	if outJSON == "" && outCSV == "" {
		log.Fatalf("no output specified: set --json and/or --csv")
	}

	client, err := sensordb.Open(dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if sensorID == 0 {
		snapshot, err := client.Snapshot(ctx)
		if err != nil {
			log.Fatalf("snapshot: %v", err)
		}
		if outJSON != "" {
			if err := output.WriteSnapshotJSON(outJSON, snapshot); err != nil {
				log.Fatalf("write json: %v", err)
			}
			log.Printf("wrote %d sensors to %s", len(snapshot), outJSON)
		}
		if outCSV != "" {
			if err := output.WriteSnapshotCSV(outCSV, snapshot); err != nil {
				log.Fatalf("write csv: %v", err)
			}
			log.Printf("wrote %d sensors to %s", len(snapshot), outCSV)
		}
		return
	}

	from, err := parseTime(fromStr)
	if err != nil {
		log.Fatalf("parse --from: %v", err)
	}
	to, err := parseTime(toStr)
	if err != nil {
		log.Fatalf("parse --to: %v", err)
	}

	readings, err := client.History(ctx, sensorID, from, to)
	if err != nil {
		if sensordb.IsNotFound(err) {
			log.Fatalf("no such sensor: %d", sensorID)
		}
		log.Fatalf("history: %v", err)
	}
	if outJSON != "" {
		if err := output.WriteHistoryJSON(outJSON, readings); err != nil {
			log.Fatalf("write json: %v", err)
		}
		log.Printf("wrote %d readings to %s", len(readings), outJSON)
	}
	if outCSV != "" {
		if err := output.WriteHistoryCSV(outCSV, readings); err != nil {
			log.Fatalf("write csv: %v", err)
		}
		log.Printf("wrote %d readings to %s", len(readings), outCSV)
	}
}

func parseTime(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
