package web_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"co2-monitor/internal/config"
	"co2-monitor/internal/web"
	"co2-monitor/pkg/sensordb"
)

func newTestServer(t *testing.T) (*httptest.Server, *sensordb.Client) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "co2monitor_test.sqlite")
	client, err := sensordb.Open(path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	quiet := log.New(io.Discard, "", 0)
	srv, err := web.NewServer(client, config.Default().Server, quiet, quiet)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, client
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIngestEndpoint(t *testing.T) {
	t.Parallel()
	ts, client := newTestServer(t)

	status, body := get(t, ts.URL+"/co2-ampel?id=AA:BB&c=450&t=21.5&h=40&l=300")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if body != "done" {
		t.Fatalf("expected body %q, got %q", "done", body)
	}

	snapshot, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].Sensor.MacAddress != "AA:BB" {
		t.Fatalf("expected one sensor AA:BB after ingest, got %+v", snapshot)
	}
	if snapshot[0].Reading == nil || snapshot[0].Reading.CO2 != 450 {
		t.Fatalf("expected stored co2 450, got %+v", snapshot[0].Reading)
	}
}

func TestIngestEndpointRejectsBadInput(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	if status, _ := get(t, ts.URL+"/co2-ampel?c=450&t=21&h=40&l=300"); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", status)
	}
	if status, _ := get(t, ts.URL+"/co2-ampel?id=AA&c=nope&t=21&h=40&l=300"); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad value, got %d", status)
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(body, "No sensors have reported yet") {
		t.Fatalf("expected empty-state page, got: %s", body)
	}

	if status, _ := get(t, ts.URL+"/co2-ampel?id=kitchen&c=500&t=22&h=45&l=120"); status != http.StatusOK {
		t.Fatalf("ingest failed with %d", status)
	}
	_, body = get(t, ts.URL+"/")
	if !strings.Contains(body, "kitchen") {
		t.Fatalf("expected sensor listed on index, got: %s", body)
	}
}

func TestSensorPage(t *testing.T) {
	t.Parallel()
	ts, client := newTestServer(t)

	if status, _ := get(t, ts.URL+"/co2-ampel?id=office&c=600&t=23&h=50&l=80"); status != http.StatusOK {
		t.Fatalf("ingest failed with %d", status)
	}
	snapshot, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	id := snapshot[0].Sensor.ID

	status, body := get(t, ts.URL+"/sensor/"+itoa(id))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !strings.Contains(body, "office") {
		t.Fatalf("expected sensor name on detail page, got: %s", body)
	}

	if status, _ := get(t, ts.URL+"/sensor/99999"); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown sensor, got %d", status)
	}
	if status, _ := get(t, ts.URL+"/sensor/abc"); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", status)
	}
	if status, _ := get(t, ts.URL+"/sensor/"+itoa(id)+"?date=not-a-date"); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", status)
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
