package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"co2-monitor/pkg/sensordb"
)

func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)

	mux.Get("/co2-ampel", s.handleIngest)
	mux.Get("/", s.handleIndex)
	mux.Get("/sensor/{id}", s.handleSensor)
	return mux
}

// handleIngest accepts one measurement as query parameters. The sensor
// firmware submits with short keys: id (hardware address), c, t, h, l.
// The capture time is stamped server-side at millisecond precision.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address := q.Get("id")
	if address == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	var m sensordb.Measurement
	var err error
	for _, p := range []struct {
		key string
		dst *float64
	}{
		{"c", &m.CO2},
		{"t", &m.Temperature},
		{"h", &m.Humidity},
		{"l", &m.Lumen},
	} {
		*p.dst, err = strconv.ParseFloat(q.Get(p.key), 64)
		if err != nil {
			http.Error(w, "bad value for "+p.key, http.StatusBadRequest)
			return
		}
	}

	capturedAt := time.Now().Truncate(time.Millisecond)
	if _, err := s.client.Ingest(r.Context(), address, m, capturedAt); err != nil {
		s.errorLog.Printf("ingest failed: %v", err)
		http.Error(w, "ingestion failed", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte("done"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.client.Snapshot(r.Context())
	if err != nil {
		s.errorLog.Printf("snapshot failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.render(w, "index.html", struct {
		Sensors []sensordb.SensorLatest
	}{Sensors: snapshot})
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad sensor id", http.StatusBadRequest)
		return
	}
	var onDate time.Time
	if ds := r.URL.Query().Get("date"); ds != "" {
		onDate, err = time.ParseInLocation("2006-01-02", ds, time.Local)
		if err != nil {
			http.Error(w, "bad date", http.StatusBadRequest)
			return
		}
	}

	detail, err := s.client.Detail(r.Context(), id, onDate)
	if err != nil {
		if sensordb.IsNotFound(err) {
			http.Error(w, "no such sensor", http.StatusNotFound)
			return
		}
		s.errorLog.Printf("detail failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.render(w, "sensor.html", detail)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.errorLog.Printf("render %s: %v", name, err)
	}
}
