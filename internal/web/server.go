// Package web is the HTTP boundary: ingestion endpoint and dashboard
// pages. It is a thin wrapper over the sensordb client; all data
// semantics live behind that boundary.
package web

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"

	"co2-monitor/internal/config"
	"co2-monitor/pkg/sensordb"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the ingestion endpoint and the dashboard.
type Server struct {
	client   *sensordb.Client
	cfg      config.ServerConfig
	infoLog  *log.Logger
	errorLog *log.Logger
	tmpl     *template.Template
}

// NewServer parses the embedded templates once; they are immutable for
// the process lifetime.
func NewServer(client *sensordb.Client, cfg config.ServerConfig, infoLog, errorLog *log.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		client:   client,
		cfg:      cfg,
		infoLog:  infoLog,
		errorLog: errorLog,
		tmpl:     tmpl,
	}, nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.infoLog.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.infoLog.Println("shutdown signal received, shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.errorLog.Printf("graceful shutdown failed: %v; forcing close", err)
			_ = srv.Close()
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
