package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"co2-monitor/internal/config"
	"co2-monitor/internal/db"
	"co2-monitor/internal/web"
	"co2-monitor/pkg/sensordb"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to YAML config (optional)")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.LoadYAML(cfgPath)
		if err != nil {
			errorLog.Fatalf("load config: %v", err)
		}
	}

	client, err := sensordb.OpenWith(cfg.Database.Path, sensordb.Options{
		Pool: db.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			BusyTimeout:     cfg.Database.BusyTimeout,
		},
	})
	if err != nil {
		errorLog.Fatalf("open store: %v", err)
	}
	defer client.Close()

	srv, err := web.NewServer(client, cfg.Server, infoLog, errorLog)
	if err != nil {
		errorLog.Fatalf("init server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx); err != nil {
		errorLog.Fatalf("server exited with error: %v", err)
	}
	infoLog.Println("shutdown complete")
}
