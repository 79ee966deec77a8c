package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/notes/internal/common/bootstrap"
	"github.com/AlibekovAA/notes/internal/common/config"
	"github.com/AlibekovAA/notes/internal/common/logger"
	srv "github.com/AlibekovAA/notes/internal/common/server"
)

func main() {
	cfg, err := config.LoadBackendConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogDir, "backend", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewBackendApp(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize backend: %v", err)
	}
	defer app.Close()

	app.StartBackground(ctx)

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), app.Handler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("backend: stopping background workers")
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "backend", shutdownHooks)
}
