// graphd is the standalone server binary: it loads configuration,
// assembles the dependency container, and serves the admin/debug HTTP
// surface until signaled to stop. Grounded on the teacher's
// (2lar-b2/backend2) cmd/api/main.go startup/shutdown shape.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"graphd/infrastructure/config"
	"graphd/infrastructure/di"
	"graphd/interfaces/http/rest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	container, err := di.BuildContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build dependency container: %v", err)
	}

	publisherCtx, stopPublisher := context.WithCancel(ctx)
	go container.Publisher.Run(publisherCtx)

	handler := rest.NewRouter(*container.Router)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("starting graphd",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("shutting down graphd")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("server shutdown error", zap.Error(err))
	}

	stopPublisher()
	container.Shutdown()

	log.Println("graphd stopped")
}
