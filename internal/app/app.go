package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/ioutboxrepo"
	"github.com/kiosklabs/kiosk-sync/internal/dal/postgres"
	"github.com/kiosklabs/kiosk-sync/internal/dal/rabbitmq"
	postgresrepo "github.com/kiosklabs/kiosk-sync/internal/dal/repositories/order/postgres"
	sqliterepo "github.com/kiosklabs/kiosk-sync/internal/dal/repositories/order/sqlite"
	"github.com/kiosklabs/kiosk-sync/internal/dal/sqlite"
	"github.com/kiosklabs/kiosk-sync/internal/jaeger"
	"github.com/kiosklabs/kiosk-sync/internal/service/services/syncsvc"
	httptransport "github.com/kiosklabs/kiosk-sync/internal/transport/http"
	"github.com/kiosklabs/kiosk-sync/internal/worker/outbox"
)

// App represents the application. The store is constructed exactly once
// here and handed to the service by reference; request handlers never
// build their own connections.
type App struct {
	syncSvc       *syncsvc.SyncService
	transport     *httptransport.HTTPTransport
	store         iorderstore.Repository
	rabbitClient  *rabbitmq.Client
	outboxWorker  *outbox.Worker
	traceShutdown func(ctx context.Context) error
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	a := &App{}

	if viper.GetBool("tracing.enabled") {
		a.traceShutdown = jaeger.MustSetup()
	}

	events := viper.GetBool("rabbitmq.enabled")

	var outboxRepo ioutboxrepo.IOutboxRepository

	backend := viper.GetString("storage.backend")
	switch backend {
	case "postgres":
		client := postgres.MustNewClient()
		repo := postgresrepo.NewRepository(client, events)
		a.store = repo
		outboxRepo = repo
	case "sqlite", "":
		client := sqlite.MustOpen(viper.GetString("storage.sqlite.path"))
		repo := sqliterepo.NewRepository(client.DB(), events)
		a.store = repo
		outboxRepo = repo
	default:
		panic(fmt.Sprintf("unknown storage backend %q", backend))
	}

	slog.Info("Order store ready", "backend", a.store.Kind())

	if events {
		a.rabbitClient = rabbitmq.MustNewClient()
		a.outboxWorker = outbox.NewWorker(outboxRepo, a.rabbitClient)
	}

	a.syncSvc = syncsvc.MustNewSyncService(
		syncsvc.WithStore(a.store),
	)

	a.transport = httptransport.NewHTTPTransport(a.syncSvc)
	a.transport.RegisterRoutes()

	return a
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	if a.outboxWorker != nil {
		go a.outboxWorker.Start(workerCtx)
	}

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}

	if err := a.store.Close(); err != nil {
		slog.Error("Database connection close error", "error", err)
	} else {
		slog.Info("Database connection closed gracefully")
	}

	if a.traceShutdown != nil {
		if err := a.traceShutdown(ctx); err != nil {
			slog.Error("Tracer shutdown error", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
}
