package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/conflict"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/handler/status"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/monitor"
	"github.com/MKhiriev/go-offline-sync/internal/resilience"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/tui"
	"github.com/MKhiriev/go-offline-sync/internal/workers"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the assembled sync client.
type App struct {
	Services *service.ClientServices
	Status   *status.Handler

	storages *store.ClientStorages
	bus      *events.Bus
	monitor  *monitor.Monitor
	ui       *tui.TUI
	cfg      *config.ClientConfig

	unsubscribe []func()
	logger      *logger.Logger
}

// NewApp opens the local cache and wires every engine component. The remote
// is not contacted until Run starts the health monitor.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	remote, err := adapter.NewHTTPRemoteService(cfg.Adapter, cfg.App.AuthToken, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	bus := events.NewBus()
	metrics := monitor.NewMetrics()
	signal := monitor.NewSignal(true, bus)
	breaker := resilience.NewCircuitBreaker(cfg.Resilience,
		resilience.WithPublisher(bus),
		resilience.WithLogger(log),
	)
	resolver := conflict.NewResolver(conflict.NewStrategyTable(cfg.Sync.Strategies), storages.Conflicts, bus, log,
		conflict.WithLocalState(storages.Records, storages.Queue))

	mon := monitor.NewMonitor(cfg.Monitor, remote, breaker, metrics, signal, bus, log, recoveryTransports(cfg, remote, log)...)

	services := service.NewClientServices(remote, storages, breaker, resolver, signal, cfg, bus, log)

	collector := monitor.NewPrometheusCollector(metrics, breaker, signal, storages.Queue, log)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	statusHandler := status.NewHandler(status.Dependencies{
		Monitor:   mon,
		Breaker:   breaker,
		Online:    signal,
		Queue:     storages.Queue,
		Conflicts: resolver,
		Sync:      services.SyncService,
		Events:    bus,
		Gatherer:  registry,
	}, log)

	app := &App{
		Services: services,
		Status:   statusHandler,
		storages: storages,
		bus:      bus,
		monitor:  mon,
		cfg:      cfg,
		logger:   log.WithComponent("client-app"),
	}

	app.unsubscribe = append(app.unsubscribe,
		collector.Subscribe(bus),
		bus.Subscribe(func(events.Event) { services.SyncJob.Trigger() }, events.Online),
		bus.Subscribe(func(e events.Event) {
			if n, ok := e.Payload.(events.ConflictNotice); ok && n.Conflict.Strategy == models.StrategyManual {
				services.SyncJob.Trigger()
			}
		}, events.ConflictResolved),
	)

	if cfg.App.TUI {
		app.ui = tui.New(statusHandler.Controller(), buildInfo, log)
	}

	return app, nil
}

// recoveryTransports lists the fallbacks the monitor tries when the remote
// stays unreachable. Plain http is only offered when explicitly allowed.
func recoveryTransports(cfg *config.ClientConfig, remote *adapter.HTTPRemoteService, log *logger.Logger) []adapter.FallbackTransport {
	var fallbacks []adapter.FallbackTransport
	if cfg.Adapter.AllowInsecureFallback {
		fallbacks = append(fallbacks, adapter.NewSchemeDowngrade(remote, log))
	}
	if cfg.Adapter.GRPCAddress != "" {
		fallbacks = append(fallbacks, adapter.NewGRPCHealth(cfg.Adapter.GRPCAddress, cfg.Monitor.ProbeTimeout))
	}
	return fallbacks
}

// Run starts the monitor, the sync job, the status API and, when enabled,
// the status console. Quitting the console stops the other workers.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ws := workers.NewWorkers(a.monitor, a.Services.SyncJob)

	if a.cfg.Status.HTTPAddress != "" {
		ws.Add(workers.HTTPServer(&http.Server{
			Addr:              a.cfg.Status.HTTPAddress,
			Handler:           a.Status.Init(),
			ReadHeaderTimeout: 5 * time.Second,
		}, a.logger))
	}

	if a.ui != nil {
		ws.Add(workers.Func(func(ctx context.Context) error {
			defer cancel()
			return a.ui.Run(ctx)
		}))
	}

	a.logger.Info().
		Str("remote", a.cfg.Adapter.HTTPAddress).
		Str("status_api", a.cfg.Status.HTTPAddress).
		Bool("tui", a.ui != nil).
		Msg("sync client started")

	err := ws.Run(ctx)
	a.logger.Info().Msg("sync client stopped")
	return err
}

// Close detaches event subscribers, stops the bus and closes the local
// cache.
func (a *App) Close() error {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil
	a.bus.Close()
	return a.storages.Close()
}
