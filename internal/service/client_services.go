package service

import (
	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/conflict"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/resilience"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

type ClientServices struct {
	Repository  OfflineRepository
	SyncService SyncService
	SyncJob     SyncJob
}

func NewClientServices(
	remote adapter.RemoteService,
	storages *store.ClientStorages,
	breaker *resilience.CircuitBreaker,
	resolver *conflict.Resolver,
	online Connectivity,
	cfg *config.ClientConfig,
	publisher events.Publisher,
	log *logger.Logger,
) *ClientServices {
	policy := resilience.NewRetryPolicy(cfg.Resilience)
	syncSvc := NewSyncService(remote, storages, policy, resolver, cfg.Sync, publisher, log)

	return &ClientServices{
		Repository:  NewOfflineRepository(remote, storages, breaker, policy, online, log),
		SyncService: syncSvc,
		SyncJob:     NewSyncJob(syncSvc, online, cfg.Sync.Interval, log),
	}
}
