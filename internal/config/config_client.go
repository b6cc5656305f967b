// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Client defaults applied to fields left empty by every source.
const (
	DefaultFailureThreshold     = 5
	DefaultRecoveryTimeout      = 30 * time.Second
	DefaultMaxRetries           = 3
	DefaultBaseDelay            = 500 * time.Millisecond
	DefaultMaxDelay             = 30 * time.Second
	DefaultBackoffFactor        = 2.0
	DefaultProbeTimeout         = 5 * time.Second
	DefaultOfflineAfterFailures = 2
	DefaultMaxReplayRetries     = 3
	DefaultSyncInterval         = 5 * time.Minute
	DefaultRequestTimeout       = 10 * time.Second
	DefaultStatusAddress        = "127.0.0.1:8090"
	DefaultClientDSN            = "offline-sync.db"
)

// DefaultKeyFields are compared by the conflict detector when records carry
// no usable timestamps.
var DefaultKeyFields = []string{"name", "status", "value"}

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// AuthToken is sent as a bearer token on every remote call.
	AuthToken string
	// TUI runs the status console instead of headless mode.
	TUI bool
	// LogFile receives logs while the console owns the terminal.
	LogFile string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the HTTP endpoint address used by the client.
	HTTPAddress string
	// GRPCAddress is the gRPC health endpoint used during recovery.
	GRPCAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// AllowInsecureFallback installs the https to http recovery transport.
	AllowInsecureFallback bool
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path of the local cache.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientSync holds drain and conflict settings with strategies already
// parsed.
type ClientSync struct {
	MaxReplayRetries int
	Interval         time.Duration
	KeepTempIDs      bool
	Strategies       map[string]models.ConflictStrategy
	KeyFields        []string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Resilience contains breaker and retry settings.
	Resilience Resilience
	// Monitor contains health monitor settings.
	Monitor Monitor
	// Sync contains queue replay and conflict settings.
	Sync ClientSync
	// Status contains the operator API address.
	Status Status
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, fills defaults and validates the resulting
// [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	strategies := make(map[string]models.ConflictStrategy, len(cfg.Sync.Strategies))
	for collection, strategy := range cfg.Sync.Strategies {
		strategies[collection] = models.ConflictStrategy(strategy)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			AuthToken: cfg.App.AuthToken,
			TUI:       cfg.App.TUI,
			LogFile:   cfg.App.LogFile,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			GRPCAddress:    cfg.Adapter.GRPCAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,

			AllowInsecureFallback: cfg.Adapter.AllowInsecureFallback,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Resilience: cfg.Resilience,
		Monitor:    cfg.Monitor,
		Sync: ClientSync{
			MaxReplayRetries: cfg.Sync.MaxReplayRetries,
			Interval:         cfg.Sync.Interval,
			KeepTempIDs:      cfg.Sync.KeepTempIDs,
			Strategies:       strategies,
			KeyFields:        cfg.Sync.KeyFields,
		},
		Status: cfg.Status,
	}
	clientCfg.applyDefaults()

	return clientCfg
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Storage.DB.DSN == "" {
		cfg.Storage.DB.DSN = DefaultClientDSN
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}

	r := &cfg.Resilience
	if r.FailureThreshold == 0 {
		r.FailureThreshold = DefaultFailureThreshold
	}
	if r.RecoveryTimeout == 0 {
		r.RecoveryTimeout = DefaultRecoveryTimeout
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = DefaultMaxRetries
	}
	if r.BaseDelay == 0 {
		r.BaseDelay = DefaultBaseDelay
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = DefaultMaxDelay
	}
	if r.BackoffFactor == 0 {
		r.BackoffFactor = DefaultBackoffFactor
	}

	if cfg.Monitor.ProbeTimeout == 0 {
		cfg.Monitor.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Monitor.OfflineAfterFailures == 0 {
		cfg.Monitor.OfflineAfterFailures = DefaultOfflineAfterFailures
	}

	if cfg.Sync.MaxReplayRetries == 0 {
		cfg.Sync.MaxReplayRetries = DefaultMaxReplayRetries
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = DefaultSyncInterval
	}
	if len(cfg.Sync.KeyFields) == 0 {
		cfg.Sync.KeyFields = append([]string(nil), DefaultKeyFields...)
	}

	if cfg.Status.HTTPAddress == "" {
		cfg.Status.HTTPAddress = DefaultStatusAddress
	}
}
