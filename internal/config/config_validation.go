// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-offline-sync/models"
)

// validate checks the merged [StructuredConfig] for values that can never be
// correct regardless of the runtime using them. Missing values are allowed
// here; runtime-specific views fill defaults and enforce presence.
func (cfg *StructuredConfig) validate() error {
	r := cfg.Resilience
	if r.FailureThreshold < 0 || r.MaxRetries < 0 || r.RecoveryTimeout < 0 ||
		r.BaseDelay < 0 || r.MaxDelay < 0 || r.BackoffFactor < 0 {
		return ErrInvalidResilienceConfigs
	}

	if cfg.Sync.MaxReplayRetries < 0 || cfg.Sync.Interval < 0 {
		return ErrInvalidSyncConfigs
	}

	for collection, strategy := range cfg.Sync.Strategies {
		if !models.ConflictStrategy(strategy).Valid() {
			return fmt.Errorf("%w: unknown strategy %q for collection %q", ErrInvalidSyncConfigs, strategy, collection)
		}
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Resilience.MaxDelay < cfg.Resilience.BaseDelay || cfg.Resilience.BackoffFactor < 1 {
		return ErrInvalidResilienceConfigs
	}

	if cfg.Sync.Interval == 0 || cfg.Sync.MaxReplayRetries == 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.App.TokenSignKey == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
