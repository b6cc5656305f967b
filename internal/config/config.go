// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging values from environment
// variables, command-line flags, and an optional config file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as credentials, token
	// parameters, and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the persistence backend: the local
	// sqlite cache on the client, postgres on the reference server.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listen addresses of the reference remote service.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the address and timeouts the client uses to reach the
	// remote service.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Resilience holds circuit breaker and retry policy settings.
	Resilience Resilience `envPrefix:"RESILIENCE_"`

	// Monitor holds connection health monitor settings.
	Monitor Monitor `envPrefix:"MONITOR_"`

	// Sync holds sync queue replay and conflict resolution settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Status holds the operator status API settings of the client.
	Status Status `envPrefix:"STATUS_"`

	// ConfigFilePath is the optional path to a JSON or YAML config file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	ConfigFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Version is the semantic version string reported by /api/version.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// TokenSignKey is the secret used by the reference server to sign and
	// verify bearer tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim expected in bearer tokens.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is the lifetime of tokens minted by cmd/tokengen.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// AuthToken is the bearer token the client presents to the remote
	// service.
	// Env: APP_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`

	// TUI enables the interactive status console on the client.
	// Env: APP_TUI
	TUI bool `env:"TUI"`

	// LogFile is where the client writes logs while the status console owns
	// the terminal.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Storage groups the configuration for storage backends.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is the sqlite file path on the client or the postgres connection
	// string on the reference server.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// MaxOpenConns caps the postgres pool of the reference server.
	// Env: STORAGE_DB_MAX_OPEN_CONNS
	MaxOpenConns int `env:"MAX_OPEN_CONNS"`

	// MaxIdleConns caps idle pooled postgres connections.
	// Env: STORAGE_DB_MAX_IDLE_CONNS
	MaxIdleConns int `env:"MAX_IDLE_CONNS"`
}

// Server holds network and timeout settings of the reference server.
type Server struct {
	// HTTPAddress is the "host:port" the REST API listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the "host:port" the gRPC health service listens on.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds the handling time of a single request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds the client's view of the remote service.
type Adapter struct {
	// HTTPAddress is the base URL (or host:port) of the remote REST API.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the gRPC health endpoint used as an alternate probe path
	// during recovery. Empty disables it.
	// Env: ADAPTER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout is the default timeout for outbound requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AllowInsecureFallback lets recovery retry an https remote over plain
	// http. Off by default.
	// Env: ADAPTER_ALLOW_INSECURE_FALLBACK
	AllowInsecureFallback bool `env:"ALLOW_INSECURE_FALLBACK"`
}

// Resilience holds circuit breaker and retry settings.
type Resilience struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit.
	// Env: RESILIENCE_FAILURE_THRESHOLD
	FailureThreshold int `env:"FAILURE_THRESHOLD"`

	// RecoveryTimeout is how long the circuit stays open before a trial call.
	// Env: RESILIENCE_RECOVERY_TIMEOUT
	RecoveryTimeout time.Duration `env:"RECOVERY_TIMEOUT"`

	// MaxRetries is the number of retries after the first attempt.
	// Env: RESILIENCE_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BaseDelay is the first backoff delay.
	// Env: RESILIENCE_BASE_DELAY
	BaseDelay time.Duration `env:"BASE_DELAY"`

	// MaxDelay caps the backoff delay.
	// Env: RESILIENCE_MAX_DELAY
	MaxDelay time.Duration `env:"MAX_DELAY"`

	// BackoffFactor multiplies the delay on every attempt.
	// Env: RESILIENCE_BACKOFF_FACTOR
	BackoffFactor float64 `env:"BACKOFF_FACTOR"`

	// DisableJitter turns off the random [0.5, 1.0] delay scaling.
	// Env: RESILIENCE_DISABLE_JITTER
	DisableJitter bool `env:"DISABLE_JITTER"`
}

// Monitor holds connection health monitor settings.
type Monitor struct {
	// ProbeTimeout bounds a single probe.
	// Env: MONITOR_PROBE_TIMEOUT
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT"`

	// OfflineAfterFailures is the number of consecutive failed probes after
	// which the connectivity signal switches to offline.
	// Env: MONITOR_OFFLINE_AFTER_FAILURES
	OfflineAfterFailures int `env:"OFFLINE_AFTER_FAILURES"`
}

// Sync holds queue replay and conflict settings.
type Sync struct {
	// MaxReplayRetries is the number of failed replays after which a queued
	// operation is moved to the dead-letter partition.
	// Env: SYNC_MAX_REPLAY_RETRIES
	MaxReplayRetries int `env:"MAX_REPLAY_RETRIES"`

	// Interval is how often the queue is drained as a safety net in addition
	// to online transitions.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// KeepTempIDs disables rewriting temporary ids of queued operations after
	// the create that introduced them has been replayed.
	// Env: SYNC_KEEP_TEMP_IDS
	KeepTempIDs bool `env:"KEEP_TEMP_IDS"`

	// Strategies maps collection names to conflict strategies,
	// e.g. "widgets:merge,alarms:manual".
	// Env: SYNC_STRATEGIES
	Strategies map[string]string `env:"STRATEGIES"`

	// KeyFields are compared when records carry no timestamps.
	// Env: SYNC_KEY_FIELDS
	KeyFields []string `env:"KEY_FIELDS"`
}

// Status holds the client operator API settings.
type Status struct {
	// HTTPAddress is the "host:port" of the status API. Empty disables it.
	// Env: STATUS_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources. Values from earlier sources take precedence:
//  1. Environment variables
//  2. Command-line flags
//  3. Config file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withFile().
		build()
}
