package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors [StructuredConfig] for JSON and YAML files. Durations
// are written as strings such as "30s".
type fileConfig struct {
	App struct {
		Version       string   `json:"version" yaml:"version"`
		TokenSignKey  string   `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer" yaml:"token_issuer"`
		TokenDuration Duration `json:"token_duration" yaml:"token_duration"`
		AuthToken     string   `json:"auth_token" yaml:"auth_token"`
		TUI           bool     `json:"tui" yaml:"tui"`
		LogFile       string   `json:"log_file" yaml:"log_file"`
	} `json:"app" yaml:"app"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn"`
		} `json:"db" yaml:"db"`
	} `json:"storage" yaml:"storage"`

	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" yaml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"server" yaml:"server"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" yaml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`

		AllowInsecureFallback bool `json:"allow_insecure_fallback" yaml:"allow_insecure_fallback"`
	} `json:"adapter" yaml:"adapter"`

	Resilience struct {
		FailureThreshold int      `json:"failure_threshold" yaml:"failure_threshold"`
		RecoveryTimeout  Duration `json:"recovery_timeout" yaml:"recovery_timeout"`
		MaxRetries       int      `json:"max_retries" yaml:"max_retries"`
		BaseDelay        Duration `json:"base_delay" yaml:"base_delay"`
		MaxDelay         Duration `json:"max_delay" yaml:"max_delay"`
		BackoffFactor    float64  `json:"backoff_factor" yaml:"backoff_factor"`
		DisableJitter    bool     `json:"disable_jitter" yaml:"disable_jitter"`
	} `json:"resilience" yaml:"resilience"`

	Monitor struct {
		ProbeTimeout         Duration `json:"probe_timeout" yaml:"probe_timeout"`
		OfflineAfterFailures int      `json:"offline_after_failures" yaml:"offline_after_failures"`
	} `json:"monitor" yaml:"monitor"`

	Sync struct {
		MaxReplayRetries int               `json:"max_replay_retries" yaml:"max_replay_retries"`
		Interval         Duration          `json:"interval" yaml:"interval"`
		KeepTempIDs      bool              `json:"keep_temp_ids" yaml:"keep_temp_ids"`
		Strategies       map[string]string `json:"strategies" yaml:"strategies"`
		KeyFields        []string          `json:"key_fields" yaml:"key_fields"`
	} `json:"sync" yaml:"sync"`

	Status struct {
		HTTPAddress string `json:"http_address" yaml:"http_address"`
	} `json:"status" yaml:"status"`
}

// parseFile reads a config file. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err = json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return fc.toStructured(), nil
}

func (fc *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Version:       fc.App.Version,
			TokenSignKey:  fc.App.TokenSignKey,
			TokenIssuer:   fc.App.TokenIssuer,
			TokenDuration: time.Duration(fc.App.TokenDuration),
			AuthToken:     fc.App.AuthToken,
			TUI:           fc.App.TUI,
			LogFile:       fc.App.LogFile,
		},
		Storage: Storage{DB: DB{DSN: fc.Storage.DB.DSN}},
		Server: Server{
			HTTPAddress:    fc.Server.HTTPAddress,
			GRPCAddress:    fc.Server.GRPCAddress,
			RequestTimeout: time.Duration(fc.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    fc.Adapter.HTTPAddress,
			GRPCAddress:    fc.Adapter.GRPCAddress,
			RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),

			AllowInsecureFallback: fc.Adapter.AllowInsecureFallback,
		},
		Resilience: Resilience{
			FailureThreshold: fc.Resilience.FailureThreshold,
			RecoveryTimeout:  time.Duration(fc.Resilience.RecoveryTimeout),
			MaxRetries:       fc.Resilience.MaxRetries,
			BaseDelay:        time.Duration(fc.Resilience.BaseDelay),
			MaxDelay:         time.Duration(fc.Resilience.MaxDelay),
			BackoffFactor:    fc.Resilience.BackoffFactor,
			DisableJitter:    fc.Resilience.DisableJitter,
		},
		Monitor: Monitor{
			ProbeTimeout:         time.Duration(fc.Monitor.ProbeTimeout),
			OfflineAfterFailures: fc.Monitor.OfflineAfterFailures,
		},
		Sync: Sync{
			MaxReplayRetries: fc.Sync.MaxReplayRetries,
			Interval:         time.Duration(fc.Sync.Interval),
			KeepTempIDs:      fc.Sync.KeepTempIDs,
			Strategies:       fc.Sync.Strategies,
			KeyFields:        fc.Sync.KeyFields,
		},
		Status: Status{HTTPAddress: fc.Status.HTTPAddress},
	}
}

// Duration is a wrapper around time.Duration that decodes from strings like
// "1h" or "30s" in both JSON and YAML. Bare JSON numbers are nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	tmp, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(tmp)
	return nil
}
