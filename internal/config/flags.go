package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args.
//
// Flags:
//
//	-a                  reference server address in format [host]:[port]
//	-grpc-address       reference server gRPC health address [host]:[port]
//	-d                  database DSN (sqlite path on the client)
//	-c/-config          JSON or YAML config file path
//	-remote             remote service base URL used by the client
//	-remote-grpc        remote gRPC health address used during recovery
//	-request-timeout    outbound request timeout (e.g. "10s")
//	-allow-insecure-fallback  allow recovery over plain http
//	-status-address     client status API address [host]:[port]
//	-token              bearer token presented to the remote service
//	-tui                run the interactive status console
//	-sync-interval      periodic safety-net drain interval (e.g. "5m")
//	-failure-threshold  consecutive failures that open the circuit
//	-recovery-timeout   how long the circuit stays open (e.g. "30s")
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-offline-sync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var serverAddress, grpcServerAddress, statusAddress NetAddress
	var databaseDSN string
	var configPath string
	var remoteAddress string
	var remoteGRPC string
	var requestTimeout time.Duration
	var allowInsecure bool
	var authToken string
	var tui bool
	var syncInterval time.Duration
	var failureThreshold int
	var recoveryTimeout time.Duration

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&configPath, "c", "", "Config file path")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.StringVar(&remoteAddress, "remote", "", "Remote service base URL")
	fs.StringVar(&remoteGRPC, "remote-grpc", "", "Remote gRPC health address")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 10s)")
	fs.BoolVar(&allowInsecure, "allow-insecure-fallback", false, "Allow recovery over plain http")
	fs.Var(&statusAddress, "status-address", "Status API address host:port")
	fs.StringVar(&authToken, "token", "", "Bearer token for the remote service")
	fs.BoolVar(&tui, "tui", false, "Run the interactive status console")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic drain interval (e.g., 5m)")
	fs.IntVar(&failureThreshold, "failure-threshold", 0, "Consecutive failures that open the circuit")
	fs.DurationVar(&recoveryTimeout, "recovery-timeout", 0, "Open circuit cooldown (e.g., 30s)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			AuthToken: authToken,
			TUI:       tui,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress,
			GRPCAddress:    remoteGRPC,
			RequestTimeout: requestTimeout,

			AllowInsecureFallback: allowInsecure,
		},
		Resilience: Resilience{
			FailureThreshold: failureThreshold,
			RecoveryTimeout:  recoveryTimeout,
		},
		Sync:           Sync{Interval: syncInterval},
		Status:         Status{HTTPAddress: statusAddress.String()},
		ConfigFilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost"
// or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
