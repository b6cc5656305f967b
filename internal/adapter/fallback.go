package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var (
	ErrNoDowngrade     = errors.New("remote is not served over https")
	ErrServiceNotReady = errors.New("remote health service is not serving")
)

// SchemeDowngrade retries the Remote Data Service over plain HTTP when the
// HTTPS endpoint fails with a transport security error. On a successful
// probe the service is switched to the downgraded address.
type SchemeDowngrade struct {
	service *HTTPRemoteService
	logger  *logger.Logger
}

// NewSchemeDowngrade returns a [FallbackTransport] bound to service.
func NewSchemeDowngrade(service *HTTPRemoteService, log *logger.Logger) *SchemeDowngrade {
	return &SchemeDowngrade{service: service, logger: log.WithComponent("fallback-http")}
}

func (s *SchemeDowngrade) Name() string {
	return "http-downgrade"
}

func (s *SchemeDowngrade) Engage(ctx context.Context) error {
	current := s.service.BaseURL()
	if !strings.HasPrefix(current, "https://") {
		return ErrNoDowngrade
	}
	downgraded := "http://" + strings.TrimPrefix(current, "https://")

	client := utils.NewHTTPClient(downgraded, s.service.timeout)
	resp, err := client.R().SetContext(ctx).Get(pingPath)
	if err != nil {
		return transportError("fallback-probe", err)
	}
	if err = mapHTTPError("fallback-probe", resp); err != nil {
		return err
	}

	s.logger.Info().Str("func", "SchemeDowngrade.Engage").
		Str("from", current).
		Str("to", downgraded).
		Msg("plain http probe succeeded")
	s.service.switchBaseURL(downgraded)
	return nil
}

// GRPCHealth checks the remote's gRPC health service. It does not carry data
// traffic; a serving answer proves the host is reachable on an alternate
// protocol so the monitor can tell a broken HTTP path from a dead host.
type GRPCHealth struct {
	address string
	timeout time.Duration
}

// NewGRPCHealth returns a [FallbackTransport] probing address.
func NewGRPCHealth(address string, timeout time.Duration) *GRPCHealth {
	return &GRPCHealth{address: address, timeout: timeout}
}

func (g *GRPCHealth) Name() string {
	return "grpc-health"
}

func (g *GRPCHealth) Engage(ctx context.Context) error {
	if g.address == "" {
		return &RemoteError{Kind: KindValidation, Op: "grpc-health", Err: ErrEmptyAddress}
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	conn, err := grpc.NewClient(g.address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return &RemoteError{Kind: KindValidation, Op: "grpc-health", Err: err}
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return transportError("grpc-health", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return &RemoteError{Kind: KindTransient, Op: "grpc-health", Err: fmt.Errorf("%w: %s", ErrServiceNotReady, resp.GetStatus())}
	}

	return nil
}
