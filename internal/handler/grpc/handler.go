// Package grpc exposes the standard gRPC health service of the reference
// server. Clients use it as an alternate probe path while the REST API is
// unreachable.
package grpc

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// CollectionsServiceName is the health service name reported for the
// collection API. The empty name reports the server as a whole.
const CollectionsServiceName = "offline-sync.collections"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the root gRPC transport handler.
type Handler struct {
	health *health.Server

	logger *logger.Logger
}

// NewHandler constructs a [Handler]. Both the server and the collections
// service start out SERVING.
func NewHandler(logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	h := &Handler{
		health: health.NewServer(),
		logger: logger,
	}
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(CollectionsServiceName, healthpb.HealthCheckResponse_SERVING)

	return h
}

// Register attaches the health service to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// SetServing flips the reported status of the collections service.
func (h *Handler) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(CollectionsServiceName, st)
}

// Shutdown reports NOT_SERVING for every service and ignores later updates.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}

// WatchStorage pings storage every interval and mirrors the outcome into the
// collections health status until ctx is done.
func (h *Handler) WatchStorage(ctx context.Context, storage Pinger, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := storage.Ping(pingCtx)
			cancel()

			if ok := err == nil; ok != serving {
				serving = ok
				h.SetServing(ok)
				h.logger.Warn().Err(err).Bool("serving", ok).Msg("collections health changed")
			}
		}
	}
}

// UnaryLogging logs every unary call with a trace id, mirroring the REST
// access log.
func (h *Handler) UnaryLogging(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	l := h.logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", uuid.NewString())
	})
	ctx = l.WithContext(ctx)

	resp, err := handler(ctx, req)

	l.Info().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("duration", time.Since(start)).
		Send()

	return resp, err
}
