package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/taskmanager-server/internal/logger"
)

// ServiceName is the name the health service reports for the task manager.
const ServiceName = "taskmanager"

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers gRPC health checks by pinging the database.
type Health struct {
	healthpb.UnimplementedHealthServer
	db     Pinger
	logger *logger.Logger
}

// NewHealth creates a new Health handler.
func NewHealth(db Pinger, logger *logger.Logger) *Health {
	return &Health{db: db, logger: logger}
}

// Check reports SERVING while the database answers pings. The empty service
// name refers to the whole server.
func (h *Health) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ServiceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health handler: database ping failed",
			"error", err.Error())
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
