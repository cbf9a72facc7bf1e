package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/dtroode/taskmanager-server/internal/api/grpc/handler"
	"github.com/dtroode/taskmanager-server/internal/api/grpc/middleware"
	"github.com/dtroode/taskmanager-server/internal/logger"
)

// Router represents the operational gRPC surface: health checks and
// reflection.
type Router struct {
	db     handler.Pinger
	logger *logger.Logger
}

// New creates new gRPC Router instance.
func New(db handler.Pinger, logger *logger.Logger) *Router {
	return &Router{db: db, logger: logger}
}

// Register builds the gRPC server with tracing, panic recovery and request
// logging, and registers the health and reflection services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
		r.logger.ErrorContext(ctx, "gRPC handler panicked", "panic", p)
		return status.Error(codes.Internal, "internal server error")
	})

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoveryOpt),
			logging.HandleGRPC,
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	healthpb.RegisterHealthServer(s, handler.NewHealth(r.db, r.logger))
	reflection.Register(s)

	return s
}
