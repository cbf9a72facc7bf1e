package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpctx "github.com/dtroode/taskmanager-server/internal/api/http/context"
	httprouter "github.com/dtroode/taskmanager-server/internal/api/http/router"
	httpserver "github.com/dtroode/taskmanager-server/internal/api/http/server"
	grpcrouter "github.com/dtroode/taskmanager-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/taskmanager-server/internal/api/grpc/server"
	"github.com/dtroode/taskmanager-server/internal/config"
	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
	"github.com/dtroode/taskmanager-server/internal/notify"
	"github.com/dtroode/taskmanager-server/internal/password"
	"github.com/dtroode/taskmanager-server/internal/repository/postgres"
	"github.com/dtroode/taskmanager-server/internal/server"
	"github.com/dtroode/taskmanager-server/internal/service"
	storage "github.com/dtroode/taskmanager-server/internal/storage/minio"
	"github.com/dtroode/taskmanager-server/internal/telemetry"
	"github.com/dtroode/taskmanager-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to initialize telemetry", "error", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer conn.Close()

	storageClient, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	userRepo := postgres.NewUserRepository(conn.DB)
	sessionRepo := postgres.NewSessionRepository(conn.DB)
	taskRepo := postgres.NewTaskRepository(conn.DB)
	transactor := postgres.NewTransactor(conn.DB)

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	hasher := password.NewBcrypt(cfg.Auth.BcryptCost)
	notifier := notify.New(notify.NewLogSender(logger), cfg.Notify.Language, cfg.Notify.From)

	lifecycle := service.NewLifecycle(logger)
	userService := service.NewUsers(userRepo, transactor, lifecycle, hasher, storageClient, notifier, logger)
	sessionService := service.NewSessions(sessionRepo, tokenManager, cfg.Auth.MaxSessions, logger)
	authService := service.NewAuth(userRepo, userService, sessionService, hasher, logger)
	taskService := service.NewTasks(taskRepo, logger)

	ctxMgr := httpctx.NewManager()
	handler := httprouter.New(authService, userService, taskService, sessionService, ctxMgr, cfg.HTTP.RequestTimeout, logger).Register()
	httpSrv := httpserver.NewHTTPServer(handler, fmt.Sprintf(":%s", cfg.HTTP.Port))

	grpcSrv := grpcserver.NewGRPCServer(grpcrouter.New(conn, logger).Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	servers := []model.Server{httpSrv, grpcSrv}
	layers := []model.SecurityLayer{server.NewSecurityLayer(cfg.HTTP), server.NewPlainListener()}

	var wg sync.WaitGroup
	for i, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s, layers[i])
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
