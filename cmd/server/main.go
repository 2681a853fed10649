package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/glam-abaya/cartstore/internal/adapter/handler"
	"github.com/glam-abaya/cartstore/internal/adapter/storage"
	"github.com/glam-abaya/cartstore/internal/config"
	"github.com/glam-abaya/cartstore/internal/core/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slots, err := storage.NewSlotBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open cart storage", zap.Error(err))
	}
	sink, err := storage.NewAnalyticsBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open analytics sink", zap.Error(err))
	}

	dispatcher := service.NewAnalyticsDispatcher(sink, cfg.AnalyticsQueueSize, logger.Named("analytics"))
	dispatcher.Start(cfg.AnalyticsWorkers)
	logger.Info("started analytics workers",
		zap.Int("workers", cfg.AnalyticsWorkers),
		zap.Int("queue_size", cfg.AnalyticsQueueSize),
	)

	carts := service.NewRegistry(slots,
		service.WithLogger(logger.Named("cart")),
		service.WithEmitter(dispatcher),
		service.WithIdentity(handler.ContextIdentity{}),
		service.WithCacheSize(cfg.CartCacheSize),
		service.WithCacheTTL(cfg.CartTTL),
	)

	grpcServer := grpc.NewServer()
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(carts, logger))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(handler.CartServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(handler.NewHTTPHandler(carts, logger), cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// Drains queued analytics events before the sink goes away.
	dispatcher.Close()
	logger.Info("analytics workers stopped", zap.Int("carts", carts.Len()))

	if err := slots.Close(); err != nil {
		logger.Warn("failed to close cart storage", zap.Error(err))
	}
	if err := sink.Close(); err != nil {
		logger.Warn("failed to close analytics sink", zap.Error(err))
	}
	logger.Info("connections closed")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
