// Command gateway serves the public HTTP surface (spec.md 6): GET /,
// GET /healthz, POST /execute, POST /evaluate. Grounded on the teacher's
// cmd/gateway/main.go process shape (flag config path, logger init,
// listener, graceful shutdown on SIGINT/SIGTERM).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"judgecore/internal/auth"
	"judgecore/internal/broker/mq"
	"judgecore/internal/catalog"
	"judgecore/internal/config"
	"judgecore/internal/coreclient"
	"judgecore/internal/gateway"
	"judgecore/pkg/utils/logger"
)

const defaultConfigPath = "configs/gateway.yaml"
const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	path := *configPath
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level: cfg.Logger.Level, Format: cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath, ErrorPath: cfg.Logger.ErrorPath,
		Service: cfg.Logger.Service, Env: cfg.Logger.Env,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	broker, err := mq.NewRabbitMQ(cfg.Broker.URL, cfg.Broker.ReconnectAttempts, time.Duration(cfg.Broker.ReconnectBackoff)*time.Second)
	if err != nil {
		logger.Error(context.Background(), "connect broker failed", zap.Error(err))
		os.Exit(1)
	}
	defer broker.Close()
	if err := broker.DeclareQueue(cfg.Broker.ResponseQueue, time.Duration(cfg.Broker.ResponseTTLSeconds)*time.Second); err != nil {
		logger.Error(context.Background(), "declare response queue failed", zap.Error(err))
		os.Exit(1)
	}

	catalogClient, err := catalog.New(cfg.Redis.URL)
	if err != nil {
		logger.Error(context.Background(), "connect catalog redis failed", zap.Error(err))
		os.Exit(1)
	}
	defer catalogClient.Close()

	core := coreclient.New(cfg.Core.URL, cfg.Auth.InternalAPIKey, nil)

	dispatcher := gateway.NewDispatcher(broker, cfg.Broker.ResponseQueue)
	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	defer cancelDispatch()
	go func() {
		if err := dispatcher.Run(dispatchCtx); err != nil {
			logger.Error(dispatchCtx, "response dispatcher stopped", zap.Error(err))
		}
	}()

	handler := gateway.NewHandler(broker, dispatcher, catalogClient, core, gateway.Config{
		ExecuteQueue:    cfg.Broker.ExecuteQueue,
		EvaluateQueue:   cfg.Broker.EvaluateQueue,
		ExecuteTimeout:  time.Duration(cfg.Worker.ExecuteTimeoutSec) * time.Second,
		EvaluateTimeout: time.Duration(cfg.Worker.EvaluateTimeoutSec) * time.Second,
	})

	srv := gateway.NewServer(gateway.ServerConfig{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, auth.Config{JWTSecret: cfg.Auth.JWTSecret, InternalAPIKey: cfg.Auth.InternalAPIKey}, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "gateway http server started", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	if err := gateway.Shutdown(srv, shutdownTimeout); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}
