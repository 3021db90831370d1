// Command worker consumes code_execution_tasks and code_evaluation_tasks,
// runs each job in the sandbox, and publishes a Response back to
// response_queue. Grounded on the teacher's cmd/judge-service worker process
// shape (single long-lived engine client, bounded pool, graceful shutdown).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"judgecore/internal/broker/mq"
	"judgecore/internal/config"
	"judgecore/internal/coreclient"
	"judgecore/internal/sandbox/engine"
	"judgecore/internal/sandbox/runner"
	"judgecore/internal/worker"
	"judgecore/pkg/utils/logger"
)

const defaultConfigPath = "configs/worker.yaml"
const poolBackoffBase = 500 * time.Millisecond
const poolBackoffMax = 30 * time.Second
const poolMaxRetries = 10

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

	dockerEngine, err := engine.New()
	if err != nil {
		logger.Error(context.Background(), "connect docker engine failed", zap.Error(err))
		os.Exit(1)
	}
	run := runner.New(dockerEngine)

	core := coreclient.New(cfg.Core.URL, cfg.Auth.InternalAPIKey, nil)

	if err := os.MkdirAll(cfg.Worker.WorkDirBase, 0o755); err != nil {
		logger.Error(context.Background(), "create work root failed", zap.Error(err))
		os.Exit(1)
	}

	pool := worker.NewPool(cfg.Worker.PoolSize, poolMaxRetries, poolBackoffBase, poolBackoffMax)
	w := worker.New(broker, run, core, pool, worker.Config{
		ExecuteQueue:  cfg.Broker.ExecuteQueue,
		EvaluateQueue: cfg.Broker.EvaluateQueue,
		ResponseQueue: cfg.Broker.ResponseQueue,
		WorkRoot:      cfg.Worker.WorkDirBase,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "worker started", zap.Int("pool_size", cfg.Worker.PoolSize))
	if err := w.Run(ctx); err != nil {
		logger.Error(context.Background(), "worker stopped", zap.Error(err))
	}
}
