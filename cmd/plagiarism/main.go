// Command plagiarism serves POST /semantic-code (spec.md 4.4, 6): cluster
// near-duplicate submissions per problem across users. Grounded on the
// teacher's cmd/gateway/main.go process shape.
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
	"google.golang.org/genai"

	"judgecore/internal/auth"
	"judgecore/internal/config"
	"judgecore/internal/plagiarism"
	"judgecore/pkg/utils/logger"
)

const defaultConfigPath = "configs/plagiarism.yaml"
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

	var normalizer *plagiarism.GeminiNormalizer
	if cfg.Plagiarism.GeminiAPIKey != "" {
		ctx := context.Background()
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Plagiarism.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			logger.Error(ctx, "create gemini client failed, normalizer will fall back to raw code", zap.Error(err))
		} else {
			normalizer = plagiarism.NewGeminiNormalizer(geminiClient, cfg.Plagiarism.GeminiModel)
		}
	} else {
		normalizer = plagiarism.NewGeminiNormalizer(nil, "")
	}

	embedder := plagiarism.NewHTTPEmbedder(cfg.Plagiarism.EmbedURL, nil)
	pipeline := plagiarism.NewPipeline(normalizer, embedder, cfg.Plagiarism.Threshold)
	handler := plagiarism.NewHandler(pipeline)

	srv := plagiarism.NewServer(plagiarism.ServerConfig{
		Addr:         cfg.Plagiarism.Addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, auth.Config{JWTSecret: cfg.Auth.JWTSecret, InternalAPIKey: cfg.Auth.InternalAPIKey}, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "plagiarism http server started", zap.String("addr", cfg.Plagiarism.Addr))
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

	if err := plagiarism.Shutdown(srv, shutdownTimeout); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}
