package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"judgecore/internal/auth"
)

// ServerConfig carries the plain net/http.Server knobs, grounded on the
// teacher's cmd/gateway buildHTTPServer.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer builds the gin router (trace + recovery + request logging +
// auth middleware) with h's routes registered, wrapped in an
// *http.Server ready for ListenAndServe.
func NewServer(cfg ServerConfig, authCfg auth.Config, h *Handler) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(traceMiddleware())
	router.Use(requestLoggerMiddleware())

	router.GET("/", h.Health)
	router.GET("/healthz", h.Health)

	protected := router.Group("/")
	protected.Use(auth.Middleware(authCfg))
	protected.POST("/execute", h.Execute)
	protected.POST("/evaluate", h.Evaluate)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Shutdown gracefully stops srv, bounded by timeout.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
