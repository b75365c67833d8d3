package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigin     string // "" disables CORS, "*" allows any origin
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  runtime.NumCPU() * 2,
		CORSOrigin:     "",
	}
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg ServerConfig, handlers *Handlers) *gin.Engine {
	r := gin.New()

	r.Use(requestLogger(), recovery(), securityHeaders())
	if cfg.CORSOrigin != "" {
		corsCfg := cors.DefaultConfig()
		if cfg.CORSOrigin == "*" {
			corsCfg.AllowAllOrigins = true
		} else {
			corsCfg.AllowOrigins = []string{cfg.CORSOrigin}
		}
		corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		r.Use(cors.New(corsCfg))
	}
	r.Use(concurrencyLimiter(cfg.MaxConcurrent), requestTimeout(cfg.RequestTimeout))

	// Routes.
	v1 := r.Group("/api/v1")
	v1.POST("/route", handlers.HandleRoute)
	v1.GET("/health", handlers.HandleHealth)
	v1.GET("/stats", handlers.HandleStats)

	// Endpoints the map client calls.
	r.GET("/api/route", handlers.HandleLegacyRoute)
	r.GET("/api/marker", handlers.HandleMarker)
	r.GET("/api/nearest", handlers.HandleNearest)

	return r
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, handlers),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// concurrencyLimiter rejects requests beyond n in flight instead of queueing them.
func concurrencyLimiter(n int) gin.HandlerFunc {
	if n <= 0 {
		n = 1
	}
	sem := make(chan struct{}, n)
	return func(c *gin.Context) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			c.Header("Retry-After", "1")
			writeError(c, http.StatusServiceUnavailable, "service_unavailable", "")
			return
		}
		c.Next()
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Printf("panic: %v", rec)
		writeError(c, http.StatusInternalServerError, "internal_error", "")
	})
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
