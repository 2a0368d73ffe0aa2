package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/uGboly/xrblocks/internal/observability"
	"github.com/uGboly/xrblocks/internal/runtime"
)

// Debug exposes runtime health, status, metrics, and session control over
// HTTP for the host process.
type Debug struct {
	app     string
	addr    string
	core    *runtime.Core
	router  *gin.Engine
	started time.Time
}

func New(app, addr string, corsOrigins []string, core *runtime.Core) *Debug {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(app))
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	d := &Debug{
		app:     app,
		addr:    addr,
		core:    core,
		router:  r,
		started: time.Now(),
	}
	d.registerRoutes()
	return d
}

// Router returns the underlying engine, mainly for tests.
func (d *Debug) Router() *gin.Engine {
	return d.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (d *Debug) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              d.addr,
		Handler:           d.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.Info().Str("app", d.app).Str("addr", d.addr).Msg("debug server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}
