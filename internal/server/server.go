package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/metr/internal/config"
	"github.com/smallbiznis/metr/internal/gateway"
	"github.com/smallbiznis/metr/internal/observability"
	obsmiddleware "github.com/smallbiznis/metr/internal/observability/logger"
	obstracing "github.com/smallbiznis/metr/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module serves the meter API over plain HTTP, for local runs and for
// deployments that front the handlers with a load balancer instead of
// API Gateway.
var Module = fx.Module("http.server",
	gateway.Module,
	fx.Provide(NewEngine),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "status_code": http.StatusNotFound})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed", "status_code": http.StatusMethodNotAllowed})
	})

	return r
}

// RegisterRoutes mounts the meter handlers with the same paths the API
// Gateway routes use.
func RegisterRoutes(r *gin.Engine, h *gateway.Handler) {
	meters := r.Group("/meters")
	meters.GET("", adapt(h.ListMeters))
	meters.POST("", adapt(h.CreateMeter))
	meters.GET("/:meter_id", adapt(h.GetMeter))
	meters.PUT("/:meter_id", adapt(h.UpdateMeter))
	meters.DELETE("/:meter_id", adapt(h.DeleteMeter))
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
