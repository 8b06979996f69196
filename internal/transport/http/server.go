package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tabletop-server/internal/config"
	"tabletop-server/internal/core"
)

// HealthResponse is the body for GET /healthz.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// NewServer builds the HTTP server: WebSocket endpoint, upload API, static
// uploads, liveness probe and metrics.
func NewServer(hub *core.Hub, cfg config.Config, metricsHandler stdhttp.Handler, onUpload func(), logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	uploads := NewUploadHandlers(cfg.UploadDir, cfg.MaxUploadBytes, onUpload, logger)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, HealthResponse{OK: true})
	})
	router.POST("/api/upload", uploads.Upload)
	router.Static("/uploads", cfg.UploadDir)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
