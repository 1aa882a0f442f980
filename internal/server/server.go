package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielrjepsen/Nory-sub001/internal/config"
	"github.com/danielrjepsen/Nory-sub001/internal/handlers"
	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/metrics"
	"github.com/danielrjepsen/Nory-sub001/internal/middleware/events"
	"github.com/danielrjepsen/Nory-sub001/internal/realtime"
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Engine   handlers.Engine
	Uploader handlers.Uploader
	Hub      *realtime.Hub
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	deps       Deps
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	router := s.Router()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(events.CreateEvent(s.deps.Metrics))

	corsConfig := cors.DefaultConfig()
	origins := s.config.AllowedOrigins()
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", events.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{events.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	slideshowHandler := handlers.NewSlideshowHandler(s.deps.Engine)
	qrHandler := handlers.NewQRHandler(s.config.RemoteURL(s.config.Slideshow.EventID))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Nory slideshow is running",
			"status":  "healthy",
			"eventId": s.config.Slideshow.EventID,
		})
	})

	if s.deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	s.setupAPIRoutes(router, slideshowHandler, qrHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	slideshowHandler *handlers.SlideshowHandler,
	qrHandler *handlers.QRHandler,
) {
	api := router.Group("/api/v1")
	{
		slideshow := api.Group("/slideshow")
		{
			slideshow.GET("/frame", slideshowHandler.GetFrame)
			slideshow.GET("/state", slideshowHandler.GetState)
			slideshow.GET("/qr.png", qrHandler.GetQRCode)

			slideshow.POST("/next", slideshowHandler.Next)
			slideshow.POST("/previous", slideshowHandler.Previous)
			slideshow.POST("/play", slideshowHandler.Play)
			slideshow.POST("/pause", slideshowHandler.Pause)
			slideshow.POST("/toggle", slideshowHandler.Toggle)
			slideshow.POST("/refresh", slideshowHandler.Refresh)
			slideshow.PUT("/speed", slideshowHandler.SetSpeed)
			slideshow.PUT("/category", slideshowHandler.SelectCategory)
			slideshow.PUT("/ambient", slideshowHandler.SetAmbient)

			media := slideshow.Group("/media/:photoId")
			{
				media.POST("/started", slideshowHandler.MediaStarted)
				media.POST("/ended", slideshowHandler.MediaEnded)
				media.POST("/failed", slideshowHandler.MediaFailed)
			}

			slideshow.POST("/hearts", slideshowHandler.AddHeart)
			slideshow.POST("/activities", slideshowHandler.AddActivity)

			if s.deps.Uploader != nil {
				uploadHandler := handlers.NewUploadHandler(s.config.Slideshow.EventID, s.deps.Uploader)
				slideshow.POST("/uploads", uploadHandler.Upload)
			}

			if s.deps.Hub != nil {
				slideshow.GET("/ws", func(c *gin.Context) {
					if err := s.deps.Hub.ServeWS(c.Writer, c.Request); err != nil {
						logger.Realtime().Warn("Websocket upgrade failed", "error", err)
					}
				})
			}
		}
	}
}
