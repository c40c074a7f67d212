// Package api exposes the engine's read-only HTTP surface: status and
// trade queries over REST plus a websocket event stream. The API never
// mutates engine state; all trading decisions stay inside the engine loop.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pivot-trading-engine/internal/database"
	"pivot-trading-engine/internal/events"
	"pivot-trading-engine/internal/logging"
)

// EngineAPI is the view of the engine the HTTP layer needs.
type EngineAPI interface {
	Status() map[string]interface{}
	OpenPosition() (map[string]interface{}, bool)
	Pivots() (map[string]interface{}, bool)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	ProductionMode bool
}

// Server is the HTTP API server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	repo       *database.Repository
	eventBus   *events.EventBus
	engine     EngineAPI
	hub        *WSHub
	config     ServerConfig
	log        *logging.Logger
}

// NewServer wires routes and the websocket hub. The repo may be nil when
// the engine runs without a database; trade-history endpoints then return
// 503.
func NewServer(cfg ServerConfig, repo *database.Repository, eventBus *events.EventBus, engine EngineAPI) *Server {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:   gin.New(),
		repo:     repo,
		eventBus: eventBus,
		engine:   engine,
		hub:      NewWSHub(),
		config:   cfg,
		log:      logging.WithComponent("api"),
	}

	s.router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	s.router.Use(cors.New(corsConfig))

	s.registerRoutes()

	// Every engine event reaches connected websocket clients.
	eventBus.SubscribeAll(s.hub.BroadcastEvent)

	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/position", s.handlePosition)
		v1.GET("/pivots", s.handlePivots)
		v1.GET("/trades/today", s.handleTradesToday)
		v1.GET("/trades/:date", s.handleTradesByDate)
		v1.GET("/summary/:date", s.handleSummary)
	}

	s.router.GET("/ws", s.handleWebSocket)
}

// Start runs the hub and serves HTTP until Stop is called.
func (s *Server) Start() error {
	go s.hub.Run()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.log.Info("API server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
