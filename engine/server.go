package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Version can be set before starting the server.
var Version = "1.0.0"

// CostSource supplies the cost table new games are created with.
type CostSource interface {
	Current() PowerUpCosts
}

type staticCosts PowerUpCosts

func (c staticCosts) Current() PowerUpCosts { return PowerUpCosts(c) }

type ServerConfig struct {
	Game     Config
	APIToken string
	Costs    CostSource // DefaultCosts when nil
}

// Server wraps the game registry with an HTTP/WebSocket server.
type Server struct {
	Registry *Registry
	Router   *Router

	cfg        ServerConfig
	ctx        context.Context
	cancel     context.CancelFunc
	startTime  time.Time
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server with an empty registry.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Costs == nil {
		cfg.Costs = staticCosts(DefaultCosts())
	}
	ctx, cancel := context.WithCancel(context.Background())
	reg := NewRegistry(ctx, cfg.Game)
	return &Server{
		Registry:  reg,
		Router:    NewRouter(reg),
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors())

	r.GET("/game", func(c *gin.Context) {
		HandleWS(s.Router, c.Writer, c.Request)
	})
	r.POST("/create_game", s.createGame)
	r.GET("/games", s.listGames)
	r.GET("/games/:id", s.gameStats)
	r.GET("/games/:id/board.png", s.boardImage)
	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.GetStats())
	})
	r.GET("/dashboard", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardHTML))
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ---------------------------------------------------------------------------
// Management endpoint
// ---------------------------------------------------------------------------

type createGamePayload struct {
	APIToken string   `json:"api_token"`
	UserIDs  []string `json:"user_ids"`
}

type createGameResponse struct {
	Type   string            `json:"type"`
	GameID string            `json:"game_id,omitempty"`
	Users  []UserAccessToken `json:"users,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (s *Server) createGame(c *gin.Context) {
	var payload createGamePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, createGameResponse{Type: "Error", Error: err.Error()})
		return
	}
	if s.cfg.APIToken == "" || payload.APIToken != s.cfg.APIToken {
		c.JSON(http.StatusUnauthorized, createGameResponse{Type: "Error"})
		return
	}

	gameID, users, err := s.Registry.Create(payload.UserIDs, s.cfg.Costs.Current())
	if err != nil {
		c.JSON(http.StatusBadRequest, createGameResponse{Type: "Error", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, createGameResponse{Type: "Success", GameID: gameID, Users: users})
}

func (s *Server) listGames(c *gin.Context) {
	list := s.Registry.List()
	out := make([]GameStats, 0, len(list))
	for _, e := range list {
		out = append(out, e.Game.Stats())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) gameStats(c *gin.Context) {
	e, ok := s.Registry.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrUnknownGame.Error()})
		return
	}
	c.JSON(http.StatusOK, e.Game.Stats())
}

func (s *Server) boardImage(c *gin.Context) {
	e, ok := s.Registry.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrUnknownGame.Error()})
		return
	}
	block, _ := strconv.Atoi(c.DefaultQuery("block", "8"))
	width, _ := strconv.Atoi(c.DefaultQuery("width", "0"))
	if block > 64 {
		block = 64
	}
	if width > 4096 {
		width = 4096
	}
	img := RenderBoard(e.Game, RenderOptions{BlockSize: block, Width: width, Grid: c.Query("grid") == "1"})

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := png.Encode(c.Writer, img); err != nil {
		log.Printf("[HTTP] board render for %s failed: %v", e.ID, err)
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (s *Server) logStartup(addr string) {
	log.Printf("Snakepit server v%s starting...", Version)
	log.Printf("Listening on http://%s", addr)
	log.Printf("WebSocket: ws://%s/game", addr)
	log.Printf("Create game: POST http://%s/create_game", addr)
	log.Printf("Dashboard: http://%s/dashboard", addr)
}

// Start starts the eviction sweep and HTTP server in the background (non-blocking).
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}

	go s.Registry.Run(s.ctx)
	s.logStartup(addr)

	go s.httpServer.Serve(ln)
	return nil
}

// ListenAndServe starts the eviction sweep and HTTP server (blocks until error).
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}

	go s.Registry.Run(s.ctx)
	s.logStartup(addr)

	return s.httpServer.ListenAndServe()
}

// Stop cancels every game loop and closes the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) GetStats() StatsSnapshot {
	uptime := time.Since(s.startTime)
	list := s.Registry.List()
	games := make([]GameStats, 0, len(list))
	for _, e := range list {
		games = append(games, e.Game.Stats())
	}
	return StatsSnapshot{
		Version:       Version,
		Uptime:        formatDuration(uptime),
		UptimeSec:     int64(uptime.Seconds()),
		RegistryStats: s.Registry.Stats(),
		Router:        s.Router.Stats(),
		List:          games,
	}
}

// GetStatsJSON returns the current stats as a JSON string.
func (s *Server) GetStatsJSON() string {
	b, _ := json.Marshal(s.GetStats())
	return string(b)
}
