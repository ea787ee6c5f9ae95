package api

import (
	"net/http"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/health"
	"github.com/tuantuan-o/ConnectionPool/pkg/logger"
	"github.com/tuantuan-o/ConnectionPool/pkg/pool"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// DefaultStreamInterval is how often the websocket stream pushes a
// statistics snapshot
const DefaultStreamInterval = time.Second

// StatsProvider reports pool statistics. *pool.Pool satisfies it.
type StatsProvider interface {
	Stats() pool.Stats
}

// Server serves the admin endpoints
type Server struct {
	provider       StatsProvider
	monitor        *health.Monitor
	log            *logger.Logger
	upgrader       websocket.Upgrader
	streamInterval time.Duration
}

// NewServer creates an admin server over a stats provider and a health
// monitor
func NewServer(provider StatsProvider, monitor *health.Monitor) *Server {
	return &Server{
		provider: provider,
		monitor:  monitor,
		log:      logger.Get(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		streamInterval: DefaultStreamInterval,
	}
}

// Router builds the gin router with all admin routes and middleware
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(s.log))

	r.GET("/healthz", s.handleHealth)
	r.GET("/api/stats", s.handleStats)
	r.GET("/api/stats/stream", s.handleStatsStream)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	s.monitor.ObservePool(s.provider.Stats())
	snap := s.monitor.GetHealth()

	code := http.StatusOK
	if snap.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, snap)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.provider.Stats())
}

// handleStatsStream upgrades to a websocket and pushes statistics snapshots
// until the client goes away
func (s *Server) handleStatsStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WarnWith("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	// First snapshot immediately so clients do not wait a full interval
	if err := conn.WriteJSON(s.provider.Stats()); err != nil {
		return
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.provider.Stats()); err != nil {
				return
			}
		}
	}
}
