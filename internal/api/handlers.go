package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pivot-trading-engine/internal/database"
)

func (s *Server) handleHealth(c *gin.Context) {
	health := gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"clients": s.hub.ClientCount(),
	}
	if s.repo != nil {
		if err := s.repo.HealthCheck(c.Request.Context()); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "ok"
	}
	c.JSON(http.StatusOK, health)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Status())
}

func (s *Server) handlePosition(c *gin.Context) {
	pos, ok := s.engine.OpenPosition()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"open": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"open": true, "position": pos})
}

func (s *Server) handlePivots(c *gin.Context) {
	p, ok := s.engine.Pivots()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "pivots not prepared for today"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleTradesToday(c *gin.Context) {
	s.tradesForDate(c, time.Now())
}

func (s *Server) handleTradesByDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	s.tradesForDate(c, date)
}

func (s *Server) tradesForDate(c *gin.Context, date time.Time) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade history requires a database"})
		return
	}
	trades, err := s.repo.GetTradesByDate(c.Request.Context(), date)
	if err != nil {
		s.log.Error("Failed to fetch trades", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch trades"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":   date.Format("2006-01-02"),
		"count":  len(trades),
		"trades": trades,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "summaries require a database"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	summary, err := s.repo.GetDailySummary(c.Request.Context(), date)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no summary for date"})
		return
	}
	if err != nil {
		s.log.Error("Failed to fetch summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
