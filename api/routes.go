package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"robojobs/events"
	"robojobs/pipeline"
)

// RegisterHealthRoutes registers the liveness endpoint.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRunRoutes registers run status and trigger endpoints.
func (s *Server) RegisterRunRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.GET("/status", s.handleStatus)
	g.POST("/runs", s.handleStartRun)
}

// RegisterComplianceRoutes registers the compliance re-check endpoint.
func (s *Server) RegisterComplianceRoutes(r *gin.Engine) {
	r.POST("/api/compliance/:project", s.handleCompliance)
}

// StartRunRequest is the optional body of POST /api/runs
type StartRunRequest struct {
	Topic string `json:"topic"`
	Test  bool   `json:"test"`
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.GetStatus())
}

func (s *Server) handleStartRun(c *gin.Context) {
	var req StartRunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	runID, err := s.StartRun(events.RunRequest{Topic: strings.TrimSpace(req.Topic), Test: req.Test})
	if errors.Is(err, ErrBusy) {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"state": s.state.GetState(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "started",
		"run_id": runID,
	})
}

func (s *Server) handleCompliance(c *gin.Context) {
	projectID := c.Param("project")

	report, err := s.backend.CheckProject(projectID)
	if errors.Is(err, pipeline.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check compliance: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
