// Package api exposes run control and status over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"robojobs/events"
	"robojobs/pipeline"
	"robojobs/state"
	"robojobs/types"
)

// ErrBusy is returned when a run is requested while another is in progress
var ErrBusy = errors.New("a run is already in progress")

// Backend runs the pipeline and re-checks finished projects
type Backend interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	CheckProject(projectID string) (types.ComplianceReport, error)
}

// Server is the HTTP surface plus the cron scheduler
type Server struct {
	backend    Backend
	state      *state.Manager
	engine     *gin.Engine
	httpServer *http.Server
	cron       *cron.Cron
	cronID     cron.EntryID

	runCtx context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup
	mu     sync.Mutex
}

// NewServer creates the server and registers its routes
func NewServer(backend Backend, st *state.Manager, port string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		backend: backend,
		state:   st,
		cron:    cron.New(),
		runCtx:  ctx,
		cancel:  cancel,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterHealthRoutes(r)
	s.RegisterRunRoutes(r)
	s.RegisterComplianceRoutes(r)
	s.engine = r

	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	return s
}

// Handler returns the gin engine
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	log.Printf("🌐 Starting API server on %s", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()
	return nil
}

// StartRun claims the run slot and runs the pipeline in the background. An
// empty topic means auto-discovery.
func (s *Server) StartRun(req events.RunRequest) (string, error) {
	runID := uuid.NewString()
	if !s.state.TryStart(runID, req.Topic) {
		return "", ErrBusy
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()

		res, err := s.backend.Run(s.runCtx, pipeline.Request{
			RunID:      runID,
			Topic:      req.Topic,
			Discover:   req.Topic == "",
			SkipRender: req.Test,
			Observer:   s.state,
		})
		s.state.SetProject(res.ProjectID)
		if err != nil {
			log.Printf("Run %s failed: %v", runID, err)
			s.state.Fail(err)
			return
		}
		s.state.Complete(res.VideoPath)
	}()
	return runID, nil
}

// StartCron schedules auto-discover runs
func (s *Server) StartCron(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(schedule, func() {
		log.Println("⏰ Cron triggered: starting automated run")
		if _, err := s.StartRun(events.RunRequest{}); err != nil {
			log.Printf("Cron skipped: %v (state=%s)", err, s.state.GetState())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cronID = id
	s.cron.Start()
	log.Printf("Cron job started with schedule: %s", schedule)
	return nil
}

// Wait blocks until background runs have finished
func (s *Server) Wait() {
	s.runs.Wait()
}

// Shutdown stops the scheduler and HTTP server, cancels the current run and
// waits for it to return
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	err := s.httpServer.Shutdown(ctx)

	s.cancel()
	s.runs.Wait()
	return err
}
