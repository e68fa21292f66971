package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"robojobs/events"
	"robojobs/pipeline"
	"robojobs/state"
	"robojobs/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBackend struct {
	mu      sync.Mutex
	reqs    []pipeline.Request
	release chan struct{}
	err     error
	reports map[string]types.ComplianceReport
}

func (f *fakeBackend) Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if req.Observer != nil {
		req.Observer.StepStarted(1, pipeline.TotalSteps, pipeline.StepTopic)
	}
	if f.err != nil {
		return pipeline.Result{ProjectID: "video_20260301_090000"}, f.err
	}
	return pipeline.Result{ProjectID: "video_20260301_090000", VideoPath: "output/video_20260301_090000.mp4"}, nil
}

func (f *fakeBackend) CheckProject(projectID string) (types.ComplianceReport, error) {
	r, ok := f.reports[projectID]
	if !ok {
		return types.ComplianceReport{}, pipeline.ErrProjectNotFound
	}
	return r, nil
}

func (f *fakeBackend) requests() []pipeline.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.Request(nil), f.reqs...)
}

func newTestServer(b *fakeBackend) (*Server, *state.Manager) {
	st := state.NewManager(10)
	return NewServer(b, st, "0"), st
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(&fakeBackend{})
	w := do(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestStartRunCompletes(t *testing.T) {
	b := &fakeBackend{}
	s, st := newTestServer(b)

	w := do(t, s, http.MethodPost, "/api/runs", `{"topic":"  Quantum error correction  ","test":true}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["run_id"] == "" {
		t.Errorf("missing run_id in %v", resp)
	}
	s.Wait()

	reqs := b.requests()
	if len(reqs) != 1 {
		t.Fatalf("runs = %d", len(reqs))
	}
	got := reqs[0]
	if got.Topic != "Quantum error correction" || got.Discover || !got.SkipRender {
		t.Errorf("request = %+v", got)
	}
	if got.RunID != resp["run_id"] {
		t.Errorf("run id %q, response %q", got.RunID, resp["run_id"])
	}

	status := st.GetStatus()
	if status.State != state.StateComplete {
		t.Fatalf("state = %s", status.State)
	}
	if status.ProjectID != "video_20260301_090000" || status.Output != "output/video_20260301_090000.mp4" {
		t.Errorf("status = %+v", status)
	}

	w = do(t, s, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"state":"complete"`) {
		t.Errorf("GET /api/status = %d %s", w.Code, w.Body.String())
	}
}

func TestStartRunWithoutBodyDiscovers(t *testing.T) {
	b := &fakeBackend{}
	s, _ := newTestServer(b)

	if w := do(t, s, http.MethodPost, "/api/runs", ""); w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	s.Wait()

	reqs := b.requests()
	if len(reqs) != 1 || !reqs[0].Discover || reqs[0].Topic != "" || reqs[0].SkipRender {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestStartRunConflict(t *testing.T) {
	b := &fakeBackend{release: make(chan struct{})}
	s, _ := newTestServer(b)

	if w := do(t, s, http.MethodPost, "/api/runs", ""); w.Code != http.StatusAccepted {
		t.Fatalf("first run status = %d", w.Code)
	}
	w := do(t, s, http.MethodPost, "/api/runs", `{"topic":"other"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("second run status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"state":"running"`) {
		t.Errorf("body = %s", w.Body.String())
	}

	if _, err := s.StartRun(events.RunRequest{Topic: "queued"}); !errors.Is(err, ErrBusy) {
		t.Errorf("StartRun err = %v, want ErrBusy", err)
	}

	close(b.release)
	s.Wait()
	if n := len(b.requests()); n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
}

func TestStartRunBadBody(t *testing.T) {
	s, st := newTestServer(&fakeBackend{})
	w := do(t, s, http.MethodPost, "/api/runs", `{"topic":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if st.Busy() {
		t.Error("bad request claimed the run slot")
	}
}

func TestRunFailureSetsError(t *testing.T) {
	b := &fakeBackend{err: errors.New("script generation: exhausted")}
	s, st := newTestServer(b)

	if _, err := s.StartRun(events.RunRequest{}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	s.Wait()

	status := st.GetStatus()
	if status.State != state.StateError {
		t.Fatalf("state = %s", status.State)
	}
	if !strings.Contains(status.Error, "exhausted") {
		t.Errorf("error = %q", status.Error)
	}

	// a failed run frees the slot
	if _, err := s.StartRun(events.RunRequest{}); err != nil {
		t.Fatalf("second StartRun: %v", err)
	}
	s.Wait()
}

func TestCompliance(t *testing.T) {
	b := &fakeBackend{reports: map[string]types.ComplianceReport{
		"video_1": {Passed: true, Score: 85},
	}}
	s, _ := newTestServer(b)

	w := do(t, s, http.MethodPost, "/api/compliance/video_1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var report types.ComplianceReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !report.Passed || report.Score != 85 {
		t.Errorf("report = %+v", report)
	}

	if w := do(t, s, http.MethodPost, "/api/compliance/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing project status = %d", w.Code)
	}
}

func TestStartCronRejectsBadSchedule(t *testing.T) {
	s, _ := newTestServer(&fakeBackend{})
	if err := s.StartCron("not a schedule"); err == nil {
		t.Fatal("expected error")
	}
}
