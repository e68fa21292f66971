package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRunLifecycle(t *testing.T) {
	m := NewManager(10)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	if !m.TryStart("run-1", "AI layoffs") {
		t.Fatal("first TryStart should succeed")
	}
	if m.TryStart("run-2", "") {
		t.Fatal("second TryStart should fail while running")
	}
	if !m.Busy() {
		t.Fatal("manager should be busy")
	}

	m.SetProject("video_1")
	m.StepStarted(3, 8, "Visual Sourcing")
	st := m.GetStatus()
	if st.State != StateRunning || st.RunID != "run-1" || st.ProjectID != "video_1" {
		t.Fatalf("status = %+v", st)
	}
	if st.StepNumber != 3 || st.TotalSteps != 8 || st.Step != "Visual Sourcing" {
		t.Errorf("step = %d/%d %q", st.StepNumber, st.TotalSteps, st.Step)
	}
	if st.StartedAt == nil || st.FinishedAt != nil {
		t.Errorf("timestamps = %v %v", st.StartedAt, st.FinishedAt)
	}

	m.Complete("output/video_1.mp4")
	st = m.GetStatus()
	if st.State != StateComplete || st.Output != "output/video_1.mp4" || st.FinishedAt == nil {
		t.Fatalf("status = %+v", st)
	}

	if !m.TryStart("run-2", "") {
		t.Fatal("TryStart after completion should succeed")
	}
	st = m.GetStatus()
	if st.Output != "" || st.ProjectID != "" || st.StepNumber != 0 {
		t.Errorf("previous run leaked into status: %+v", st)
	}
}

func TestFail(t *testing.T) {
	m := NewManager(10)
	m.TryStart("run-1", "")
	m.Fail(errors.New("no topics discovered"))

	st := m.GetStatus()
	if st.State != StateError || st.Error != "no topics discovered" {
		t.Fatalf("status = %+v", st)
	}
	if last := st.Logs[len(st.Logs)-1].Message; last != "Error: no topics discovered" {
		t.Errorf("last log = %q", last)
	}
	if !m.TryStart("run-2", "") {
		t.Fatal("TryStart after error should succeed")
	}
	if m.GetStatus().Error != "" {
		t.Error("error not cleared")
	}
}

func TestLogRingBuffer(t *testing.T) {
	m := NewManager(3)
	for i := 0; i < 5; i++ {
		m.AddLog(fmt.Sprintf("line %d", i))
	}
	logs := m.GetStatus().Logs
	if len(logs) != 3 || logs[0].Message != "line 2" || logs[2].Message != "line 4" {
		t.Fatalf("logs = %+v", logs)
	}
}

func TestTryStartIsExclusive(t *testing.T) {
	m := NewManager(100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if m.TryStart(fmt.Sprintf("run-%d", i), "") {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if started != 1 {
		t.Fatalf("started = %d, want exactly 1", started)
	}
}
