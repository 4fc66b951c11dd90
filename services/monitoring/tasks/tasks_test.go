package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestScheduler() (*TaskScheduler, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return NewTaskScheduler(logging.Wrap(l)), hook
}

func TestScheduleRunsOnceAndRemoves(t *testing.T) {
	ts, _ := newTestScheduler()

	var runs int32
	ran := make(chan struct{})
	err := ts.Schedule("t1", "test", func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		close(ran)
		return nil
	}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	if err := ts.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
	if ts.Pending() != 0 {
		t.Errorf("Pending() = %d after run, want 0", ts.Pending())
	}
}

func TestAddTaskRejectsDuplicates(t *testing.T) {
	ts, _ := newTestScheduler()
	noop := func(context.Context) error { return nil }

	if _, err := ts.AddTask("dup", "a", noop); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.AddTask("dup", "b", noop); err == nil {
		t.Error("expected duplicate id to fail")
	}
	if err := ts.RemoveTask("dup"); err != nil {
		t.Errorf("RemoveTask: %v", err)
	}
	if _, err := ts.GetTask("dup"); err == nil {
		t.Error("task still present after RemoveTask")
	}
}

func TestTaskErrorsAreLogged(t *testing.T) {
	ts, hook := newTestScheduler()

	err := ts.Schedule("t-err", "failing", func(context.Context) error {
		return errors.New("boom")
	}, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			found = true
		}
	}
	if !found {
		t.Error("expected an error log entry for the failing task")
	}
}

func TestShutdownDeadlineCancelsWaitingTasks(t *testing.T) {
	ts, _ := newTestScheduler()

	var ran int32
	err := ts.Schedule("slow", "slow", func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := ts.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Shutdown error = %v, want deadline exceeded", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Error("canceled task should not have run")
	}
	if err := ts.Schedule("late", "late", func(context.Context) error { return nil }, 0); err == nil {
		t.Error("expected scheduling after shutdown to fail")
	}
}
