package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/sirupsen/logrus"
)

// Task represents a scheduled task
type Task struct {
	ID      string
	Name    string
	Fn      func(context.Context) error
	DueAt   time.Time
	LastRun time.Time
}

// TaskScheduler runs one-shot delayed tasks on their own goroutines and
// keeps track of them so they can be drained on shutdown.
type TaskScheduler struct {
	tasks   map[string]*Task
	mu      sync.RWMutex
	wg      sync.WaitGroup
	closing bool
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *logging.Logger
}

func NewTaskScheduler(logger *logging.Logger) *TaskScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskScheduler{
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// AddTask adds a new task to the scheduler
func (ts *TaskScheduler) AddTask(id, name string, fn func(context.Context) error) (*Task, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.closing {
		return nil, fmt.Errorf("scheduler is shutting down")
	}

	if _, exists := ts.tasks[id]; exists {
		return nil, fmt.Errorf("task with ID %s already exists", id)
	}

	task := &Task{
		ID:   id,
		Name: name,
		Fn:   fn,
	}

	ts.tasks[id] = task
	ts.logger.WithField("task_id", id).Debug("added task to scheduler")
	return task, nil
}

// RunAfterAndRemove schedules a task to run after a specific duration and then removes it from the scheduler
func (ts *TaskScheduler) RunAfterAndRemove(id string, duration time.Duration) error {
	ts.mu.Lock()
	task, exists := ts.tasks[id]
	if !exists {
		ts.mu.Unlock()
		return fmt.Errorf("task with ID %s not found", id)
	}
	if ts.closing {
		delete(ts.tasks, id)
		ts.mu.Unlock()
		return fmt.Errorf("scheduler is shutting down")
	}
	task.DueAt = time.Now().Add(duration)
	taskCopy := *task
	ts.wg.Add(1)
	ts.mu.Unlock()

	log := ts.logger.WithFields(logrus.Fields{"task_id": id, "delay": duration.String()})
	log.Debug("scheduling task")

	go func() {
		defer ts.wg.Done()

		timer := time.NewTimer(duration)
		defer timer.Stop()

		select {
		case <-timer.C:
			if err := taskCopy.Fn(ts.ctx); err != nil {
				log.WithError(err).Errorf("Task %s failed", taskCopy.Name)
			}

			ts.mu.Lock()
			if task, stillExists := ts.tasks[id]; stillExists {
				task.LastRun = time.Now()
				delete(ts.tasks, id)
			}
			ts.mu.Unlock()
			log.Debug("task executed and removed from scheduler")

		case <-ts.ctx.Done():
			ts.mu.Lock()
			delete(ts.tasks, id)
			ts.mu.Unlock()
			log.Warn("task canceled before execution")
		}
	}()

	return nil
}

// Schedule registers fn under id and runs it once after delay.
func (ts *TaskScheduler) Schedule(id, name string, fn func(context.Context) error, delay time.Duration) error {
	if _, err := ts.AddTask(id, name, fn); err != nil {
		return err
	}
	return ts.RunAfterAndRemove(id, delay)
}

// RemoveTask removes a task from the scheduler
func (ts *TaskScheduler) RemoveTask(id string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.tasks[id]; !exists {
		return fmt.Errorf("task with ID %s not found", id)
	}

	delete(ts.tasks, id)
	return nil
}

// GetTask retrieves a task by ID
func (ts *TaskScheduler) GetTask(id string) (*Task, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	task, exists := ts.tasks[id]
	if !exists {
		return nil, fmt.Errorf("task with ID %s not found", id)
	}

	return task, nil
}

// Pending is the number of tasks that have not run yet.
func (ts *TaskScheduler) Pending() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.tasks)
}

// Shutdown waits for scheduled tasks to finish until ctx is done, then
// cancels whatever is still waiting. Tasks dropped this way are logged.
func (ts *TaskScheduler) Shutdown(ctx context.Context) error {
	ts.mu.Lock()
	ts.closing = true
	ts.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ts.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		ts.cancel()
		return nil
	case <-ctx.Done():
		ts.logger.WithField("pending", ts.Pending()).Warn("shutdown deadline reached, canceling scheduled tasks")
		ts.cancel()
		<-done
		return ctx.Err()
	}
}
