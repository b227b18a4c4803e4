package reconciler

import (
	"sort"
	"sync"
	"time"

	"github.com/iotaledger/hive.go/timedexecutor"
)

// Scheduler executes delayed callbacks that can be cancelled.
type Scheduler interface {
	// ExecuteAfter executes the callback once the delay has passed unless the returned Task is cancelled before.
	ExecuteAfter(callback func(), delay time.Duration) Task

	// Shutdown stops the Scheduler and drops all pending Tasks.
	Shutdown()
}

// Task is a callback that was scheduled with a Scheduler.
type Task interface {
	Cancel()
}

// region TimedScheduler ///////////////////////////////////////////////////////////////////////////////////////////////

// TimedScheduler is the Scheduler that runs the callbacks in wall clock time.
type TimedScheduler struct {
	executor *timedexecutor.TimedExecutor
}

// NewTimedScheduler creates a TimedScheduler that executes the callbacks with the given amount of workers.
func NewTimedScheduler(workerCount int) *TimedScheduler {
	return &TimedScheduler{
		executor: timedexecutor.New(workerCount),
	}
}

// ExecuteAfter executes the callback after the delay.
func (t *TimedScheduler) ExecuteAfter(callback func(), delay time.Duration) Task {
	return t.executor.ExecuteAfter(callback, delay)
}

// Shutdown stops the executor and cancels all pending callbacks.
func (t *TimedScheduler) Shutdown() {
	t.executor.Shutdown(timedexecutor.CancelPendingTasks)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ManualScheduler //////////////////////////////////////////////////////////////////////////////////////////////

// ManualScheduler is a Scheduler whose time only moves when Advance is called. Callbacks are executed by the goroutine
// that calls Advance.
type ManualScheduler struct {
	origin  time.Time
	elapsed time.Duration
	tasks   []*manualTask
	mutex   sync.Mutex
}

// NewManualScheduler creates a ManualScheduler whose clock starts at origin.
func NewManualScheduler(origin time.Time) *ManualScheduler {
	return &ManualScheduler{
		origin: origin,
	}
}

// ExecuteAfter queues the callback for the moment the clock reached the delay.
func (m *ManualScheduler) ExecuteAfter(callback func(), delay time.Duration) Task {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &manualTask{scheduler: m, due: m.elapsed + delay, callback: callback}
	m.tasks = append(m.tasks, task)

	return task
}

// Advance moves the clock forward and executes all callbacks that became due, in the order of their due time.
func (m *ManualScheduler) Advance(duration time.Duration) {
	m.mutex.Lock()
	m.elapsed += duration

	due := make([]*manualTask, 0)
	remaining := make([]*manualTask, 0, len(m.tasks))
	for _, task := range m.tasks {
		if task.due <= m.elapsed {
			due = append(due, task)
		} else {
			remaining = append(remaining, task)
		}
	}
	m.tasks = remaining
	m.mutex.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].due < due[j].due })
	for _, task := range due {
		task.callback()
	}
}

// Now returns the current time of the clock.
func (m *ManualScheduler) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.origin.Add(m.elapsed)
}

// Pending returns the number of callbacks that are waiting for their due time.
func (m *ManualScheduler) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.tasks)
}

// Shutdown drops all pending callbacks.
func (m *ManualScheduler) Shutdown() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.tasks = nil
}

func (m *ManualScheduler) cancel(task *manualTask) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, candidate := range m.tasks {
		if candidate == task {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

type manualTask struct {
	scheduler *ManualScheduler
	due       time.Duration
	callback  func()
}

func (m *manualTask) Cancel() {
	m.scheduler.cancel(m)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
