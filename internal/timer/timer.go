package timer

import (
	"container/heap"
	"sync"
	"time"
)

// task is a callback scheduled for future execution
type task struct {
	id    string
	runAt time.Time
	fn    func()
	index int // index in the heap (for heap.Interface)
}

// taskHeap is a min-heap of tasks ordered by runAt
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].runAt.Before(h[j].runAt)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	n := len(*h)
	t := x.(*task)
	t.index = n
	*h = append(*h, t)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil  // avoid memory leak
	t.index = -1    // for safety
	*h = old[0 : n-1]
	return t
}

// Scheduler runs callbacks at their scheduled time. Tasks are keyed
// by ID; scheduling an existing ID replaces the earlier task, and a
// cancelled task never fires.
type Scheduler struct {
	heap    taskHeap
	mu      sync.Mutex
	wakeup  chan struct{}
	tasks   map[string]*task // for O(1) lookup by ID
	stopped bool
	stopCh  chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	s := &Scheduler{
		heap:   make(taskHeap, 0),
		wakeup: make(chan struct{}, 1),
		tasks:  make(map[string]*task),
		stopCh: make(chan struct{}),
	}
	heap.Init(&s.heap)
	return s
}

// Start starts the scheduler loop
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler. Pending tasks are discarded.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
}

// Schedule adds a task to be executed at the specified time
func (s *Scheduler) Schedule(id string, runAt time.Time, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	// Replace an existing task with the same ID
	if existing, ok := s.tasks[id]; ok {
		heap.Remove(&s.heap, existing.index)
		delete(s.tasks, id)
	}

	t := &task{
		id:    id,
		runAt: runAt,
		fn:    fn,
	}

	heap.Push(&s.heap, t)
	s.tasks[id] = t

	// Wake up the loop if this is now the earliest task
	if s.heap[0] == t {
		select {
		case s.wakeup <- struct{}{}:
		default:
		}
	}

	return nil
}

// Cancel removes a scheduled task. It reports whether a task with
// that ID was pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false
	}

	heap.Remove(&s.heap, t.index)
	delete(s.tasks, id)
	return true
}

// Pending returns the number of scheduled tasks
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// run is the scheduler loop
func (s *Scheduler) run() {
	for {
		s.mu.Lock()

		if s.stopped {
			s.mu.Unlock()
			return
		}

		var waitDuration time.Duration
		if s.heap.Len() == 0 {
			// No tasks, wait until something is scheduled
			waitDuration = 24 * time.Hour
		} else {
			next := s.heap[0]
			waitDuration = time.Until(next.runAt)

			if waitDuration <= 0 {
				t := heap.Pop(&s.heap).(*task)
				delete(s.tasks, t.id)

				go t.fn()

				s.mu.Unlock()
				continue
			}
		}

		s.mu.Unlock()

		timer := time.NewTimer(waitDuration)
		select {
		case <-timer.C:
			// Time to check for due tasks
		case <-s.wakeup:
			// A new task became the earliest
			timer.Stop()
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

var (
	ErrSchedulerStopped = &SchedulerError{"scheduler is stopped"}
)

// SchedulerError represents a scheduler error
type SchedulerError struct {
	msg string
}

func (e *SchedulerError) Error() string {
	return e.msg
}
