package scheduler

import (
	"sync/atomic"
	"time"
)

// Logger is the subset of logrus the scheduler needs.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Scheduler arms fire-and-forget one-shot actions. An armed action
// cannot be cancelled and is never retried; a panic inside an action
// is recovered and logged so one bad action cannot take the bot down.
type Scheduler struct {
	pending int64

	log Logger
}

// New returns a new Scheduler.
func New(log Logger) *Scheduler {
	return &Scheduler{log: log}
}

// ScheduleOnce runs action exactly once after delay, on its own timer,
// without blocking the caller.
func (s *Scheduler) ScheduleOnce(delay time.Duration, action func()) {
	atomic.AddInt64(&s.pending, 1)
	time.AfterFunc(delay, func() {
		defer atomic.AddInt64(&s.pending, -1)
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("scheduler: recovered in scheduled action: %v", r)
			}
		}()
		action()
	})
}

// Pending returns the number of armed actions which have not run yet.
func (s *Scheduler) Pending() int64 {
	return atomic.LoadInt64(&s.pending)
}
