package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

type testLogger struct {
	errors int64
}

func (l *testLogger) Errorf(format string, args ...interface{}) {
	atomic.AddInt64(&l.errors, 1)
}

func TestScheduleOnceRunsExactlyOnce(t *testing.T) {
	s := New(&testLogger{})

	var runs int64
	s.ScheduleOnce(10*time.Millisecond, func() {
		atomic.AddInt64(&runs, 1)
	})

	if got := s.Pending(); got != 1 {
		t.Errorf("Wrong pending count right after arming: got %d, expected 1", got)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt64(&runs); got != 1 {
		t.Errorf("Wrong run count: got %d, expected 1", got)
	}
	if got := s.Pending(); got != 0 {
		t.Errorf("Wrong pending count after firing: got %d, expected 0", got)
	}
}

func TestScheduleOnceDoesNotBlockCaller(t *testing.T) {
	s := New(&testLogger{})

	start := time.Now()
	s.ScheduleOnce(200*time.Millisecond, func() {})

	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("ScheduleOnce blocked the caller for %v", elapsed)
	}
}

func TestScheduleOnceRecoversPanic(t *testing.T) {
	logger := &testLogger{}
	s := New(logger)

	s.ScheduleOnce(time.Millisecond, func() { panic("boom") })

	done := make(chan struct{})
	s.ScheduleOnce(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Scheduler stopped firing after a panicking action")
	}

	if got := atomic.LoadInt64(&logger.errors); got != 1 {
		t.Errorf("Wrong logged error count: got %d, expected 1", got)
	}
}
