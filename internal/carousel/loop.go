package carousel

import (
	"context"
	"sync"
	"time"
)

// Loop runs posted functions one at a time on the goroutine that calls Run.
// It is the event loop that owns a Controller: every input and every timer
// tick is posted here, so handlers never interleave.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop whose queue holds up to buffer pending tasks.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and returns false once
// the loop has stopped. Do not call Post from a task when the queue may be
// full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Dispatch posts ev for c.
func (l *Loop) Dispatch(c *Controller, ev Event) bool {
	return l.Post(func() { c.Handle(ev) })
}

// Run executes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// ClockTimers is the wall-clock Timers implementation. Ticks are posted to
// the loop and dropped there if the handle was cancelled in the meantime.
type ClockTimers struct {
	loop *Loop

	mu     sync.Mutex
	last   Handle
	active map[Handle]chan struct{}
}

// NewClockTimers returns timers that deliver callbacks on loop.
func NewClockTimers(loop *Loop) *ClockTimers {
	return &ClockTimers{loop: loop, active: make(map[Handle]chan struct{})}
}

// ScheduleRepeating calls fn on the loop every interval until cancelled.
func (t *ClockTimers) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	t.mu.Lock()
	t.last++
	h := t.last
	stop := make(chan struct{})
	t.active[h] = stop
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.loop.Done():
				return
			case <-ticker.C:
				ok := t.loop.Post(func() {
					if t.live(h) {
						fn()
					}
				})
				if !ok {
					return
				}
			}
		}
	}()
	return h
}

// Cancel stops h. Unknown or already cancelled handles are ignored.
func (t *ClockTimers) Cancel(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if stop, ok := t.active[h]; ok {
		close(stop)
		delete(t.active, h)
	}
}

// Pending returns the number of scheduled timers.
func (t *ClockTimers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func (t *ClockTimers) live(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[h]
	return ok
}
