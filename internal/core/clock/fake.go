package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Callbacks run synchronously inside Advance,
// in due-time order, ties broken by arming order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	fake     *Fake
	seq      int
	interval time.Duration
	next     time.Time
	fn       func(time.Time)
	stopped  bool
}

// NewFake creates a fake clock positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// Every arms a repeating callback first due one interval from now.
func (fake *Fake) Every(interval time.Duration, fn func(now time.Time)) Timer {
	if interval <= 0 {
		interval = time.Second
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.seq++
	timer := &fakeTimer{
		fake:     fake,
		seq:      fake.seq,
		interval: interval,
		next:     fake.now.Add(interval),
		fn:       fn,
	}
	fake.timers = append(fake.timers, timer)
	return timer
}

// Advance moves time forward by delta, firing every timer that comes due.
func (fake *Fake) Advance(delta time.Duration) {
	fake.mu.Lock()
	target := fake.now.Add(delta)
	for {
		timer := fake.nextDueLocked(target)
		if timer == nil {
			break
		}
		fake.now = timer.next
		timer.next = timer.next.Add(timer.interval)
		now := fake.now
		fake.mu.Unlock()
		timer.fn(now)
		fake.mu.Lock()
	}
	fake.now = target
	fake.mu.Unlock()
}

// Set jumps to t without firing any timer.
func (fake *Fake) Set(t time.Time) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.now = t
	for _, timer := range fake.timers {
		if timer.next.Before(t) {
			timer.next = t.Add(timer.interval)
		}
	}
}

// Active reports how many timers are armed and not stopped.
func (fake *Fake) Active() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	count := 0
	for _, timer := range fake.timers {
		if !timer.stopped {
			count++
		}
	}
	return count
}

func (fake *Fake) nextDueLocked(target time.Time) *fakeTimer {
	var due *fakeTimer
	live := fake.timers[:0]
	for _, timer := range fake.timers {
		if timer.stopped {
			continue
		}
		live = append(live, timer)
		if timer.next.After(target) {
			continue
		}
		if due == nil || timer.next.Before(due.next) || (timer.next.Equal(due.next) && timer.seq < due.seq) {
			due = timer
		}
	}
	fake.timers = live
	return due
}

func (timer *fakeTimer) Stop() {
	timer.fake.mu.Lock()
	timer.stopped = true
	timer.fake.mu.Unlock()
}
