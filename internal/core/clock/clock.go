package clock

import (
	"sync"
	"time"
)

// Timer is a handle to an armed repeating callback.
type Timer interface {
	Stop()
}

// Clock supplies wall-clock time and repeating callbacks.
type Clock interface {
	Now() time.Time
	Every(interval time.Duration, fn func(now time.Time)) Timer
}

// System is the real-time Clock.
type System struct{}

// Now returns the current local time.
func (System) Now() time.Time {
	return time.Now()
}

// Every calls fn on its own goroutine once per interval until the timer is stopped.
func (System) Every(interval time.Duration, fn func(now time.Time)) Timer {
	timer := &systemTimer{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	go timer.run(fn)
	return timer
}

type systemTimer struct {
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

func (timer *systemTimer) run(fn func(time.Time)) {
	for {
		select {
		case <-timer.stopCh:
			return
		case tickTime := <-timer.ticker.C:
			select {
			case <-timer.stopCh:
				return
			default:
			}
			fn(tickTime)
		}
	}
}

func (timer *systemTimer) Stop() {
	timer.stopOnce.Do(func() {
		timer.ticker.Stop()
		close(timer.stopCh)
	})
}
