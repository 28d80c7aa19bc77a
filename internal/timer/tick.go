package timer

import (
	"fmt"
	"time"
)

// startTicksLocked launches the tick loop for the current running interval.
// Each loop carries a generation; ticks from an older generation are dropped.
func (t *Timer) startTicksLocked() {
	if t.onTick == nil {
		return
	}
	t.gen++
	stop := make(chan struct{})
	t.stopTicks = stop
	go t.tickLoop(t.gen, stop)
}

func (t *Timer) stopTicksLocked() {
	if t.stopTicks != nil {
		close(t.stopTicks)
		t.stopTicks = nil
	}
	t.gen++
}

func (t *Timer) tickLoop(gen uint64, stop <-chan struct{}) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			t.mu.Lock()
			if t.gen != gen || t.state != Running {
				t.mu.Unlock()
				return
			}
			elapsed := t.elapsedLocked()
			fn := t.onTick
			t.mu.Unlock()

			t.deliver(fn, elapsed)
		}
	}
}

// deliver calls the tick callback outside the lock. A panicking callback is
// logged and does not affect the session.
func (t *Timer) deliver(fn func(time.Duration), elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			t.observer.TickPanicked()
			t.logger.Warn("tick callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn(elapsed)
}
