package reminder

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rcliao/babylog/internal/model"
)

// Throttle wraps next so that a profile and category pair notifies at most
// once per minGap. The poller never applies it on its own.
func Throttle(next Notifier, minGap time.Duration, clock clockwork.Clock) Notifier {
	type key struct {
		profileID string
		category  model.Category
	}
	var (
		mu   sync.Mutex
		last = make(map[key]time.Time)
	)
	return func(n Notification) {
		k := key{n.ProfileID, n.Category}
		now := clock.Now()

		mu.Lock()
		prev, seen := last[k]
		if seen && now.Sub(prev) < minGap {
			mu.Unlock()
			return
		}
		last[k] = now
		mu.Unlock()

		next(n)
	}
}
