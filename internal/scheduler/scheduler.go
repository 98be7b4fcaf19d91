package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task on a fixed interval, once immediately. Consecutive
// failures stretch the wait with bounded exponential backoff instead of
// restarting the loop; success resets it.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	const maxBackoff = 8

	backoff := 0
	run := func() {
		if err := task(ctx); err != nil {
			if backoff < maxBackoff {
				backoff++
			}
			log.Printf("[%s] error: %v (backoff x%d)", name, err, 1<<backoff)
		} else {
			backoff = 0
		}
	}

	run()

	for {
		wait := interval * time.Duration(1<<backoff)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
			run()
		}
	}
}
