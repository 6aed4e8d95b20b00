package pool

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bolt-go/bolt/client"
	"github.com/bolt-go/bolt/internal/logger"
	"github.com/bolt-go/bolt/metrics"
)

// reap periodically validates every idle connection and evicts broken
// ones, the way the teacher's asprocess.Watch periodically checks the
// parent pid and runs a cleanup callback — generalized here from "watch
// my parent" to "watch my idle connections."
func reap(m *manager, interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			reapOnce(m)
		}
	}
}

func reapOnce(m *manager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, key := range m.idle.Keys() {
		// Remove before validating, not Peek: this takes the entry out of
		// circulation for the duration of the Reset round trip, so a
		// concurrent Checkout can't be handed the same connection the
		// reaper is mid-validation on (§5 "exclusive owner"). Put it back
		// only if it survives.
		v, ok := m.idle.Get(key)
		if !ok {
			continue
		}
		m.idle.Remove(key)
		metrics.PoolSize.WithLabelValues("idle").Dec()

		c := v.(*client.Client)
		if m.HasBroken(c) || m.Validate(ctx, c) != nil {
			metrics.IdleReaped.Inc()
			logger.Warn(nil, "reaped idle connection", zap.String("id", c.ID()))
			c.Close()
			continue
		}

		m.idle.Add(c.ID(), c)
		metrics.PoolSize.WithLabelValues("idle").Inc()
	}
}
