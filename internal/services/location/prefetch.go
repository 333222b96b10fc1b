package location

import (
	"context"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/platform/obs"
	"sync"
	"time"
)

// Prefetch queues raw for background resolution. It never blocks: when the
// queue is full the request is dropped and Prefetch returns false.
func (c *Cache) Prefetch(raw string) bool {
	loc := domain.NewDeliveryLocation(raw)
	if loc.Empty() {
		return false
	}
	if c.load(loc.Fingerprint).Fresh(c.now()) {
		c.metrics.Prefetch(true)
		return true
	}

	select {
	case c.queue <- loc:
		c.metrics.Prefetch(true)
		return true
	default:
		c.metrics.Prefetch(false)
		c.logger.Warn("prefetch queue full, dropping",
			logx.String("fingerprint", loc.Fingerprint))
		return false
	}
}

// Run starts the prefetch workers and the expiry sweep, and blocks until
// ctx is done and every worker has returned.
func (c *Cache) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.worker(ctx, id)
		}(i)
	}

	if c.sweepInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.sweepLoop(ctx)
		}()
	}

	c.logger.Info("location cache workers started",
		logx.Int("workers", c.workers),
		logx.Duration("sweep_interval", c.sweepInterval),
	)
	wg.Wait()
	return nil
}

func (c *Cache) worker(ctx context.Context, id int) {
	log := c.logger.With(logx.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			return
		case loc := <-c.queue:
			wctx := obs.WithRequestID(ctx, "prefetch-"+loc.Fingerprint)
			if _, _, err := c.GetOrCompute(wctx, loc); err != nil && ctx.Err() == nil {
				log.Warn("prefetch failed",
					logx.String("fingerprint", loc.Fingerprint),
					logx.Err(err),
				)
			}
		}
	}
}

func (c *Cache) sweepLoop(ctx context.Context) {
	t := time.NewTicker(c.sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("expired location entries swept", logx.Int("removed", n))
			}
		}
	}
}
