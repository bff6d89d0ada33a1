package guestpass

import (
	"context"
	"fmt"
	"time"

	"residence-access/logger"
)

// Sweeper drives the expiration sweep on a fixed interval for the
// lifetime of the process. It runs as a background goroutine and is safe
// to stop via its context or the Stop method; an in-flight tick finishes
// before Stop returns.
type Sweeper struct {
	svc         *Service
	interval    time.Duration
	tickTimeout time.Duration
	cancel      context.CancelFunc
	done        chan struct{}
}

// SweeperConfig holds the parameters for NewSweeper.
type SweeperConfig struct {
	// Interval is how often the sweep runs. Defaults to 60 seconds.
	Interval time.Duration

	// TickTimeout bounds the database work of a single tick. Defaults
	// to 30 seconds.
	TickTimeout time.Duration
}

// NewSweeper creates a sweeper but does not start it.
// Call Start to begin the background loop.
func NewSweeper(svc *Service, cfg SweeperConfig) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	tickTimeout := cfg.TickTimeout
	if tickTimeout <= 0 {
		tickTimeout = 30 * time.Second
	}

	return &Sweeper{
		svc:         svc,
		interval:    interval,
		tickTimeout: tickTimeout,
		done:        make(chan struct{}),
	}
}

// Start begins the background sweep loop. It runs an immediate sweep on
// startup to clear any backlog from before the process started, then
// repeats on the configured interval until ctx is cancelled or Stop is
// called.
func (w *Sweeper) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go w.loop(ctx)

	logger.Info(fmt.Sprintf("Guest pass sweeper started (interval: %s)", w.interval))
}

// Stop signals the sweeper to exit and waits for the loop to finish.
func (w *Sweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
}

func (w *Sweeper) loop(ctx context.Context) {
	defer close(w.done)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one tick. A failed tick is logged and retried in full on the
// next interval; it never takes down the process.
func (w *Sweeper) sweep(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, w.tickTimeout)
	defer cancel()

	archived, err := w.svc.Sweep(tickCtx)
	if err != nil {
		logger.Error("Guest pass sweep failed", err)
		return
	}
	if archived > 0 {
		logger.Info(fmt.Sprintf("Guest pass sweep archived %d expired passes", archived))
	}
}
