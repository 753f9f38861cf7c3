// Package affordance draws short-lived on-screen highlights at click
// locations so a supervising human can follow what the agent does.
// Everything here is best-effort: nothing it does can delay or fail a click.
package affordance

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// Highlighter schedules a transient highlight. Flash must return immediately.
type Highlighter interface {
	Flash(p schemas.Point)
	Close(ctx context.Context) error
}

// Overlay is the drawing surface a backend provides. Rings must not capture
// pointer input.
type Overlay interface {
	ShowRing(ctx context.Context, id string, p schemas.Point, radius float64) error
	HideRing(ctx context.Context, id string) error
}

// Config controls the flasher.
type Config struct {
	RingRadius float64
	Duration   time.Duration
	// MaxPerSecond and Burst bound how many highlights may be spawned.
	MaxPerSecond float64
	Burst        int
}

// DefaultConfig is a red ring of radius 16 shown for one second.
func DefaultConfig() Config {
	return Config{
		RingRadius:   16,
		Duration:     time.Second,
		MaxPerSecond: 10,
		Burst:        5,
	}
}

// hideTimeout bounds the dismissal call, which runs even after shutdown.
const hideTimeout = 2 * time.Second

// Flasher runs one goroutine per highlight. Each goroutine owns its own
// coordinates and timer and shares nothing with the caller.
type Flasher struct {
	overlay Overlay
	cfg     Config
	logger  *zap.Logger
	limiter *rate.Limiter

	root   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	seq    atomic.Uint64
}

// NewFlasher creates a Flasher drawing through overlay.
func NewFlasher(overlay Overlay, cfg Config, logger *zap.Logger) *Flasher {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.MaxPerSecond > 0 {
		limit = rate.Limit(cfg.MaxPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	root, cancel := context.WithCancel(context.Background())
	return &Flasher{
		overlay: overlay,
		cfg:     cfg,
		logger:  logger.Named("affordance"),
		limiter: rate.NewLimiter(limit, burst),
		root:    root,
		cancel:  cancel,
	}
}

// Flash schedules a ring at p and returns without waiting for it.
func (f *Flasher) Flash(p schemas.Point) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if !f.limiter.Allow() {
		f.mu.Unlock()
		f.logger.Debug("Highlight dropped by rate limit.", zap.Stringer("at", p))
		return
	}
	f.wg.Add(1)
	f.mu.Unlock()

	id := fmt.Sprintf("deskpilot-ring-%d", f.seq.Add(1))
	go f.run(id, p)
}

func (f *Flasher) run(id string, p schemas.Point) {
	defer f.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Recovered from panic in highlight task.", zap.String("id", id), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(f.root, f.cfg.Duration+hideTimeout)
	defer cancel()

	if err := f.overlay.ShowRing(ctx, id, p, f.cfg.RingRadius); err != nil {
		f.logger.Debug("Highlight could not be shown.", zap.String("id", id), zap.Error(err))
		return
	}

	timer := time.NewTimer(f.cfg.Duration)
	select {
	case <-timer.C:
	case <-f.root.Done():
		timer.Stop()
	}

	// Dismiss on a fresh context so shutdown still removes the ring.
	hideCtx, hideCancel := context.WithTimeout(context.Background(), hideTimeout)
	defer hideCancel()
	if err := f.overlay.HideRing(hideCtx, id); err != nil {
		f.logger.Debug("Highlight could not be dismissed.", zap.String("id", id), zap.Error(err))
	}
}

// Close stops accepting highlights, dismisses the ones on screen and waits
// for their goroutines to exit or ctx to expire.
func (f *Flasher) Close(ctx context.Context) error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cancel()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("affordance: waiting for highlights: %w", ctx.Err())
	}
}

// Nop is the disabled Highlighter.
type Nop struct{}

func (Nop) Flash(schemas.Point)         {}
func (Nop) Close(context.Context) error { return nil }

var (
	_ Highlighter = (*Flasher)(nil)
	_ Highlighter = Nop{}
)
