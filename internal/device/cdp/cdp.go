// Package cdp drives input through the Chrome DevTools Protocol. Events land
// in a browser page rather than on the OS, which makes it usable on headless
// hosts and in CI where no display server exists.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/synth"
)

// ActionRunner executes chromedp actions against the page.
type ActionRunner func(ctx context.Context, actions ...chromedp.Action) error

// Device is a synth.Device and affordance.Overlay backed by one browser tab.
type Device struct {
	logger      *zap.Logger
	callTimeout time.Duration
	runActions  ActionRunner

	mu        sync.Mutex
	pointer   schemas.Point
	modifiers input.Modifier

	closeOnce sync.Once
	cancels   []context.CancelFunc
}

var _ synth.Device = (*Device)(nil)

// execOptions translates the config into allocator options.
func execOptions(cfg config.CDPConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", cfg.Headless),
	)
	if cfg.Viewport.Width > 0 && cfg.Viewport.Height > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.Viewport.Width, cfg.Viewport.Height))
	}

	for _, arg := range cfg.Args {
		arg = strings.TrimPrefix(arg, "--")
		if key, value, ok := strings.Cut(arg, "="); ok {
			opts = append(opts, chromedp.Flag(key, value))
			continue
		}
		opts = append(opts, chromedp.Flag(arg, true))
	}
	return opts
}

// New starts (or attaches to) a browser and opens the start page. The
// returned device owns the browser until Close.
func New(ctx context.Context, cfg config.CDPConfig, logger *zap.Logger) (*Device, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOptions(cfg)...)
	}
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	d := NewWithRunner(func(ctx context.Context, actions ...chromedp.Action) error {
		runCtx, cancel := combineContext(browserCtx, ctx)
		defer cancel()
		return chromedp.Run(runCtx, actions...)
	}, cfg.CallTimeout, logger)
	d.cancels = []context.CancelFunc{browserCancel, allocCancel}

	startURL := cfg.StartURL
	if startURL == "" {
		startURL = "about:blank"
	}
	// The first Run launches the browser, so it gets no call timeout.
	if err := chromedp.Run(browserCtx, chromedp.Navigate(startURL)); err != nil {
		d.Close()
		return nil, fmt.Errorf("cdp: failed to open %s: %w", startURL, err)
	}
	d.logger.Info("Browser input device ready.",
		zap.String("start_url", startURL),
		zap.Bool("remote", cfg.RemoteURL != ""),
		zap.Bool("headless", cfg.Headless))
	return d, nil
}

// NewWithRunner builds a device around an existing action runner.
func NewWithRunner(run ActionRunner, callTimeout time.Duration, logger *zap.Logger) *Device {
	if logger == nil {
		logger = zap.NewNop()
	}
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	return &Device{
		logger:      logger.Named("cdp"),
		callTimeout: callTimeout,
		runActions:  run,
	}
}

// Close shuts the tab and, for launched browsers, the browser process.
func (d *Device) Close() {
	d.closeOnce.Do(func() {
		for _, cancel := range d.cancels {
			cancel()
		}
	})
}

// combineContext derives from the browser context, keeping its CDP target,
// and cancels when op is done as well.
func combineContext(browser, op context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(browser)
	stop := context.AfterFunc(op, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// run executes actions under the per-call timeout.
func (d *Device) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	err := d.runActions(opCtx, actions...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("cdp %s: %w", op, ctxErr)
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		d.logger.Debug("CDP call timed out.", zap.String("op", op), zap.Duration("timeout", d.callTimeout))
		return fmt.Errorf("cdp %s timed out after %v: %w", op, d.callTimeout, opCtx.Err())
	}
	return fmt.Errorf("cdp %s: %w", op, err)
}

// Sleep pauses on the browser's side so the wait also ends if the tab dies.
func (d *Device) Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	if err := d.runActions(ctx, chromedp.Sleep(dur)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("cdp sleep: %w", err)
	}
	return nil
}

// ScreenSize reports the CSS visual viewport, the coordinate space mouse
// events are dispatched in.
func (d *Device) ScreenSize(ctx context.Context) (schemas.Size, error) {
	var size schemas.Size
	err := d.run(ctx, "layout metrics", chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, _, _, cssVisualViewport, _, err := page.GetLayoutMetrics().Do(ctx)
		if err != nil {
			return err
		}
		if cssVisualViewport == nil {
			return fmt.Errorf("no visual viewport reported")
		}
		size = schemas.Size{Width: cssVisualViewport.ClientWidth, Height: cssVisualViewport.ClientHeight}
		return nil
	}))
	return size, err
}

// PointerPosition returns the last location events were dispatched at.
// CDP has no way to read the pointer back.
func (d *Device) PointerPosition(ctx context.Context) (schemas.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pointer, ctx.Err()
}
