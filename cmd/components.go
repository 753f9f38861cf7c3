package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/affordance"
	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/device/cdp"
	"github.com/xkilldash9x/deskpilot/internal/device/desktop"
	"github.com/xkilldash9x/deskpilot/internal/device/dryrun"
	"github.com/xkilldash9x/deskpilot/internal/executor"
	"github.com/xkilldash9x/deskpilot/internal/geometry"
	"github.com/xkilldash9x/deskpilot/internal/launcher"
	"github.com/xkilldash9x/deskpilot/internal/recorder"
	"github.com/xkilldash9x/deskpilot/internal/synth"
)

// components is everything one run needs, plus what must be torn down.
type components struct {
	Dispatcher *executor.Dispatcher
	shutdown   []func(ctx context.Context)
}

// Shutdown releases components in reverse creation order.
func (c *components) Shutdown(ctx context.Context) {
	for i := len(c.shutdown) - 1; i >= 0; i-- {
		c.shutdown[i](ctx)
	}
	c.shutdown = nil
}

// device pairs an input backend with its highlight surface, if it has one.
type device struct {
	synth.Device
	overlay affordance.Overlay
	close   func()
}

// openDevice is swapped in tests.
var openDevice = func(ctx context.Context, cfg config.DeviceConfig, logger *zap.Logger) (*device, error) {
	switch cfg.Kind {
	case config.DeviceDryRun:
		d := dryrun.New(cfg.DryRun.Width, cfg.DryRun.Height, logger)
		return &device{Device: d, overlay: d}, nil
	case config.DeviceCDP:
		d, err := cdp.New(ctx, cfg.CDP, logger)
		if err != nil {
			return nil, err
		}
		return &device{Device: d, overlay: d, close: d.Close}, nil
	case config.DeviceDesktop:
		d, err := desktop.New(logger)
		if err != nil {
			return nil, err
		}
		return &device{Device: d}, nil
	default:
		return nil, fmt.Errorf("unknown device kind %q", cfg.Kind)
	}
}

func synthTiming(t config.TimingConfig) synth.Timing {
	return synth.Timing{
		ClickSettle:  t.ClickSettle,
		DragSteps:    t.DragSteps,
		DragDuration: t.DragDuration,
		ScrollTick:   t.ScrollTick,
		TypeInterval: t.TypeInterval,
	}
}

// initializeComponents wires the device, synthesizer and dispatcher
// collaborators from cfg. On error everything created so far is released.
func initializeComponents(ctx context.Context, cfg config.Interface, logger *zap.Logger) (c *components, err error) {
	c = &components{}
	defer func() {
		if err != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(err))
			c.Shutdown(context.Background())
			c = nil
		}
	}()

	dev, err := openDevice(ctx, cfg.Device(), logger)
	if err != nil {
		return c, fmt.Errorf("failed to open %s device: %w", cfg.Device().Kind, err)
	}
	if dev.close != nil {
		c.shutdown = append(c.shutdown, func(context.Context) { dev.close() })
	}

	s, err := synth.New(dev, synthTiming(cfg.Executor().Timing), logger)
	if err != nil {
		return c, err
	}

	strategy, err := geometry.ParseStrategy(cfg.Executor().CoordinateStrategy)
	if err != nil {
		return c, err
	}

	rec, err := recorder.New(nil, cfg.Recorder().Dir, logger)
	if err != nil {
		return c, fmt.Errorf("failed to initialize recorder: %w", err)
	}

	lc := cfg.Launcher()
	deps := executor.Deps{
		Launcher: launcher.New(launcher.Config{
			Interpreter: lc.Interpreter,
			Settle:      lc.Settle,
			Timeout:     lc.Timeout,
			MaxOutput:   lc.MaxOutput,
		}, logger),
		Recorder: rec,
	}

	ac := cfg.Affordance()
	switch {
	case !ac.Enabled:
	case dev.overlay == nil:
		logger.Info("Click highlights are not supported by this device.", zap.String("device", cfg.Device().Kind))
	default:
		deps.Highlighter = affordance.NewFlasher(dev.overlay, affordance.Config{
			RingRadius:   ac.RingRadius,
			Duration:     ac.Duration,
			MaxPerSecond: ac.MaxPerSecond,
			Burst:        ac.Burst,
		}, logger)
	}

	ec := cfg.Executor()
	c.Dispatcher = executor.New(s, executor.Config{
		Strategy:           strategy,
		WaitDuration:       ec.WaitDuration,
		ScrollDefaultLines: ec.ScrollDefaultLines,
	}, deps, logger)
	c.shutdown = append(c.shutdown, func(ctx context.Context) {
		if err := c.Dispatcher.Close(ctx); err != nil {
			logger.Debug("Dispatcher close incomplete.", zap.Error(err))
		}
	})
	return c, nil
}
