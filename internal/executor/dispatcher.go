// internal/executor/dispatcher.go
package executor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/affordance"
	"github.com/xkilldash9x/deskpilot/internal/geometry"
	"github.com/xkilldash9x/deskpilot/internal/synth"
)

// Launcher opens applications and runs scripts.
type Launcher interface {
	OpenApp(ctx context.Context, name string) (string, error)
	RunScript(ctx context.Context, script string) (string, error)
}

// Recorder persists record_info notes.
type Recorder interface {
	Record(ctx context.Context, fileName, text string) (string, error)
}

// Config holds the dispatcher knobs.
type Config struct {
	Strategy           geometry.Strategy
	WaitDuration       time.Duration
	ScrollDefaultLines int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Strategy:           geometry.Thousandths,
		WaitDuration:       time.Second,
		ScrollDefaultLines: 5,
	}
}

// Deps are the optional collaborators. A nil Highlighter disables
// highlights; a nil Launcher or Recorder makes those actions fail.
type Deps struct {
	Launcher    Launcher
	Recorder    Recorder
	Highlighter affordance.Highlighter
}

// Result is the outcome of one action.
type Result struct {
	Index     int           `json:"index"`
	Kind      action.Kind   `json:"kind"`
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	ErrorCode ErrorCode     `json:"error_code,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Report is the outcome of one batch. Results has one entry per action, in
// submission order.
type Report struct {
	BatchID string   `json:"batch_id"`
	Results []Result `json:"results"`
	// Done is set when the batch contained a successful done action.
	Done bool `json:"done"`
}

// Failed counts the unsuccessful results.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Success {
			n++
		}
	}
	return n
}

// Dispatcher executes decoded batches against one device. It owns the
// device: only one batch runs at a time.
type Dispatcher struct {
	logger      *zap.Logger
	synth       *synth.Synthesizer
	normalizer  geometry.Normalizer
	launcher    Launcher
	recorder    Recorder
	highlighter affordance.Highlighter
	cfg         Config
	inFlight    *semaphore.Weighted
}

// New creates a Dispatcher driving s.
func New(s *synth.Synthesizer, cfg Config, deps Deps, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	hl := deps.Highlighter
	if hl == nil {
		hl = affordance.Nop{}
	}
	return &Dispatcher{
		logger:      logger.Named("dispatcher"),
		synth:       s,
		normalizer:  geometry.NewNormalizer(cfg.Strategy),
		launcher:    deps.Launcher,
		recorder:    deps.Recorder,
		highlighter: hl,
		cfg:         cfg,
		inFlight:    semaphore.NewWeighted(1),
	}
}

// Execute runs every action of batch in order. A failing action never stops
// the batch; it only produces a failed Result. The returned error is
// ErrDeviceBusy or nil.
func (d *Dispatcher) Execute(ctx context.Context, batch action.Batch) (*Report, error) {
	if !d.inFlight.TryAcquire(1) {
		return nil, ErrDeviceBusy
	}
	defer d.inFlight.Release(1)

	report := &Report{
		BatchID: uuid.NewString(),
		Results: make([]Result, 0, len(batch)),
	}
	logger := d.logger.With(zap.String("batch_id", report.BatchID))
	logger.Info("Executing batch.", zap.Int("actions", len(batch)))

	for i, inst := range batch {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{
				Index:     i,
				Kind:      kindOf(inst),
				Message:   fmt.Sprintf("not started: %v", err),
				ErrorCode: ErrCodeCanceled,
			})
			continue
		}

		res := d.executeOne(ctx, logger, i, inst)
		if res.Success && res.Kind == action.KindDone {
			report.Done = true
		}
		report.Results = append(report.Results, res)
	}

	logger.Info("Batch finished.",
		zap.Int("failed", report.Failed()),
		zap.Bool("done", report.Done),
		zap.String("held_button", string(d.synth.HeldButton())))
	return report, nil
}

// Close releases the highlighter.
func (d *Dispatcher) Close(ctx context.Context) error {
	return d.highlighter.Close(ctx)
}

func (d *Dispatcher) executeOne(ctx context.Context, logger *zap.Logger, i int, inst action.Instance) (res Result) {
	start := time.Now()
	res = Result{Index: i, Kind: kindOf(inst)}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic in action handler.",
				zap.Int("index", i), zap.String("kind", string(res.Kind)), zap.Any("panic", r))
			res.Success = false
			res.Message = fmt.Sprintf("panic: %v", r)
			res.ErrorCode = ErrCodeExecutorPanic
		}
		res.Duration = time.Since(start)
	}()

	msg, err := d.dispatch(ctx, inst)
	if err != nil {
		res.ErrorCode = classify(ctx, err)
		res.Message = err.Error()
		logger.Warn("Action failed.",
			zap.Int("index", i),
			zap.String("kind", string(res.Kind)),
			zap.String("error_code", string(res.ErrorCode)),
			zap.Error(err))
		return res
	}
	res.Success = true
	res.Message = msg
	logger.Debug("Action succeeded.", zap.Int("index", i), zap.String("kind", string(res.Kind)), zap.String("message", msg))
	return res
}

// dispatch is the exhaustive switch over action kinds.
func (d *Dispatcher) dispatch(ctx context.Context, inst action.Instance) (string, error) {
	switch a := inst.(type) {
	case action.Done:
		return withText("done", a.Text), nil

	case action.Wait:
		if err := d.synth.Device().Sleep(ctx, d.cfg.WaitDuration); err != nil {
			return "", coded(ErrCodeInputSynthesis, err)
		}
		return withText(fmt.Sprintf("waited %s", d.cfg.WaitDuration), a.Text), nil

	case action.InputText:
		n, err := d.synth.TypeText(ctx, a.Text)
		if err != nil {
			return "", coded(ErrCodeInputSynthesis, err)
		}
		return fmt.Sprintf("typed %d characters", n), nil

	case action.PressKey:
		if err := d.synth.PressKey(ctx, a.Key); err != nil {
			return "", coded(ErrCodeInputSynthesis, err)
		}
		return fmt.Sprintf("pressed %s", a.Key), nil

	case action.PressCombo:
		if err := d.synth.PressCombo(ctx, a.Keys()); err != nil {
			return "", coded(ErrCodeInputSynthesis, err)
		}
		return fmt.Sprintf("pressed %s", a), nil

	case action.LeftClick:
		return d.click(ctx, a.Position, schemas.ButtonLeft)

	case action.RightClick:
		return d.click(ctx, a.Position, schemas.ButtonRight)

	case action.MovePointer:
		p, err := d.resolve(ctx, a.Position)
		if err != nil {
			return "", err
		}
		if err := d.synth.Move(ctx, p); err != nil {
			return "", coded(ErrCodeInputSynthesis, err)
		}
		return fmt.Sprintf("moved to %s", p), nil

	case action.Drag:
		size, err := d.screenSize(ctx)
		if err != nil {
			return "", err
		}
		from, to, err := d.normalizer.ResolvePair(a.Position1, a.Position2, size)
		if err != nil {
			return "", coded(ErrCodeInvalidParameters, err)
		}
		if err := d.synth.Drag(ctx, from, to); err != nil {
			return "", coded(ErrCodeInputSynthesis, err)
		}
		return fmt.Sprintf("dragged %s to %s", from, to), nil

	case action.ScrollUp:
		return d.scroll(ctx, a.ScrollParams, schemas.ScrollUp)

	case action.ScrollDown:
		return d.scroll(ctx, a.ScrollParams, schemas.ScrollDown)

	case action.OpenApp:
		if d.launcher == nil {
			return "", coded(ErrCodeLaunchFailure, fmt.Errorf("no launcher configured"))
		}
		msg, err := d.launcher.OpenApp(ctx, a.AppName)
		if err != nil {
			return "", coded(ErrCodeLaunchFailure, err)
		}
		return msg, nil

	case action.RunScript:
		if d.launcher == nil {
			return "", coded(ErrCodeLaunchFailure, fmt.Errorf("no launcher configured"))
		}
		out, err := d.launcher.RunScript(ctx, a.Script)
		if err != nil {
			return "", coded(ErrCodeLaunchFailure, err)
		}
		return withText("script finished", out), nil

	case action.RecordInfo:
		if d.recorder == nil {
			return "", coded(ErrCodeRecordFailure, fmt.Errorf("no recorder configured"))
		}
		path, err := d.recorder.Record(ctx, a.FileName, a.Text)
		if err != nil {
			return "", coded(ErrCodeRecordFailure, err)
		}
		return fmt.Sprintf("recorded to %s", path), nil
	}
	return "", coded(ErrCodeUnknownAction, fmt.Errorf("unsupported action %T", inst))
}

func (d *Dispatcher) click(ctx context.Context, pos geometry.Position, button schemas.MouseButton) (string, error) {
	p, err := d.resolve(ctx, pos)
	if err != nil {
		return "", err
	}
	d.highlighter.Flash(p)
	if err := d.synth.Click(ctx, p, button); err != nil {
		return "", coded(ErrCodeInputSynthesis, err)
	}
	return fmt.Sprintf("%s click at %s", button, p), nil
}

func (d *Dispatcher) scroll(ctx context.Context, sp action.ScrollParams, dir schemas.ScrollDirection) (string, error) {
	p, err := d.resolve(ctx, sp.Position)
	if err != nil {
		return "", err
	}
	lines := int(math.Round(math.Abs(sp.DY)))
	if lines == 0 {
		lines = d.cfg.ScrollDefaultLines
	}
	posted, err := d.synth.ScrollAt(ctx, p, dir, lines)
	if err != nil {
		return "", coded(ErrCodeInputSynthesis, fmt.Errorf("after %d lines: %w", posted, err))
	}
	return fmt.Sprintf("scrolled %s %d lines at %s", dir, posted, p), nil
}

func (d *Dispatcher) resolve(ctx context.Context, pos geometry.Position) (schemas.Point, error) {
	size, err := d.screenSize(ctx)
	if err != nil {
		return schemas.Point{}, err
	}
	p, err := d.normalizer.Resolve(pos, size)
	if err != nil {
		return schemas.Point{}, coded(ErrCodeInvalidParameters, err)
	}
	return p, nil
}

func (d *Dispatcher) screenSize(ctx context.Context) (schemas.Size, error) {
	size, err := d.synth.ScreenSize(ctx)
	if err != nil {
		return schemas.Size{}, coded(ErrCodeInputSynthesis, err)
	}
	return size, nil
}

func kindOf(inst action.Instance) action.Kind {
	if inst == nil {
		return ""
	}
	return inst.Kind()
}

func withText(prefix, text string) string {
	if text == "" {
		return prefix
	}
	return prefix + ": " + text
}
