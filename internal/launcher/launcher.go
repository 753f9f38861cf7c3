// Package launcher opens applications and runs scripts through the host
// platform's own tooling.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyTarget is returned when the app name or script is blank.
var ErrEmptyTarget = errors.New("launcher: empty target")

// Config controls how commands are built and bounded.
type Config struct {
	// Interpreter overrides the platform script runner, e.g. ["bash", "-c"].
	// The script is appended as the final argument.
	Interpreter []string
	// Settle is how long to wait after an app was opened successfully.
	Settle time.Duration
	// Timeout bounds a single command. Zero means no bound.
	Timeout time.Duration
	// MaxOutput truncates captured output in status messages.
	MaxOutput int
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		Settle:    time.Second,
		Timeout:   30 * time.Second,
		MaxOutput: 512,
	}
}

// CommandError reports a command that could not be run or exited non-zero.
type CommandError struct {
	Op     string
	Argv   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("launcher: %s: %s: %v", e.Op, strings.Join(e.Argv, " "), e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes argv and returns its combined output.
type Runner func(ctx context.Context, argv []string) ([]byte, error)

func execRunner(ctx context.Context, argv []string) ([]byte, error) {
	return exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
}

// Launcher implements the open_app and run_script actions.
type Launcher struct {
	cfg    Config
	logger *zap.Logger
	goos   string
	run    Runner
	sleep  func(ctx context.Context, d time.Duration) error
}

// Option customizes a Launcher.
type Option func(*Launcher)

// WithRunner replaces process execution.
func WithRunner(r Runner) Option { return func(l *Launcher) { l.run = r } }

// WithGOOS selects the platform command table.
func WithGOOS(goos string) Option { return func(l *Launcher) { l.goos = goos } }

// WithSleep replaces the settle wait.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Launcher) { l.sleep = fn }
}

// New creates a Launcher for the current platform.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Launcher{
		cfg:    cfg,
		logger: logger.Named("launcher"),
		goos:   runtime.GOOS,
		run:    execRunner,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OpenApp brings the named application up and waits for it to settle.
func (l *Launcher) OpenApp(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: app name", ErrEmptyTarget)
	}

	var lastErr error
	for _, argv := range openCommands(l.goos, name) {
		out, err := l.exec(ctx, "open app", argv)
		if err != nil {
			lastErr = err
			l.logger.Debug("Open command failed, trying next.", zap.Strings("argv", argv), zap.Error(err))
			continue
		}
		l.logger.Info("Application opened.", zap.String("app", name))
		if err := l.sleep(ctx, l.cfg.Settle); err != nil {
			return "", err
		}
		msg := fmt.Sprintf("opened %s", name)
		if out != "" {
			msg += ": " + out
		}
		return msg, nil
	}
	return "", lastErr
}

// RunScript runs script with the configured or platform interpreter and
// returns its truncated output.
func (l *Launcher) RunScript(ctx context.Context, script string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", fmt.Errorf("%w: script", ErrEmptyTarget)
	}
	interp := l.cfg.Interpreter
	if len(interp) == 0 {
		interp = defaultInterpreter(l.goos)
	}
	argv := append(append([]string(nil), interp...), script)

	out, err := l.exec(ctx, "run script", argv)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (l *Launcher) exec(ctx context.Context, op string, argv []string) (string, error) {
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}
	raw, err := l.run(ctx, argv)
	out := truncate(strings.TrimSpace(string(raw)), l.cfg.MaxOutput)
	if err != nil {
		return "", &CommandError{Op: op, Argv: argv, Output: out, Err: err}
	}
	return out, nil
}

func openCommands(goos, name string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{{"open", "-a", name}}
	case "windows":
		// The empty argument is the window title start expects first.
		return [][]string{{"cmd", "/C", "start", "", name}}
	default:
		return [][]string{{"gtk-launch", name}, {"xdg-open", name}}
	}
}

func defaultInterpreter(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"osascript", "-e"}
	case "windows":
		return []string{"powershell", "-NoProfile", "-Command"}
	default:
		return []string{"sh", "-c"}
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	// Back off to a rune boundary.
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
