package launcher_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/deskpilot/internal/launcher"
)

type fakeRunner struct {
	calls  [][]string
	out    map[string]string
	failOn map[string]error
}

func (f *fakeRunner) run(ctx context.Context, argv []string) ([]byte, error) {
	f.calls = append(f.calls, argv)
	return []byte(f.out[argv[0]]), f.failOn[argv[0]]
}

func newLauncher(t *testing.T, goos string, f *fakeRunner, slept *[]time.Duration) *launcher.Launcher {
	t.Helper()
	return launcher.New(launcher.DefaultConfig(), zaptest.NewLogger(t),
		launcher.WithGOOS(goos),
		launcher.WithRunner(f.run),
		launcher.WithSleep(func(ctx context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return ctx.Err()
		}),
	)
}

func TestOpenApp_PlatformCommands(t *testing.T) {
	testCases := []struct {
		goos     string
		expected []string
	}{
		{goos: "darwin", expected: []string{"open", "-a", "Safari"}},
		{goos: "windows", expected: []string{"cmd", "/C", "start", "", "Safari"}},
		{goos: "linux", expected: []string{"gtk-launch", "Safari"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.goos, func(t *testing.T) {
			f := &fakeRunner{}
			var slept []time.Duration
			l := newLauncher(t, tc.goos, f, &slept)

			msg, err := l.OpenApp(context.Background(), "  Safari ")
			require.NoError(t, err)
			assert.Equal(t, "opened Safari", msg)
			require.Len(t, f.calls, 1)
			assert.Equal(t, tc.expected, f.calls[0])
			assert.Equal(t, []time.Duration{time.Second}, slept, "settle wait after opening")
		})
	}
}

func TestOpenApp_LinuxFallsBackToXdgOpen(t *testing.T) {
	f := &fakeRunner{failOn: map[string]error{"gtk-launch": errors.New("no desktop file")}}
	var slept []time.Duration
	l := newLauncher(t, "linux", f, &slept)

	_, err := l.OpenApp(context.Background(), "firefox")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"gtk-launch", "firefox"}, {"xdg-open", "firefox"}}, f.calls)
}

func TestOpenApp_Failure(t *testing.T) {
	boom := errors.New("exit status 1")
	f := &fakeRunner{
		out:    map[string]string{"open": "Unable to find application named 'Nope'"},
		failOn: map[string]error{"open": boom},
	}
	var slept []time.Duration
	l := newLauncher(t, "darwin", f, &slept)

	_, err := l.OpenApp(context.Background(), "Nope")
	require.ErrorIs(t, err, boom)
	var cmdErr *launcher.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "open app", cmdErr.Op)
	assert.Contains(t, cmdErr.Output, "Unable to find")
	assert.Empty(t, slept, "no settle wait after a failure")
}

func TestEmptyTargets(t *testing.T) {
	f := &fakeRunner{}
	var slept []time.Duration
	l := newLauncher(t, "linux", f, &slept)

	_, err := l.OpenApp(context.Background(), " ")
	assert.ErrorIs(t, err, launcher.ErrEmptyTarget)
	_, err = l.RunScript(context.Background(), "")
	assert.ErrorIs(t, err, launcher.ErrEmptyTarget)
	assert.Empty(t, f.calls)
}

func TestRunScript_Interpreters(t *testing.T) {
	testCases := []struct {
		goos     string
		interp   []string
		expected []string
	}{
		{goos: "darwin", expected: []string{"osascript", "-e", "beep"}},
		{goos: "linux", expected: []string{"sh", "-c", "beep"}},
		{goos: "windows", expected: []string{"powershell", "-NoProfile", "-Command", "beep"}},
		{goos: "linux", interp: []string{"bash", "-lc"}, expected: []string{"bash", "-lc", "beep"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.goos, func(t *testing.T) {
			f := &fakeRunner{out: map[string]string{tc.expected[0]: "ok\n"}}
			cfg := launcher.DefaultConfig()
			cfg.Interpreter = tc.interp
			l := launcher.New(cfg, zaptest.NewLogger(t), launcher.WithGOOS(tc.goos), launcher.WithRunner(f.run))

			out, err := l.RunScript(context.Background(), "beep")
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
			assert.Equal(t, [][]string{tc.expected}, f.calls)
		})
	}
}

func TestRunScript_TruncatesOutput(t *testing.T) {
	long := strings.Repeat("€", 10)
	f := &fakeRunner{out: map[string]string{"sh": long}}
	cfg := launcher.DefaultConfig()
	cfg.MaxOutput = 7
	l := launcher.New(cfg, zaptest.NewLogger(t), launcher.WithGOOS("linux"), launcher.WithRunner(f.run))

	out, err := l.RunScript(context.Background(), "cat big")
	require.NoError(t, err)
	// Each euro sign is three bytes, so only two fit before the cut.
	assert.Equal(t, "€€...(truncated)", out)
}

func TestRunScript_TimeoutReachesRunner(t *testing.T) {
	cfg := launcher.DefaultConfig()
	cfg.Timeout = time.Millisecond
	l := launcher.New(cfg, zaptest.NewLogger(t), launcher.WithGOOS("linux"),
		launcher.WithRunner(func(ctx context.Context, argv []string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}))

	_, err := l.RunScript(context.Background(), "sleep 100")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
