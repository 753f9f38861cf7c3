package recorder_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/deskpilot/internal/recorder"
)

func TestRecord_AppendsWithNewline(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, err := recorder.New(fs, "/records", zaptest.NewLogger(t))
	require.NoError(t, err)

	path, err := r.Record(context.Background(), "notes.txt", "first")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/records", "notes.txt"), path)

	_, err = r.Record(context.Background(), "notes.txt", "second\n")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestRecord_StripsDirectories(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		expected string
	}{
		{name: "traversal", fileName: "../../etc/passwd", expected: "passwd"},
		{name: "absolute", fileName: "/tmp/out.log", expected: "out.log"},
		{name: "windows separators", fileName: `..\..\boot.ini`, expected: "boot.ini"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			r, err := recorder.New(fs, "/records", zaptest.NewLogger(t))
			require.NoError(t, err)

			path, err := r.Record(context.Background(), tc.fileName, "x")
			require.NoError(t, err)
			assert.Equal(t, filepath.Join("/records", tc.expected), path)

			exists, err := afero.Exists(fs, path)
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestRecord_RejectsDegenerateNames(t *testing.T) {
	r, err := recorder.New(afero.NewMemMapFs(), "/records", zaptest.NewLogger(t))
	require.NoError(t, err)

	for _, name := range []string{"", "  ", ".", "..", "/", "a/.."} {
		_, err := r.Record(context.Background(), name, "x")
		assert.ErrorIs(t, err, recorder.ErrInvalidFileName, "name %q", name)
	}
}

func TestRecord_ReadOnlyFs(t *testing.T) {
	r, err := recorder.New(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/records", zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = r.Record(context.Background(), "notes.txt", "x")
	assert.Error(t, err)
}

func TestRecord_CanceledContext(t *testing.T) {
	r, err := recorder.New(afero.NewMemMapFs(), "/records", zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Record(ctx, "notes.txt", "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_ExpandsHome(t *testing.T) {
	r, err := recorder.New(afero.NewMemMapFs(), "~/deskpilot", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NotContains(t, r.Dir(), "~")
	assert.Equal(t, "deskpilot", filepath.Base(r.Dir()))
}
