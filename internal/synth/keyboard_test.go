package synth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/mocks"
	"github.com/xkilldash9x/deskpilot/internal/synth"
)

func down(key string) schemas.KeyEventData { return schemas.KeyEventData{Type: schemas.KeyDown, Key: key} }
func up(key string) schemas.KeyEventData   { return schemas.KeyEventData{Type: schemas.KeyUp, Key: key} }

func TestPressKey(t *testing.T) {
	dev := mocks.NewRecordingDevice(100, 100)
	s := newTestSynth(t, dev)

	require.NoError(t, s.PressKey(context.Background(), " enter "))
	assert.Equal(t, []schemas.KeyEventData{down("enter"), up("enter")}, dev.KeyEvents)

	assert.Error(t, s.PressKey(context.Background(), "  "))
}

func TestPressCombo_NestedOrder(t *testing.T) {
	testCases := []struct {
		name     string
		keys     []string
		expected []schemas.KeyEventData
	}{
		{
			name:     "two keys",
			keys:     []string{"cmd", "c"},
			expected: []schemas.KeyEventData{down("cmd"), down("c"), up("c"), up("cmd")},
		},
		{
			name:     "three keys",
			keys:     []string{"cmd", "shift", "3"},
			expected: []schemas.KeyEventData{down("cmd"), down("shift"), down("3"), up("3"), up("shift"), up("cmd")},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			dev := mocks.NewRecordingDevice(100, 100)
			s := newTestSynth(t, dev)
			require.NoError(t, s.PressCombo(context.Background(), tc.keys))
			if diff := cmp.Diff(tc.expected, dev.KeyEvents); diff != "" {
				t.Errorf("combo events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPressCombo_KeyCount(t *testing.T) {
	dev := mocks.NewRecordingDevice(100, 100)
	s := newTestSynth(t, dev)

	assert.Error(t, s.PressCombo(context.Background(), []string{"cmd"}))
	assert.Error(t, s.PressCombo(context.Background(), []string{"a", "b", "c", "d"}))
	assert.Empty(t, dev.KeyEvents)
}

// A failed key-down releases everything already held, last first.
func TestPressCombo_FailedDownReleasesHeld(t *testing.T) {
	dev := mocks.NewRecordingDevice(100, 100)
	boom := errors.New("key not mapped")
	dev.MockDispatchKeyEvent = func(ctx context.Context, data schemas.KeyEventData) error {
		if data.Type == schemas.KeyDown && data.Key == "3" {
			return boom
		}
		return dev.DefaultDispatchKeyEvent(ctx, data)
	}
	s := newTestSynth(t, dev)

	err := s.PressCombo(context.Background(), []string{"cmd", "shift", "3"})
	require.ErrorIs(t, err, boom)

	expected := []schemas.KeyEventData{down("cmd"), down("shift"), up("shift"), up("cmd")}
	assert.Equal(t, expected, dev.KeyEvents)
}

func TestTypeText_UnicodeOrder(t *testing.T) {
	dev := mocks.NewRecordingDevice(100, 100)
	s := newTestSynth(t, dev)

	n, err := s.TypeText(context.Background(), "a€😀中")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var got []string
	for i := 0; i < len(dev.KeyEvents); i += 2 {
		assert.Equal(t, schemas.KeyDown, dev.KeyEvents[i].Type)
		assert.Equal(t, schemas.KeyUp, dev.KeyEvents[i+1].Type)
		assert.Equal(t, dev.KeyEvents[i].Text, dev.KeyEvents[i+1].Text)
		assert.Empty(t, dev.KeyEvents[i].Key)
		got = append(got, dev.KeyEvents[i].Text)
	}
	assert.Equal(t, []string{"a", "€", "😀", "中"}, got)
	assert.Empty(t, dev.Sleeps, "no interval by default")
}

func TestTypeText_ComposesDecomposedInput(t *testing.T) {
	dev := mocks.NewRecordingDevice(100, 100)
	s := newTestSynth(t, dev)

	// "e" followed by a combining acute accent becomes a single "é".
	n, err := s.TypeText(context.Background(), "e\u0301")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, dev.KeyEvents, 2)
	assert.Equal(t, "\u00e9", dev.KeyEvents[0].Text)
}

func TestTypeText_IntervalAndFailure(t *testing.T) {
	dev := mocks.NewRecordingDevice(100, 100)
	timing := synth.DefaultTiming()
	timing.TypeInterval = 5 * time.Millisecond
	s, err := synth.New(dev, timing, zaptest.NewLogger(t))
	require.NoError(t, err)

	n, err := s.TypeText(context.Background(), "hey")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, dev.Sleeps, 3)

	dev2 := mocks.NewRecordingDevice(100, 100)
	dev2.ReturnErr = errors.New("secure input enabled")
	dev2.FailOnCall = 3
	s2 := newTestSynth(t, dev2)
	n, err = s2.TypeText(context.Background(), "hey")
	require.Error(t, err)
	assert.Equal(t, 1, n)
}
