package geometry_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/geometry"
)

var screen2000x1000 = schemas.Size{Width: 2000, Height: 1000}

// Property: both components > 1 are returned untouched.
func TestNormalize_AbsolutePixelsUnchanged(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("pixel pairs pass through", prop.ForAll(
		func(x, y, w, h float64) bool {
			got, err := geometry.Normalize(geometry.Pos(x, y), schemas.Size{Width: w, Height: h})
			return err == nil && got.X == x && got.Y == y
		},
		gen.Float64Range(1.0001, 10000),
		gen.Float64Range(1.0001, 10000),
		gen.Float64Range(1, 8000),
		gen.Float64Range(1, 8000),
	))

	properties.TestingRun(t)
}

// Property: both components in [0,1] are scaled as value/1000 * dimension.
func TestNormalize_UnitRangeScaled(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("normalized pairs are scaled per axis", prop.ForAll(
		func(x, y, w, h float64) bool {
			got, err := geometry.Normalize(geometry.Pos(x, y), schemas.Size{Width: w, Height: h})
			return err == nil && got.X == x/1000*w && got.Y == y/1000*h
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(1, 8000),
		gen.Float64Range(1, 8000),
	))

	properties.TestingRun(t)
}

func TestNormalize_JointTest(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		strategy geometry.Strategy
		pos      geometry.Position
		expected schemas.Point
	}{
		{"pixel_first/absolute", geometry.PixelFirst, geometry.Pos(500, 500), schemas.Point{X: 500, Y: 500}},
		// One component <= 1 drags the whole pair into the normalized branch.
		{"pixel_first/asymmetric x", geometry.PixelFirst, geometry.Pos(500, 1), schemas.Point{X: 1000, Y: 1}},
		{"pixel_first/asymmetric y", geometry.PixelFirst, geometry.Pos(0.5, 800), schemas.Point{X: 1, Y: 800}},
		{"pixel_first/origin", geometry.PixelFirst, geometry.Pos(0, 0), schemas.Point{X: 0, Y: 0}},
		{"thousandths/both above one", geometry.Thousandths, geometry.Pos(500, 500), schemas.Point{X: 1000, Y: 500}},
		{"thousandths/fraction", geometry.Thousandths, geometry.Pos(0.25, 0.5), schemas.Point{X: 500, Y: 500}},
		{"thousandths/asymmetric", geometry.Thousandths, geometry.Pos(500, 1), schemas.Point{X: 1000000, Y: 1000}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := geometry.NewNormalizer(tc.strategy).Resolve(tc.pos, screen2000x1000)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected.X, got.X, 1e-9)
			assert.InDelta(t, tc.expected.Y, got.Y, 1e-9)
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Parallel()

	_, err := geometry.Normalize(geometry.Pos(math.NaN(), 3), screen2000x1000)
	assert.ErrorIs(t, err, geometry.ErrNonFinite)

	_, err = geometry.Normalize(geometry.Pos(math.Inf(1), 3), screen2000x1000)
	assert.ErrorIs(t, err, geometry.ErrNonFinite)

	_, err = geometry.Normalize(geometry.Pos(10, 10), schemas.Size{})
	assert.Error(t, err)
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	s, err := geometry.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, geometry.Thousandths, s)

	s, err = geometry.ParseStrategy(" Pixel_First ")
	require.NoError(t, err)
	assert.Equal(t, geometry.PixelFirst, s)

	s, err = geometry.ParseStrategy(" Thousandths ")
	require.NoError(t, err)
	assert.Equal(t, geometry.Thousandths, s)

	_, err = geometry.ParseStrategy("per_axis")
	assert.Error(t, err)

	assert.Equal(t, geometry.Thousandths, geometry.NewNormalizer("bogus").Strategy())
}

func TestPosition_JSON(t *testing.T) {
	t.Parallel()

	var p geometry.Position
	require.NoError(t, json.Unmarshal([]byte(`[12.5, 40]`), &p))
	assert.Equal(t, geometry.Pos(12.5, 40), p)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[12.5, 40]`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &p))
}

func TestResolvePair(t *testing.T) {
	t.Parallel()
	square := schemas.Size{Width: 1000, Height: 1000}

	from, to, err := geometry.NewNormalizer(geometry.PixelFirst).ResolvePair(geometry.Pos(0, 0), geometry.Pos(1000, 1000), square)
	require.NoError(t, err)
	assert.Equal(t, schemas.Point{X: 0, Y: 0}, from)
	assert.Equal(t, schemas.Point{X: 1000, Y: 1000}, to)

	// Legacy joint test: every component > 1 selects the 0-1000 scale.
	from, to, err = geometry.NewNormalizer(geometry.Thousandths).ResolvePair(geometry.Pos(250, 250), geometry.Pos(750, 500), square)
	require.NoError(t, err)
	assert.Equal(t, schemas.Point{X: 250, Y: 250}, from)
	assert.Equal(t, schemas.Point{X: 750, Y: 500}, to)

	// One endpoint at the origin drags both onto the fractional branch.
	from, to, err = geometry.NewNormalizer(geometry.Thousandths).ResolvePair(geometry.Pos(0, 0), geometry.Pos(0.5, 0.5), square)
	require.NoError(t, err)
	assert.Equal(t, schemas.Point{X: 0, Y: 0}, from)
	assert.Equal(t, schemas.Point{X: 500, Y: 500}, to)

	_, _, err = geometry.NewNormalizer(geometry.Thousandths).ResolvePair(geometry.Pos(0, 0), geometry.Pos(math.NaN(), 1), square)
	assert.ErrorIs(t, err, geometry.ErrNonFinite)
}
