// Package geometry resolves model-supplied positions into absolute screen pixels.
package geometry

import (
	"errors"
	"fmt"
	"math"

	json "github.com/json-iterator/go"
)

// ErrNonFinite is returned for positions containing NaN or infinite components.
var ErrNonFinite = errors.New("position component is not finite")

// Position is a raw coordinate pair as emitted by a model. It is either
// absolute pixels or normalized on a 0-1000 scale; the Normalizer decides.
// On the wire it is a two element array: [x, y].
type Position struct {
	X float64
	Y float64
}

// Pos is shorthand for building a Position.
func Pos(x, y float64) Position { return Position{X: x, Y: y} }

// MarshalJSON encodes the position as [x, y].
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a two element numeric array.
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("position must be a [x, y] number pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("position must have exactly 2 components, got %d", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// Finite reports whether both components are real numbers.
func (p Position) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Position) String() string {
	return fmt.Sprintf("[%g, %g]", p.X, p.Y)
}
