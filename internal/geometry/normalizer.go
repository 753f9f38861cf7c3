package geometry

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// Strategy selects how a raw Position maps onto the display.
type Strategy string

const (
	// PixelFirst: both components > 1 means absolute pixels, anything else is
	// a 0-1000 normalized pair scaled by value/1000 * dimension.
	PixelFirst Strategy = "pixel_first"
	// Thousandths mirrors the legacy runtime: both components > 1 means a
	// 0-1000 normalized pair, otherwise the pair is a 0-1 fraction of the
	// display. Absolute pixels are never accepted.
	Thousandths Strategy = "thousandths"
)

// ParseStrategy accepts the config spelling of a strategy. Empty selects
// Thousandths, the convention planning models are prompted with.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case PixelFirst:
		return PixelFirst, nil
	case "", Thousandths:
		return Thousandths, nil
	default:
		return "", fmt.Errorf("unknown coordinate strategy %q (want %q or %q)", s, PixelFirst, Thousandths)
	}
}

// Normalizer is a pure mapping from raw positions to pixels.
type Normalizer struct {
	strategy Strategy
}

// NewNormalizer returns a Normalizer for the given strategy. An unknown
// strategy falls back to Thousandths; callers validate config beforehand.
func NewNormalizer(strategy Strategy) Normalizer {
	if strategy != PixelFirst {
		strategy = Thousandths
	}
	return Normalizer{strategy: strategy}
}

// Strategy returns the active strategy.
func (n Normalizer) Strategy() Strategy { return n.strategy }

// Resolve maps pos onto a display of the given size. The absolute/normalized
// decision is made jointly for the pair, never per axis.
func (n Normalizer) Resolve(pos Position, screen schemas.Size) (schemas.Point, error) {
	if !pos.Finite() {
		return schemas.Point{}, fmt.Errorf("%w: %s", ErrNonFinite, pos)
	}
	if !screen.Valid() {
		return schemas.Point{}, fmt.Errorf("invalid screen size %.0fx%.0f", screen.Width, screen.Height)
	}

	bothAboveOne := pos.X > 1 && pos.Y > 1

	switch n.strategy {
	case Thousandths:
		if bothAboveOne {
			return scale(pos, screen, 1000), nil
		}
		return scale(pos, screen, 1), nil
	default:
		if bothAboveOne {
			return schemas.Point{X: pos.X, Y: pos.Y}, nil
		}
		return scale(pos, screen, 1000), nil
	}
}

// ResolvePair maps the two endpoints of a drag. PixelFirst resolves each
// endpoint on its own. Thousandths keeps the legacy behaviour of testing all
// four components together, so one small component sends both endpoints
// down the fractional branch.
func (n Normalizer) ResolvePair(a, b Position, screen schemas.Size) (schemas.Point, schemas.Point, error) {
	if n.strategy != Thousandths {
		pa, err := n.Resolve(a, screen)
		if err != nil {
			return schemas.Point{}, schemas.Point{}, err
		}
		pb, err := n.Resolve(b, screen)
		if err != nil {
			return schemas.Point{}, schemas.Point{}, err
		}
		return pa, pb, nil
	}

	if !a.Finite() || !b.Finite() {
		return schemas.Point{}, schemas.Point{}, fmt.Errorf("%w: %s -> %s", ErrNonFinite, a, b)
	}
	if !screen.Valid() {
		return schemas.Point{}, schemas.Point{}, fmt.Errorf("invalid screen size %.0fx%.0f", screen.Width, screen.Height)
	}
	divisor := 1.0
	if a.X > 1 && a.Y > 1 && b.X > 1 && b.Y > 1 {
		divisor = 1000
	}
	return scale(a, screen, divisor), scale(b, screen, divisor), nil
}

// Normalize applies the PixelFirst rule.
func Normalize(pos Position, screen schemas.Size) (schemas.Point, error) {
	return NewNormalizer(PixelFirst).Resolve(pos, screen)
}

func scale(pos Position, screen schemas.Size, divisor float64) schemas.Point {
	return schemas.Point{
		X: pos.X / divisor * screen.Width,
		Y: pos.Y / divisor * screen.Height,
	}
}
