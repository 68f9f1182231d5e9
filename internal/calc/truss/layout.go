package truss

import (
	"fmt"
	"math"

	"Roofline/internal/calc/footprint"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

// Line is a named truss reference line. Its direction defines the truss's
// local frame.
type Line struct {
	Name  string
	Left  geom.Point2D
	Right geom.Point2D
}

// CommonAlongY places a truss spanning south to north at offset from the
// footprint's west wall.
func CommonAlongY(name string, f footprint.Footprint, offset float64) Line {
	x := f.SW.X + offset
	return Line{Name: name, Left: geom.P2(x, f.SW.Y), Right: geom.P2(x, f.NW.Y)}
}

// CommonAlongX places a truss spanning west to east at offset south of the
// footprint's north wall.
func CommonAlongX(name string, f footprint.Footprint, offset float64) Line {
	y := f.NW.Y - offset
	return Line{Name: name, Left: geom.P2(f.SW.X, y), Right: geom.P2(f.SE.X, y)}
}

// CommonsAlongY places one truss per offset, named prefix 1, prefix 2, ...
// starting at first.
func CommonsAlongY(prefix string, first int, f footprint.Footprint, offsets []float64) []Line {
	out := make([]Line, len(offsets))
	for i, o := range offsets {
		out[i] = CommonAlongY(fmt.Sprintf("%s %d", prefix, first+i), f, o)
	}
	return out
}

type ValleyInput struct {
	Prefix     string
	RidgeLeft  float64 // x of the wing's west wall
	RidgeRight float64 // x of the wing's east wall
	SpanEdge   float64 // y of the wall the wing abuts
	Span       float64
	Step       float64
	Clearance  float64
}

// ValleyInputFor derives the valley parameters from a cross-gable.
func ValleyInputFor(c footprint.Composite, step, clearance float64) ValleyInput {
	return ValleyInput{
		Prefix:     "Valley",
		RidgeLeft:  c.Wing.SW.X,
		RidgeRight: c.Wing.SE.X,
		SpanEdge:   c.ValleyEdgeY(),
		Span:       c.Main.Span,
		Step:       step,
		Clearance:  clearance,
	}
}

// ValleyCount is the number of lines Valleys produces. When span/2-1 is an
// exact multiple of step the last line sits on that limit.
func ValleyCount(span, step float64) int {
	if step <= 0 || span/2-1 <= 0 {
		return 0
	}
	return int(math.Floor((span/2-1)/step)) + 1
}

// Valleys steps south from the span edge, shrinking each line symmetrically
// about the wing ridge as it goes.
func Valleys(in ValleyInput) ([]Line, error) {
	if in.Step <= 0 {
		return nil, apperrors.Invalid("valley.step", "must be positive")
	}
	if in.Span <= 2 {
		return nil, apperrors.Invalid("valley.span", "must exceed 2")
	}
	if in.Clearance < 0 {
		return nil, apperrors.Invalid("valley.clearance", "must not be negative")
	}
	prefix := in.Prefix
	if prefix == "" {
		prefix = "Valley"
	}
	n := ValleyCount(in.Span, in.Step)
	out := make([]Line, 0, n)
	for i := 0; i < n; i++ {
		offset := float64(i) * in.Step
		left := in.RidgeLeft + offset + in.Clearance
		right := in.RidgeRight - offset - in.Clearance
		if right <= left {
			return nil, apperrors.Wrap(ErrDegenerateLine, apperrors.CategoryValidation, "valley").
				WithContext("offset", offset).
				WithContext("left", left).
				WithContext("right", right)
		}
		y := in.SpanEdge - offset
		out = append(out, Line{
			Name:  fmt.Sprintf("%s %d", prefix, len(out)+1),
			Left:  geom.P2(left, y),
			Right: geom.P2(right, y),
		})
	}
	return out, nil
}
