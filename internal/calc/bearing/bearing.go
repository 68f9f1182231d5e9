package bearing

import (
	"fmt"

	"Roofline/internal/calc/footprint"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

// Envelope is a load-bearing wall segment along the reference line
// LeftPoint -> RightPoint.
type Envelope struct {
	GUID          string             `json:"guid,omitempty"`
	Name          string             `json:"name"`
	LeftPoint     geom.Point2D       `json:"leftPoint"`
	RightPoint    geom.Point2D       `json:"rightPoint"`
	Thickness     float64            `json:"thickness"`
	Top           float64            `json:"top"`
	Bottom        float64            `json:"bottom"`
	Justification geom.Justification `json:"justification"`
	NonStructural bool               `json:"nonStructural,omitempty"`
}

type Input struct {
	Thickness     float64            `json:"thickness" yaml:"thickness"`
	Bottom        float64            `json:"bottom" yaml:"bottom"`
	Justification geom.Justification `json:"justification" yaml:"justification"`
	// Prefix is prepended to the cardinal edge names, e.g. "Main South".
	Prefix string `json:"prefix" yaml:"prefix"`
}

func (in Input) withDefaults() Input {
	if in.Thickness == 0 {
		in.Thickness = 3.5
	}
	if in.Justification == "" {
		in.Justification = geom.Front
	}
	return in
}

// Perimeter returns one envelope per footprint edge, walking the corners
// counter-clockwise so that Front justification keeps the wall inside.
func Perimeter(f footprint.Footprint, in Input) []Envelope {
	return edges(f, in, "South", "East", "North", "West")
}

// WingPerimeter returns the wing envelopes, skipping the south edge that sits
// on the main north wall.
func WingPerimeter(c footprint.Composite, in Input) []Envelope {
	return edges(c.Wing, in, "", "East", "North", "West")
}

func edges(f footprint.Footprint, in Input, names ...string) []Envelope {
	in = in.withDefaults()
	corners := f.Corners()
	out := make([]Envelope, 0, len(corners))
	for i, name := range names {
		if name == "" {
			continue
		}
		if in.Prefix != "" {
			name = in.Prefix + " " + name
		}
		out = append(out, Envelope{
			Name:          name,
			LeftPoint:     corners[i],
			RightPoint:    corners[(i+1)%len(corners)],
			Thickness:     in.Thickness,
			Top:           f.WallHeight,
			Bottom:        in.Bottom,
			Justification: in.Justification,
		})
	}
	return out
}

// Validate checks an envelope before it is submitted.
func Validate(e Envelope) error {
	if e.Name == "" {
		return apperrors.Invalid("bearing.name", "must not be empty")
	}
	field := func(f string) string { return fmt.Sprintf("bearing[%s].%s", e.Name, f) }
	if e.LeftPoint == e.RightPoint {
		return apperrors.Invalid(field("rightPoint"), "reference line has zero length")
	}
	if e.Thickness <= 0 {
		return apperrors.Invalid(field("thickness"), "must be positive")
	}
	if e.Top <= e.Bottom {
		return apperrors.Invalid(field("top"), "must be above bottom")
	}
	if !e.Justification.Valid() {
		return apperrors.Invalid(field("justification"), fmt.Sprintf("unknown justification %q", e.Justification))
	}
	return nil
}
