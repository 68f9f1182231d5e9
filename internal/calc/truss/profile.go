package truss

import (
	"fmt"

	"Roofline/internal/calc/footprint"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

type OverhangCut string

const (
	OverhangPlumb      OverhangCut = "Plumb"
	OverhangSquare     OverhangCut = "Square"
	OverhangHorizontal OverhangCut = "Horizontal"
)

type Overhang struct {
	Distance float64     `json:"distance"`
	CutType  OverhangCut `json:"cutType,omitempty"`
}

// Profile describes a single truss directly by its chord outlines in the
// truss's own 2D frame.
type Profile struct {
	Name              string         `json:"name"`
	TopChordPoints    []geom.Point2D `json:"topChordPoints"`
	BottomChordPoints []geom.Point2D `json:"bottomChordPoints"`
	LeftOverhang      Overhang       `json:"leftOverhang"`
	RightOverhang     Overhang       `json:"rightOverhang"`
}

// ProfileFor builds a symmetric common truss profile from a footprint: the
// top chord runs heel, peak, heel and the bottom chord spans the building.
func ProfileFor(name string, f footprint.Footprint, overhang Overhang) Profile {
	return Profile{
		Name: name,
		TopChordPoints: []geom.Point2D{
			geom.P2(0, f.HeelHeight),
			geom.P2(f.Span/2, f.HeelHeight+f.Rise),
			geom.P2(f.Span, f.HeelHeight),
		},
		BottomChordPoints: []geom.Point2D{geom.P2(0, 0), geom.P2(f.Span, 0)},
		LeftOverhang:      overhang,
		RightOverhang:     overhang,
	}
}

func ValidateProfile(p Profile) error {
	field := func(f string) string { return fmt.Sprintf("profile[%s].%s", p.Name, f) }
	if p.Name == "" {
		return apperrors.Invalid("profile.name", "must not be empty")
	}
	if len(p.TopChordPoints) < 2 {
		return apperrors.Invalid(field("topChordPoints"), "needs at least two points")
	}
	if len(p.BottomChordPoints) < 2 {
		return apperrors.Invalid(field("bottomChordPoints"), "needs at least two points")
	}
	for _, o := range []Overhang{p.LeftOverhang, p.RightOverhang} {
		if o.Distance < 0 {
			return apperrors.Invalid(field("overhang"), "distance must not be negative")
		}
		switch o.CutType {
		case "", OverhangPlumb, OverhangSquare, OverhangHorizontal:
		default:
			return apperrors.Invalid(field("overhang"), fmt.Sprintf("unknown cut type %q", o.CutType))
		}
	}
	return nil
}
