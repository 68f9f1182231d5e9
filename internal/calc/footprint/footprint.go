package footprint

import (
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

type Input struct {
	Name         string  `json:"name" yaml:"name"`
	LengthIn     float64 `json:"length_in" yaml:"length_in"`
	SpanIn       float64 `json:"span_in" yaml:"span_in"`
	WallHeightIn float64 `json:"wall_height_in" yaml:"wall_height_in"`
	HeelHeightIn float64 `json:"heel_height_in" yaml:"heel_height_in"`
	RiseIn       float64 `json:"rise_in" yaml:"rise_in"` // takes precedence over Pitch
	Pitch        float64 `json:"pitch" yaml:"pitch"`     // x/12
}

// Footprint is a rectangular building mass. Length runs along x, span along y.
// All downstream builders read elevations from here.
type Footprint struct {
	Name          string
	Length        float64
	Span          float64
	WallHeight    float64
	HeelHeight    float64
	Rise          float64
	HeelElevation float64
	PeakElevation float64

	SW geom.Point2D
	SE geom.Point2D
	NE geom.Point2D
	NW geom.Point2D
}

func Calculate(in Input) (Footprint, error) {
	if in.LengthIn <= 0 {
		return Footprint{}, apperrors.Invalid("length_in", "must be positive")
	}
	if in.SpanIn <= 0 {
		return Footprint{}, apperrors.Invalid("span_in", "must be positive")
	}
	if in.WallHeightIn <= 0 {
		return Footprint{}, apperrors.Invalid("wall_height_in", "must be positive")
	}
	if in.HeelHeightIn < 0 {
		return Footprint{}, apperrors.Invalid("heel_height_in", "must not be negative")
	}
	rise := in.RiseIn
	if rise == 0 {
		rise = geom.RiseFromPitch(in.Pitch, in.SpanIn)
	}
	if rise <= 0 {
		return Footprint{}, apperrors.Invalid("rise_in", "rise or pitch must be positive")
	}

	name := in.Name
	if name == "" {
		name = "Main"
	}
	return rect(name, 0, 0, in.LengthIn, in.SpanIn, in.WallHeightIn, in.HeelHeightIn, rise), nil
}

func rect(name string, x0, y0, dx, dy, wall, heel, rise float64) Footprint {
	return Footprint{
		Name:          name,
		Length:        dx,
		Span:          dy,
		WallHeight:    wall,
		HeelHeight:    heel,
		Rise:          rise,
		HeelElevation: geom.HeelElevation(wall, heel),
		PeakElevation: geom.PeakElevation(wall, rise, heel),
		SW:            geom.P2(x0, y0),
		SE:            geom.P2(x0+dx, y0),
		NE:            geom.P2(x0+dx, y0+dy),
		NW:            geom.P2(x0, y0+dy),
	}
}

// RidgeY is the y of the ridge line for a mass spanning along y.
func (f Footprint) RidgeY() float64 {
	return (f.SW.Y + f.NW.Y) / 2
}

// RidgeX is the x of the ridge line for a mass spanning along x.
func (f Footprint) RidgeX() float64 {
	return (f.SW.X + f.SE.X) / 2
}

// Corners returns the corners counter-clockwise from the south-west.
func (f Footprint) Corners() []geom.Point2D {
	return []geom.Point2D{f.SW, f.SE, f.NE, f.NW}
}
