package footprint

import (
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

// Wing describes the upper mass of a cross-gable. Zero values default to a
// wing centred on the main length and reaching y = main length.
type Wing struct {
	Name      string  `json:"name" yaml:"name"`
	LengthIn  float64 `json:"length_in" yaml:"length_in"`
	CenterXIn float64 `json:"center_x_in" yaml:"center_x_in"`
}

// Composite is a main mass with a perpendicular wing abutting its north wall.
// The wing shares the main span, wall, heel and peak elevations.
type Composite struct {
	Main Footprint
	// Wing spans along x; its Length runs north along y.
	Wing Footprint
}

func CrossGable(main Input, wing Wing) (Composite, error) {
	m, err := Calculate(main)
	if err != nil {
		return Composite{}, err
	}
	length := wing.LengthIn
	if length == 0 {
		length = m.Length - m.Span
	}
	if length <= 0 {
		return Composite{}, apperrors.Invalid("wing.length_in", "must be positive")
	}
	cx := wing.CenterXIn
	if cx == 0 {
		cx = m.Length / 2
	}
	half := m.Span / 2
	if cx-half < m.SW.X || cx+half > m.SE.X {
		return Composite{}, apperrors.Invalid("wing.center_x_in", "wing must lie within the main length").
			WithContext("center_x_in", cx)
	}
	name := wing.Name
	if name == "" {
		name = "Upper"
	}

	y0 := m.NW.Y
	w := Footprint{
		Name:          name,
		Length:        length,
		Span:          m.Span,
		WallHeight:    m.WallHeight,
		HeelHeight:    m.HeelHeight,
		Rise:          m.Rise,
		HeelElevation: m.HeelElevation,
		PeakElevation: m.PeakElevation,
		SW:            geom.P2(cx-half, y0),
		SE:            geom.P2(cx+half, y0),
		NE:            geom.P2(cx+half, y0+length),
		NW:            geom.P2(cx-half, y0+length),
	}
	return Composite{Main: m, Wing: w}, nil
}

// ValleyEdgeY is the y where the wing meets the main north wall.
func (c Composite) ValleyEdgeY() float64 {
	return c.Main.NW.Y
}

// Outline returns the eight composite corners counter-clockwise from the
// main south-west corner.
func (c Composite) Outline() []geom.Point2D {
	return []geom.Point2D{
		c.Main.SW, c.Main.SE, c.Main.NE,
		c.Wing.SE, c.Wing.NE, c.Wing.NW, c.Wing.SW,
		c.Main.NW,
	}
}
