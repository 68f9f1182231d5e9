package roof

import (
	"fmt"

	"Roofline/internal/calc/footprint"
)

type Strategy string

const (
	StrategySolid    Strategy = "solid"
	StrategyFaces    Strategy = "faces"
	StrategyPolygons Strategy = "polygons"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategySolid, StrategyFaces, StrategyPolygons:
		return Strategy(s), nil
	case "":
		return StrategySolid, nil
	}
	return "", fmt.Errorf("unknown roof strategy %q", s)
}

// Geometry is one of SolidGeometry, FacesGeometry or PolygonsGeometry.
type Geometry interface {
	Strategy() Strategy
	// Keys names the entities the geometry creates, in submission order.
	Keys() []string
	Validate(eps float64) error
	sealed()
}

type SolidGeometry struct {
	Containers []Container
}

// FacesGeometry planes share edges; the service infers adjacency and support.
type FacesGeometry struct {
	Planes []Loop
}

// PolygonsGeometry planes are independent; cuts live on the truss envelopes.
type PolygonsGeometry struct {
	Planes []Loop
}

func (SolidGeometry) Strategy() Strategy    { return StrategySolid }
func (FacesGeometry) Strategy() Strategy    { return StrategyFaces }
func (PolygonsGeometry) Strategy() Strategy { return StrategyPolygons }

func (SolidGeometry) sealed()    {}
func (FacesGeometry) sealed()    {}
func (PolygonsGeometry) sealed() {}

func (g SolidGeometry) Keys() []string {
	out := make([]string, len(g.Containers))
	for i, c := range g.Containers {
		out[i] = c.Name
	}
	return out
}

func (g FacesGeometry) Keys() []string    { return loopKeys(g.Planes) }
func (g PolygonsGeometry) Keys() []string { return loopKeys(g.Planes) }

func loopKeys(loops []Loop) []string {
	out := make([]string, len(loops))
	for i, l := range loops {
		out[i] = l.Key
	}
	return out
}

func (g SolidGeometry) Validate(eps float64) error {
	for _, c := range g.Containers {
		if err := Validate(c, eps); err != nil {
			return err
		}
	}
	return nil
}

func (g FacesGeometry) Validate(eps float64) error {
	return ValidateLoops(g.Planes, eps, true)
}

func (g PolygonsGeometry) Validate(eps float64) error {
	return ValidateLoops(g.Planes, eps, false)
}

// ForGable builds the roof of a single gable mass.
func ForGable(s Strategy, f footprint.Footprint) Geometry {
	switch s {
	case StrategyFaces:
		return FacesGeometry{Planes: Faces(f)}
	case StrategyPolygons:
		return PolygonsGeometry{Planes: Faces(f)}
	default:
		return SolidGeometry{Containers: []Container{Solid(f.Name, f)}}
	}
}

// ForCrossGable builds the roofs of both masses. Each mass stays separate.
func ForCrossGable(s Strategy, c footprint.Composite) Geometry {
	switch s {
	case StrategyFaces:
		return FacesGeometry{Planes: CrossGableFaces(c)}
	case StrategyPolygons:
		return PolygonsGeometry{Planes: append(Faces(c.Main), WingFaces(c)...)}
	default:
		return SolidGeometry{Containers: []Container{Solid(c.Main.Name, c.Main), WingSolid(c.Wing.Name, c)}}
	}
}
