package roof

import (
	"fmt"
	"math"

	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/footprint"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

// Loop is one roof plane given as an ordered vertex loop. Key is a local
// name used to find the plane again once the service has echoed it back.
type Loop struct {
	Key    string
	Points []geom.Point3D
}

// Faces returns the two sloped planes of a gable mass, each ordered
// heel-to-peak and left-to-right so that the ridge edge is shared.
func Faces(f footprint.Footprint) []Loop {
	heel, peak, ridge := f.HeelElevation, f.PeakElevation, f.RidgeY()
	westPeak := geom.P3(f.SW.X, ridge, peak)
	eastPeak := geom.P3(f.SE.X, ridge, peak)
	return []Loop{
		{Key: f.Name + " South", Points: []geom.Point3D{f.SW.At(heel), f.SE.At(heel), eastPeak, westPeak}},
		{Key: f.Name + " North", Points: []geom.Point3D{f.NE.At(heel), f.NW.At(heel), westPeak, eastPeak}},
	}
}

// WingFaces returns the east and west planes of a cross-gable wing. Their
// south edges run down the valley lines to the main ridge.
func WingFaces(c footprint.Composite) []Loop {
	w := c.Wing
	heel, peak, ridge := w.HeelElevation, w.PeakElevation, w.RidgeX()
	southPeak := geom.P3(ridge, c.Main.RidgeY(), peak)
	northPeak := geom.P3(ridge, w.NW.Y, peak)
	return []Loop{
		{Key: w.Name + " East", Points: []geom.Point3D{w.SE.At(heel), w.NE.At(heel), northPeak, southPeak}},
		{Key: w.Name + " West", Points: []geom.Point3D{w.NW.At(heel), w.SW.At(heel), southPeak, northPeak}},
	}
}

// CrossGableFaces returns the planes of both masses so that every ridge and
// valley is a shared edge. The main north plane is split at the wing's south
// peak into North East and North West, and the main south ridge carries that
// point as an extra vertex.
func CrossGableFaces(c footprint.Composite) []Loop {
	m, w := c.Main, c.Wing
	heel, peak, ridge := m.HeelElevation, m.PeakElevation, m.RidgeY()
	westPeak := geom.P3(m.SW.X, ridge, peak)
	eastPeak := geom.P3(m.SE.X, ridge, peak)
	valley := geom.P3(w.RidgeX(), ridge, w.PeakElevation)
	loops := []Loop{
		{Key: m.Name + " South", Points: []geom.Point3D{m.SW.At(heel), m.SE.At(heel), eastPeak, valley, westPeak}},
		{Key: m.Name + " North East", Points: []geom.Point3D{m.NE.At(heel), w.SE.At(heel), valley, eastPeak}},
		{Key: m.Name + " North West", Points: []geom.Point3D{w.SW.At(heel), m.NW.At(heel), westPeak, valley}},
	}
	return append(loops, WingFaces(c)...)
}

// NorthKeys names the loops covering the main north slope of a cross-gable
// roof built with s.
func NorthKeys(s Strategy, c footprint.Composite) []string {
	if s == StrategyFaces {
		return []string{c.Main.Name + " North East", c.Main.Name + " North West"}
	}
	return []string{c.Main.Name + " North"}
}

// Adjacent records two loops sharing an edge.
type Adjacent struct {
	A, B int
	Edge [2]geom.Point3D
}

// Adjacency finds every pair of loops with an edge whose endpoints coincide
// within eps, in either direction. Pairs are ordered by (A, B).
func Adjacency(loops []Loop, eps float64) []Adjacent {
	var out []Adjacent
	for a := 0; a < len(loops); a++ {
		for b := a + 1; b < len(loops); b++ {
			if e, ok := sharedEdge(loops[a].Points, loops[b].Points, eps); ok {
				out = append(out, Adjacent{A: a, B: b, Edge: e})
			}
		}
	}
	return out
}

func sharedEdge(p, q []geom.Point3D, eps float64) ([2]geom.Point3D, bool) {
	for i := range p {
		p0, p1 := p[i], p[(i+1)%len(p)]
		for j := range q {
			q0, q1 := q[j], q[(j+1)%len(q)]
			if (geom.Coincident(p0, q0, eps) && geom.Coincident(p1, q1, eps)) ||
				(geom.Coincident(p0, q1, eps) && geom.Coincident(p1, q0, eps)) {
				return [2]geom.Point3D{p0, p1}, true
			}
		}
	}
	return [2]geom.Point3D{}, false
}

// CutsAgainst returns, for each loop, the indexes of the loops it is
// expected to be cut against.
func CutsAgainst(loops []Loop, eps float64) map[int][]int {
	out := make(map[int][]int)
	for _, adj := range Adjacency(loops, eps) {
		out[adj.A] = append(out[adj.A], adj.B)
		out[adj.B] = append(out[adj.B], adj.A)
	}
	return out
}

// SupportingBearing returns the index of the bearing envelope under the
// loop's lowest edge, or -1.
func SupportingBearing(l Loop, bearings []bearing.Envelope, eps float64) int {
	if len(l.Points) < 2 {
		return -1
	}
	low := math.Inf(1)
	for _, p := range l.Points {
		low = math.Min(low, p.Z)
	}
	for i := range l.Points {
		a, b := l.Points[i], l.Points[(i+1)%len(l.Points)]
		if math.Abs(a.Z-low) > eps || math.Abs(b.Z-low) > eps {
			continue
		}
		for bi, be := range bearings {
			if onSegment(a.XY(), be.LeftPoint, be.RightPoint, eps) &&
				onSegment(b.XY(), be.LeftPoint, be.RightPoint, eps) {
				return bi
			}
		}
	}
	return -1
}

func onSegment(p, a, b geom.Point2D, eps float64) bool {
	l := a.Distance(b)
	if l == 0 {
		return a.Distance(p) <= eps
	}
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross)/l > eps {
		return false
	}
	t := ((p.X-a.X)*(b.X-a.X) + (p.Y-a.Y)*(b.Y-a.Y)) / (l * l)
	return t >= -eps/l && t <= 1+eps/l
}

// ValidateLoops checks that every loop is a planar polygon. When shared is
// set, each loop must also share an edge with another loop, since the
// service infers adjacency from coincident vertices.
func ValidateLoops(loops []Loop, eps float64, shared bool) error {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	if len(loops) == 0 {
		return apperrors.Invalid("roof.planes", "no roof planes")
	}
	for i, l := range loops {
		field := fmt.Sprintf("roof.planes[%d]", i)
		if len(l.Points) < 3 {
			return apperrors.Wrap(ErrDegenerateFace, apperrors.CategoryValidation, field).WithContext("key", l.Key)
		}
		if !geom.Planar(l.Points, eps) {
			return apperrors.Wrap(ErrNonPlanarFace, apperrors.CategoryValidation, field).WithContext("key", l.Key)
		}
	}
	if !shared || len(loops) < 2 {
		return nil
	}
	cuts := CutsAgainst(loops, eps)
	for i, l := range loops {
		if len(cuts[i]) == 0 {
			return apperrors.Wrap(ErrIsolatedFace, apperrors.CategoryValidation, fmt.Sprintf("roof.planes[%d]", i)).
				WithContext("key", l.Key)
		}
	}
	return nil
}
