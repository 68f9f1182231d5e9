package roof

import (
	"errors"
	"fmt"

	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

// DefaultEpsilon is the coincidence and planarity tolerance in inches.
const DefaultEpsilon = 1e-6

var (
	ErrTooFewVertices      = errors.New("solid needs at least four vertices")
	ErrDegenerateFace      = errors.New("face loop needs at least three distinct indices")
	ErrIndexOutOfRange     = errors.New("face index out of range")
	ErrOpenEdge            = errors.New("edge is not shared by exactly two faces")
	ErrInconsistentWinding = errors.New("faces are not consistently wound")
	ErrNonPlanarFace       = errors.New("face is not planar")
	ErrInvertedSolid       = errors.New("faces wind inward")
	ErrIsolatedFace        = errors.New("face shares no edge with another face")
)

type edge struct{ a, b int }

func undirected(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

func invalid(c Container, cause error, kv ...any) error {
	e := apperrors.Wrap(cause, apperrors.CategoryValidation, fmt.Sprintf("roof container %q", c.Name))
	for i := 0; i+1 < len(kv); i += 2 {
		e.WithContext(kv[i].(string), kv[i+1])
	}
	return e
}

// loops returns every index loop of a face, outer first.
func (f Face) loops() [][]int {
	return append([][]int{f.Outer}, f.Inner...)
}

// Validate checks that c is a closed, consistently and outward wound
// polyhedron with planar faces.
func Validate(c Container, eps float64) error {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	sd := c.SolidData
	n := len(sd.Vertices)
	if n < 4 {
		return invalid(c, ErrTooFewVertices, "vertices", n)
	}

	for fi, f := range sd.Faces {
		for _, loop := range f.loops() {
			if len(loop) < 3 {
				return invalid(c, ErrDegenerateFace, "face", fi)
			}
			seen := make(map[int]bool, len(loop))
			for _, idx := range loop {
				if idx < 0 || idx >= n {
					return invalid(c, ErrIndexOutOfRange, "face", fi, "index", idx, "vertices", n)
				}
				if seen[idx] {
					return invalid(c, ErrDegenerateFace, "face", fi, "index", idx)
				}
				seen[idx] = true
			}
		}
	}

	shared := make(map[edge]int)
	directed := make(map[edge]int)
	for _, f := range sd.Faces {
		for _, loop := range f.loops() {
			for i := range loop {
				a, b := loop[i], loop[(i+1)%len(loop)]
				shared[undirected(a, b)]++
				directed[edge{a, b}]++
			}
		}
	}
	for fi, f := range sd.Faces {
		for _, loop := range f.loops() {
			for i := range loop {
				a, b := loop[i], loop[(i+1)%len(loop)]
				if k := shared[undirected(a, b)]; k != 2 {
					return invalid(c, ErrOpenEdge, "face", fi, "edge", [2]int{a, b}, "faces", k)
				}
				if directed[edge{a, b}] != 1 || directed[edge{b, a}] != 1 {
					return invalid(c, ErrInconsistentWinding, "face", fi, "edge", [2]int{a, b})
				}
			}
		}
	}

	var volume float64
	for fi, f := range sd.Faces {
		for _, loop := range f.loops() {
			pts := points(sd.Vertices, loop)
			if !geom.Planar(pts, eps) {
				return invalid(c, ErrNonPlanarFace, "face", fi)
			}
			volume += geom.Normal(pts).Dot(pts[0].Vec())
		}
	}
	if volume/6 <= 0 {
		return invalid(c, ErrInvertedSolid, "volume", volume/6)
	}
	return nil
}

// Volume returns the enclosed volume of a valid container.
func Volume(c Container) float64 {
	var v float64
	for _, f := range c.SolidData.Faces {
		for _, loop := range f.loops() {
			pts := points(c.SolidData.Vertices, loop)
			v += geom.Normal(pts).Dot(pts[0].Vec())
		}
	}
	return v / 6
}

func points(vertices []geom.Point3D, loop []int) []geom.Point3D {
	out := make([]geom.Point3D, len(loop))
	for i, idx := range loop {
		out[i] = vertices[idx]
	}
	return out
}
