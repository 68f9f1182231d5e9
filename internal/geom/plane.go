package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const degenerateArea = 1e-12

func HorizontalPlane(z float64) Plane3D {
	return Plane3D{C: 1, D: z}
}

func (pl Plane3D) Normal() mgl64.Vec3 {
	return mgl64.Vec3{pl.A, pl.B, pl.C}
}

// Distance is the signed distance of p from the plane.
func (pl Plane3D) Distance(p Point3D) float64 {
	n := pl.Normal()
	l := n.Len()
	if l == 0 {
		return math.Inf(1)
	}
	return (n.Dot(p.Vec()) - pl.D) / l
}

// PlaneThrough returns the plane through three points, normalised so that
// (a, b, c) is counter-clockwise when seen from the side the normal points to.
// ok is false for collinear points.
func PlaneThrough(a, b, c Point3D) (Plane3D, bool) {
	n := b.Vec().Sub(a.Vec()).Cross(c.Vec().Sub(a.Vec()))
	if n.Len() < degenerateArea {
		return Plane3D{}, false
	}
	n = n.Normalize()
	return Plane3D{A: n[0], B: n[1], C: n[2], D: n.Dot(a.Vec())}, true
}

// Normal returns the area-weighted normal of a closed loop (Newell's method).
// Its length is twice the loop's area.
func Normal(loop []Point3D) mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range loop {
		cur := loop[i]
		next := loop[(i+1)%len(loop)]
		n[0] += (cur.Y - next.Y) * (cur.Z + next.Z)
		n[1] += (cur.Z - next.Z) * (cur.X + next.X)
		n[2] += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// BestFitPlane returns the plane through the loop centroid with the loop's
// Newell normal. ok is false for degenerate loops.
func BestFitPlane(loop []Point3D) (Plane3D, bool) {
	if len(loop) < 3 {
		return Plane3D{}, false
	}
	n := Normal(loop)
	if n.Len() < degenerateArea {
		return Plane3D{}, false
	}
	n = n.Normalize()
	var c mgl64.Vec3
	for _, p := range loop {
		c = c.Add(p.Vec())
	}
	c = c.Mul(1 / float64(len(loop)))
	return Plane3D{A: n[0], B: n[1], C: n[2], D: n.Dot(c)}, true
}

// Planar reports whether every point of loop lies within eps of its best-fit plane.
func Planar(loop []Point3D, eps float64) bool {
	pl, ok := BestFitPlane(loop)
	if !ok {
		return false
	}
	for _, p := range loop {
		if math.Abs(pl.Distance(p)) > eps {
			return false
		}
	}
	return true
}
