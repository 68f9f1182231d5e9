package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Feet converts feet to the inch units used everywhere else.
const Feet = 12.0

type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Segment2D struct {
	BasePoint Point2D `json:"basePoint"`
	EndPoint  Point2D `json:"endPoint"`
}

// Plane3D is the implicit plane ax + by + cz = d.
type Plane3D struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
}

// Justification is the side of a reference line a wall or truss occupies.
type Justification string

const (
	Front  Justification = "Front"
	Center Justification = "Center"
	Back   Justification = "Back"
)

func (j Justification) Valid() bool {
	switch j {
	case Front, Center, Back:
		return true
	}
	return false
}

func P2(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

func P3(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

func (p Point2D) At(z float64) Point3D {
	return Point3D{X: p.X, Y: p.Y, Z: z}
}

func (p Point3D) XY() Point2D {
	return Point2D{X: p.X, Y: p.Y}
}

func (p Point3D) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Coincident reports whether p and q are within eps of each other.
func Coincident(p, q Point3D, eps float64) bool {
	return p.Vec().Sub(q.Vec()).Len() <= eps
}

// HeelElevation is the elevation where the roof slope begins.
func HeelElevation(wallHeight, heelHeight float64) float64 {
	return wallHeight + heelHeight
}

// PeakElevation is the truss peak elevation above the ridge.
func PeakElevation(wallHeight, rise, heelHeight float64) float64 {
	return wallHeight + rise + heelHeight
}

// RiseFromPitch converts an x/12 pitch over half the span into a vertical rise.
func RiseFromPitch(pitch, span float64) float64 {
	return pitch / 12 * span / 2
}
