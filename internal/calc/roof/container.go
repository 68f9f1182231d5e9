package roof

import (
	"Roofline/internal/calc/footprint"
	"Roofline/internal/geom"
)

// Container is a closed polyhedron describing one roof mass.
type Container struct {
	GUID      string    `json:"guid,omitempty"`
	Name      string    `json:"name"`
	SolidData SolidData `json:"solidData"`
}

type SolidData struct {
	Vertices []geom.Point3D `json:"vertices"`
	Faces    []Face         `json:"faces"`
}

// Face is an outer index loop, counter-clockwise seen from outside, with
// optional inner loops describing holes.
type Face struct {
	Outer []int   `json:"outer"`
	Inner [][]int `json:"inner,omitempty"`
}

func face(idx ...int) Face {
	return Face{Outer: idx}
}

// Solid builds the container for a mass spanning along y with gable ends on
// the west and east walls. A zero heel height drops the heel strips.
func Solid(name string, f footprint.Footprint) Container {
	wall, heel, peak := f.WallHeight, f.HeelElevation, f.PeakElevation
	ridge := f.RidgeY()
	base := []geom.Point3D{f.SW.At(wall), f.SE.At(wall), f.NE.At(wall), f.NW.At(wall)}
	westPeak := geom.P3(f.SW.X, ridge, peak)
	eastPeak := geom.P3(f.SE.X, ridge, peak)

	if f.HeelHeight == 0 {
		return Container{Name: name, SolidData: SolidData{
			Vertices: append(base, westPeak, eastPeak),
			Faces: []Face{
				face(0, 3, 2, 1), // base
				face(0, 4, 3),    // west gable
				face(0, 1, 5, 4), // south roof
				face(1, 2, 5),    // east gable
				face(2, 3, 4, 5), // north roof
			},
		}}
	}

	vertices := append(base,
		f.SW.At(heel), f.SE.At(heel), f.NE.At(heel), f.NW.At(heel),
		westPeak, eastPeak,
	)
	return Container{Name: name, SolidData: SolidData{
		Vertices: vertices,
		Faces: []Face{
			face(0, 3, 2, 1),    // base
			face(0, 4, 8, 7, 3), // west gable
			face(0, 1, 5, 4),    // south heel
			face(4, 5, 9, 8),    // south roof
			face(1, 2, 6, 9, 5), // east gable
			face(2, 3, 7, 6),    // north heel
			face(6, 7, 8, 9),    // north roof
		},
	}}
}

// WingSolid builds the upper mass of a cross-gable. Its south face is the
// valley triangle whose apex sits on the main ridge.
func WingSolid(name string, c footprint.Composite) Container {
	w := c.Wing
	wall, heel, peak := w.WallHeight, w.HeelElevation, w.PeakElevation
	ridge := w.RidgeX()
	base := []geom.Point3D{w.SW.At(wall), w.SE.At(wall), w.NE.At(wall), w.NW.At(wall)}
	southPeak := geom.P3(ridge, c.Main.RidgeY(), peak)
	northPeak := geom.P3(ridge, w.NW.Y, peak)

	if w.HeelHeight == 0 {
		return Container{Name: name, SolidData: SolidData{
			Vertices: append(base, southPeak, northPeak),
			Faces: []Face{
				face(0, 3, 2, 1), // base
				face(0, 1, 4),    // south valley
				face(1, 2, 5, 4), // east roof
				face(2, 3, 5),    // north gable
				face(3, 0, 4, 5), // west roof
			},
		}}
	}

	vertices := append(base,
		w.SW.At(heel), w.SE.At(heel), w.NE.At(heel), w.NW.At(heel),
		southPeak, northPeak,
	)
	return Container{Name: name, SolidData: SolidData{
		Vertices: vertices,
		Faces: []Face{
			face(0, 3, 2, 1),    // base
			face(0, 1, 5, 4),    // south heel
			face(4, 5, 8),       // south valley
			face(1, 2, 6, 5),    // east heel
			face(5, 6, 9, 8),    // east roof
			face(2, 3, 7, 9, 6), // north gable
			face(3, 0, 4, 7),    // west heel
			face(7, 4, 8, 9),    // west roof
		},
	}}
}

// Loop returns the vertices of a face's outer loop.
func (c Container) Loop(i int) []geom.Point3D {
	return points(c.SolidData.Vertices, c.SolidData.Faces[i].Outer)
}
