package designstub

import (
	"math"

	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/roof"
	"Roofline/internal/geom"
)

// derivePlanes describes each loop the way the service echoes roof planes.
// With infer set, support and cut-against relations come from coincident
// vertices; otherwise every plane is absolute and uncut.
func derivePlanes(loops []roof.Loop, guids []string, bearings []bearing.Envelope, eps float64, infer bool) []roof.Plane {
	var cuts map[int][]int
	if infer {
		cuts = roof.CutsAgainst(loops, eps)
	}
	out := make([]roof.Plane, len(loops))
	for i, l := range loops {
		low := math.Inf(1)
		for _, p := range l.Points {
			low = math.Min(low, p.Z)
		}
		p := roof.Plane{
			GUID:              guids[i],
			Elevation:         low,
			ReferenceGeometry: roof.ReferenceGeometry{Type: roof.ReferenceAbsolute},
			Slope:             slope(l.Points),
			Cuts:              []roof.PlaneCut{},
		}
		if infer {
			if bi := roof.SupportingBearing(l, bearings, eps); bi >= 0 {
				p.ReferenceGeometry = roof.ReferenceGeometry{
					Type:                roof.ReferenceBearingEnvelope,
					BearingEnvelopeGUID: bearings[bi].GUID,
				}
				p.HeelHeight = low - bearings[bi].Top
			}
			for _, j := range cuts[i] {
				p.Cuts = append(p.Cuts, roof.PlaneCut{Type: roof.CutAgainstPlane, CuttingPlaneGUID: guids[j]})
			}
		}
		out[i] = p
	}
	return out
}

// slope is rise per 12 of run. Vertical and degenerate loops report 0.
func slope(loop []geom.Point3D) float64 {
	pl, ok := geom.BestFitPlane(loop)
	if !ok {
		return 0
	}
	n := pl.Normal()
	if math.Abs(n.Z()) < 1e-12 {
		return 0
	}
	return 12 * math.Hypot(n.X(), n.Y()) / math.Abs(n.Z())
}
