package roof

import (
	"fmt"

	"Roofline/internal/geom"
)

type ReferenceType string

const (
	ReferenceAbsolute        ReferenceType = "Absolute"
	ReferenceBearingEnvelope ReferenceType = "BearingEnvelope"
)

type ReferenceGeometry struct {
	Type                ReferenceType   `json:"type"`
	BearingEnvelopeGUID string          `json:"bearingEnvelopeGuid,omitempty"`
	Segment             *geom.Segment2D `json:"segment,omitempty"`
}

type CutType string

const (
	CutAbsolute     CutType = "Absolute"
	CutAgainstPlane CutType = "AgainstPlane"
)

// PlaneCut bounds a roof plane by an absolute vertical plane or by another
// roof plane.
type PlaneCut struct {
	Type             CutType         `json:"type"`
	Plane            *geom.Plane3D   `json:"plane,omitempty"`
	CuttingPlaneGUID string          `json:"cuttingPlaneGuid,omitempty"`
	Segment          *geom.Segment2D `json:"segment,omitempty"`
}

// Plane is a roof plane as echoed back by the design service.
type Plane struct {
	GUID              string            `json:"guid"`
	Elevation         float64           `json:"elevation"`
	ReferenceGeometry ReferenceGeometry `json:"referenceGeometry"`
	Slope             float64           `json:"slope"`
	HeelHeight        float64           `json:"heelHeight"`
	Overhang          float64           `json:"overhang"`
	Cantilever        float64           `json:"cantilever"`
	Flip              bool              `json:"flip"`
	Cuts              []PlaneCut        `json:"cuts"`
}

// Bind maps submitted loop keys to the GUIDs of the returned planes. The
// service returns planes in submission order and echoes no names.
func Bind(loops []Loop, planes []Plane) (map[string]string, error) {
	if len(loops) != len(planes) {
		return nil, fmt.Errorf("submitted %d roof planes, service returned %d", len(loops), len(planes))
	}
	out := make(map[string]string, len(loops))
	for i, l := range loops {
		if planes[i].GUID == "" {
			return nil, fmt.Errorf("roof plane %q returned without guid", l.Key)
		}
		out[l.Key] = planes[i].GUID
	}
	return out, nil
}
