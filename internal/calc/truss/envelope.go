package truss

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

var (
	ErrAmbiguousBound = errors.New("truss envelope sets both a roof container and explicit cuts")
	ErrMissingBound   = errors.New("truss envelope has no top/bottom bound")
	ErrDegenerateLine = errors.New("truss reference line has zero length")
	ErrUnresolvedRef  = errors.New("unresolved reference")
)

type BevelCutType string

const (
	BevelBack   BevelCutType = "Back"
	BevelDouble BevelCutType = "Double"
	BevelFront  BevelCutType = "Front"
)

type BevelCut struct {
	Type  BevelCutType `json:"type"`
	Angle float64      `json:"angle"`
}

type CutKind string

const (
	CutRoofPlane     CutKind = "RoofPlane"
	CutCeiling       CutKind = "Ceiling"
	CutAbsolutePlane CutKind = "AbsolutePlane"
)

// Cut bounds the top or bottom of a truss envelope. Ref names a roof plane:
// a local key while planning, the service GUID once resolved.
type Cut struct {
	Kind      CutKind       `json:"type"`
	Ref       string        `json:"roofPlaneGuid,omitempty"`
	Elevation float64       `json:"elevation,omitempty"`
	Plane     *geom.Plane3D `json:"plane,omitempty"`
}

func RoofPlaneCut(ref string) Cut { return Cut{Kind: CutRoofPlane, Ref: ref} }

func CeilingCut(elevation float64) Cut { return Cut{Kind: CutCeiling, Elevation: elevation} }

func AbsolutePlaneCut(pl geom.Plane3D) Cut { return Cut{Kind: CutAbsolutePlane, Plane: &pl} }

// Bound is either ContainerBound or CutBound.
type Bound interface {
	bound()
}

// ContainerBound takes top and bottom from an enclosing roof container.
type ContainerBound struct {
	Container string
}

// CutBound takes top and bottom from explicit cuts.
type CutBound struct {
	Top    []Cut
	Bottom []Cut
}

func (ContainerBound) bound() {}
func (CutBound) bound()       {}

// Envelope is the reference line and bounds of one truss before design.
type Envelope struct {
	GUID                string
	Name                string
	LeftPoint           geom.Point2D
	RightPoint          geom.Point2D
	Justification       geom.Justification
	Thickness           float64
	LeftBevelCut        *BevelCut
	RightBevelCut       *BevelCut
	Bound               Bound
	ComponentDesignGUID string
}

type wireEnvelope struct {
	GUID                string             `json:"guid,omitempty"`
	Name                string             `json:"name"`
	LeftPoint           geom.Point2D       `json:"leftPoint"`
	RightPoint          geom.Point2D       `json:"rightPoint"`
	Justification       geom.Justification `json:"justification"`
	Thickness           float64            `json:"thickness"`
	LeftBevelCut        *BevelCut          `json:"leftBevelCut,omitempty"`
	RightBevelCut       *BevelCut          `json:"rightBevelCut,omitempty"`
	RoofContainerGUID   string             `json:"roofContainerGuid,omitempty"`
	TopCuts             []Cut              `json:"topCuts,omitempty"`
	BottomCuts          []Cut              `json:"bottomCuts,omitempty"`
	ComponentDesignGUID string             `json:"componentDesignGuid,omitempty"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	w := wireEnvelope{
		GUID:                e.GUID,
		Name:                e.Name,
		LeftPoint:           e.LeftPoint,
		RightPoint:          e.RightPoint,
		Justification:       e.Justification,
		Thickness:           e.Thickness,
		LeftBevelCut:        e.LeftBevelCut,
		RightBevelCut:       e.RightBevelCut,
		ComponentDesignGUID: e.ComponentDesignGUID,
	}
	switch b := e.Bound.(type) {
	case ContainerBound:
		w.RoofContainerGUID = b.Container
	case CutBound:
		w.TopCuts, w.BottomCuts = b.Top, b.Bottom
	}
	return json.Marshal(w)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	hasCuts := len(w.TopCuts) > 0 || len(w.BottomCuts) > 0
	if w.RoofContainerGUID != "" && hasCuts {
		return fmt.Errorf("truss envelope %q: %w", w.Name, ErrAmbiguousBound)
	}
	*e = Envelope{
		GUID:                w.GUID,
		Name:                w.Name,
		LeftPoint:           w.LeftPoint,
		RightPoint:          w.RightPoint,
		Justification:       w.Justification,
		Thickness:           w.Thickness,
		LeftBevelCut:        w.LeftBevelCut,
		RightBevelCut:       w.RightBevelCut,
		ComponentDesignGUID: w.ComponentDesignGUID,
	}
	switch {
	case w.RoofContainerGUID != "":
		e.Bound = ContainerBound{Container: w.RoofContainerGUID}
	case hasCuts:
		e.Bound = CutBound{Top: w.TopCuts, Bottom: w.BottomCuts}
	}
	return nil
}

// Resolve returns a copy of e with local container and roof plane keys
// replaced by service GUIDs.
func (e Envelope) Resolve(containers, planes map[string]string) (Envelope, error) {
	switch b := e.Bound.(type) {
	case ContainerBound:
		guid, ok := containers[b.Container]
		if !ok {
			return Envelope{}, fmt.Errorf("truss %q container %q: %w", e.Name, b.Container, ErrUnresolvedRef)
		}
		e.Bound = ContainerBound{Container: guid}
	case CutBound:
		top, err := resolveCuts(e.Name, b.Top, planes)
		if err != nil {
			return Envelope{}, err
		}
		bottom, err := resolveCuts(e.Name, b.Bottom, planes)
		if err != nil {
			return Envelope{}, err
		}
		e.Bound = CutBound{Top: top, Bottom: bottom}
	}
	return e, nil
}

func resolveCuts(name string, cuts []Cut, planes map[string]string) ([]Cut, error) {
	if cuts == nil {
		return nil, nil
	}
	out := make([]Cut, len(cuts))
	for i, c := range cuts {
		if c.Kind == CutRoofPlane {
			guid, ok := planes[c.Ref]
			if !ok {
				return nil, fmt.Errorf("truss %q roof plane %q: %w", name, c.Ref, ErrUnresolvedRef)
			}
			c.Ref = guid
		}
		out[i] = c
	}
	return out, nil
}

// Validate checks an envelope before it is submitted.
func Validate(e Envelope) error {
	field := func(f string) string { return fmt.Sprintf("truss[%s].%s", e.Name, f) }
	if e.Name == "" {
		return apperrors.Invalid("truss.name", "must not be empty")
	}
	if e.LeftPoint == e.RightPoint {
		return apperrors.Wrap(ErrDegenerateLine, apperrors.CategoryValidation, field("rightPoint"))
	}
	if e.Thickness <= 0 {
		return apperrors.Invalid(field("thickness"), "must be positive")
	}
	if !e.Justification.Valid() {
		return apperrors.Invalid(field("justification"), fmt.Sprintf("unknown justification %q", e.Justification))
	}
	if err := validateBevel(e.LeftBevelCut); err != nil {
		return apperrors.Invalid(field("leftBevelCut"), err.Error())
	}
	if err := validateBevel(e.RightBevelCut); err != nil {
		return apperrors.Invalid(field("rightBevelCut"), err.Error())
	}

	switch b := e.Bound.(type) {
	case nil:
		return apperrors.Wrap(ErrMissingBound, apperrors.CategoryValidation, field("bound"))
	case ContainerBound:
		if b.Container == "" {
			return apperrors.Wrap(ErrMissingBound, apperrors.CategoryValidation, field("roofContainerGuid"))
		}
	case CutBound:
		if len(b.Top) == 0 && len(b.Bottom) == 0 {
			return apperrors.Wrap(ErrMissingBound, apperrors.CategoryValidation, field("cuts"))
		}
		for i, c := range append(append([]Cut{}, b.Top...), b.Bottom...) {
			if err := validateCut(c); err != nil {
				return apperrors.Invalid(field(fmt.Sprintf("cuts[%d]", i)), err.Error())
			}
		}
	}
	return nil
}

func validateBevel(b *BevelCut) error {
	if b == nil {
		return nil
	}
	switch b.Type {
	case BevelBack, BevelDouble, BevelFront:
	default:
		return fmt.Errorf("unknown bevel type %q", b.Type)
	}
	if b.Angle <= -90 || b.Angle >= 90 {
		return fmt.Errorf("bevel angle %.2f out of range", b.Angle)
	}
	return nil
}

func validateCut(c Cut) error {
	switch c.Kind {
	case CutRoofPlane:
		if c.Ref == "" {
			return errors.New("roof plane cut without plane reference")
		}
	case CutCeiling:
	case CutAbsolutePlane:
		if c.Plane == nil || c.Plane.Normal().Len() == 0 {
			return errors.New("absolute plane cut without plane")
		}
	default:
		return fmt.Errorf("unknown cut type %q", c.Kind)
	}
	return nil
}
