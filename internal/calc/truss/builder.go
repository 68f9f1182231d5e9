package truss

import (
	"fmt"

	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

const (
	DefaultThickness     = 1.5
	DefaultJustification = geom.Back
)

// Builder assembles an Envelope. Container and Cuts are mutually exclusive:
// setting one after the other makes Build fail.
type Builder struct {
	env Envelope
	err error
}

func NewBuilder(name string, left, right geom.Point2D) *Builder {
	return &Builder{env: Envelope{
		Name:          name,
		LeftPoint:     left,
		RightPoint:    right,
		Justification: DefaultJustification,
		Thickness:     DefaultThickness,
	}}
}

// FromLine starts a builder on a generated reference line.
func FromLine(l Line) *Builder {
	return NewBuilder(l.Name, l.Left, l.Right)
}

func (b *Builder) Justification(j geom.Justification) *Builder {
	if j != "" {
		b.env.Justification = j
	}
	return b
}

func (b *Builder) Thickness(t float64) *Builder {
	if t != 0 {
		b.env.Thickness = t
	}
	return b
}

func (b *Builder) LeftBevel(c BevelCut) *Builder {
	b.env.LeftBevelCut = &c
	return b
}

func (b *Builder) RightBevel(c BevelCut) *Builder {
	b.env.RightBevelCut = &c
	return b
}

// Container bounds the truss by the named roof container.
func (b *Builder) Container(ref string) *Builder {
	return b.bind(ContainerBound{Container: ref})
}

// Cuts bounds the truss by explicit top and bottom cuts.
func (b *Builder) Cuts(top, bottom []Cut) *Builder {
	return b.bind(CutBound{Top: top, Bottom: bottom})
}

func (b *Builder) bind(bound Bound) *Builder {
	if b.env.Bound != nil {
		if b.err == nil {
			b.err = apperrors.Wrap(ErrAmbiguousBound, apperrors.CategoryValidation, fmt.Sprintf("truss[%s].bound", b.env.Name))
		}
		return b
	}
	b.env.Bound = bound
	return b
}

func (b *Builder) Build() (Envelope, error) {
	if b.err != nil {
		return Envelope{}, b.err
	}
	if err := Validate(b.env); err != nil {
		return Envelope{}, err
	}
	return b.env, nil
}
