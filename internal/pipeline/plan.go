package pipeline

import (
	"errors"
	"fmt"

	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/footprint"
	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	"Roofline/internal/config"
	apperrors "Roofline/internal/errors"
)

var ErrDuplicateName = errors.New("duplicate entity name")

// Plan is everything a run submits, built locally. Truss envelopes refer to
// roof containers and planes by their local keys.
type Plan struct {
	Project  string
	Bearings []bearing.Envelope
	Roof     roof.Geometry
	Trusses  []truss.Envelope
	Epsilon  float64
}

// Build lays out the building described by cfg.
func Build(cfg *config.Config) (Plan, error) {
	strategy, err := roof.ParseStrategy(string(cfg.Roof.Strategy))
	if err != nil {
		return Plan{}, apperrors.Invalid("roof.strategy", err.Error())
	}
	plan := Plan{Project: cfg.Project, Epsilon: cfg.Roof.Epsilon}
	t := cfg.Trusses

	switch cfg.Building.Kind {
	case config.KindGable:
		main, err := footprint.Calculate(cfg.Building.Main)
		if err != nil {
			return Plan{}, err
		}
		plan.Bearings = bearing.Perimeter(main, cfg.Building.Bearing)
		plan.Roof = roof.ForGable(strategy, main)
		env, err := newTruss(t, placed{truss.CommonAlongY("Common 1", main, t.CommonOffset), gableBound(strategy, main)})
		if err != nil {
			return Plan{}, err
		}
		plan.Trusses = []truss.Envelope{env}

	case config.KindCrossGable:
		c, err := footprint.CrossGable(cfg.Building.Main, cfg.Building.Wing)
		if err != nil {
			return Plan{}, err
		}
		mainIn, wingIn := cfg.Building.Bearing, cfg.Building.Bearing
		mainIn.Prefix, wingIn.Prefix = c.Main.Name, c.Wing.Name
		plan.Bearings = append(bearing.Perimeter(c.Main, mainIn), bearing.WingPerimeter(c, wingIn)...)
		plan.Roof = roof.ForCrossGable(strategy, c)

		valleys, err := truss.Valleys(truss.ValleyInputFor(c, t.ValleyStep, t.ValleyClearance))
		if err != nil {
			return Plan{}, err
		}
		north := planeCuts(roof.NorthKeys(strategy, c)...)
		main := bound(strategy, c.Main.Name, append(planeCuts(c.Main.Name+" South"), north...), ceiling(c.Main))
		wing := wingBound(strategy, c)
		lines := []placed{
			{truss.CommonAlongY("Common 1", c.Main, t.CommonOffset), main},
			{truss.CommonAlongX("Common 2", c.Wing, t.CommonOffset), wing(ceiling(c.Wing))},
		}
		for _, v := range valleys {
			lines = append(lines, placed{v, wing(north)})
		}
		lines = append(lines, placed{truss.CommonAlongY("Common 3", c.Main, c.Main.Length/2), main})

		for _, l := range lines {
			env, err := newTruss(t, l)
			if err != nil {
				return Plan{}, err
			}
			plan.Trusses = append(plan.Trusses, env)
		}

	default:
		return Plan{}, apperrors.Invalid("building.kind", fmt.Sprintf("unknown building kind %q", cfg.Building.Kind))
	}
	return plan, nil
}

type bind func(*truss.Builder) *truss.Builder

type placed struct {
	line  truss.Line
	bound bind
}

func planeCuts(keys ...string) []truss.Cut {
	out := make([]truss.Cut, len(keys))
	for i, k := range keys {
		out[i] = truss.RoofPlaneCut(k)
	}
	return out
}

func ceiling(f footprint.Footprint) []truss.Cut {
	return []truss.Cut{truss.CeilingCut(f.WallHeight)}
}

// bound picks the container in solid mode and the explicit cuts otherwise.
func bound(s roof.Strategy, container string, top, bottom []truss.Cut) bind {
	if s == roof.StrategySolid {
		return func(b *truss.Builder) *truss.Builder { return b.Container(container) }
	}
	return func(b *truss.Builder) *truss.Builder { return b.Cuts(top, bottom) }
}

// gableBound bounds a truss under both sloped planes of a gable mass, over a
// ceiling at wall height.
func gableBound(s roof.Strategy, f footprint.Footprint) bind {
	return bound(s, f.Name, planeCuts(f.Name+" South", f.Name+" North"), ceiling(f))
}

// wingBound bounds a truss under the wing planes; the bottom differs between
// wing commons and valley trusses sitting on the main north plane.
func wingBound(s roof.Strategy, c footprint.Composite) func(bottom []truss.Cut) bind {
	return func(bottom []truss.Cut) bind {
		return bound(s, c.Wing.Name, planeCuts(c.Wing.Name+" East", c.Wing.Name+" West"), bottom)
	}
}

func newTruss(t config.TrussConfig, p placed) (truss.Envelope, error) {
	b := truss.FromLine(p.line).Justification(t.Justification).Thickness(t.Thickness)
	return p.bound(b).Build()
}

// Validate runs every local check. A plan that passes has no dangling
// references and no duplicate names within an entity kind.
func (p Plan) Validate() error {
	if p.Project == "" {
		return apperrors.Invalid("project", "must not be empty")
	}
	if p.Roof == nil {
		return apperrors.Invalid("roof", "no roof geometry")
	}
	if len(p.Trusses) == 0 {
		return apperrors.Invalid("trusses", "no truss envelopes")
	}

	names := make([]string, len(p.Bearings))
	for i, b := range p.Bearings {
		if err := bearing.Validate(b); err != nil {
			return err
		}
		names[i] = b.Name
	}
	if err := unique("bearings", names); err != nil {
		return err
	}

	keys := p.Roof.Keys()
	if err := unique("roof", keys); err != nil {
		return err
	}
	if err := p.Roof.Validate(p.Epsilon); err != nil {
		return err
	}

	known := make(map[string]string, len(keys))
	for _, k := range keys {
		known[k] = k
	}
	var containers, planes map[string]string
	if p.Roof.Strategy() == roof.StrategySolid {
		containers = known
	} else {
		planes = known
	}

	names = make([]string, len(p.Trusses))
	for i, e := range p.Trusses {
		if err := truss.Validate(e); err != nil {
			return err
		}
		if _, err := e.Resolve(containers, planes); err != nil {
			return apperrors.Wrap(err, apperrors.CategoryValidation, fmt.Sprintf("truss[%s]", e.Name)).
				WithContext("strategy", string(p.Roof.Strategy()))
		}
		names[i] = e.Name
	}
	return unique("trusses", names)
}

func unique(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return apperrors.Wrap(ErrDuplicateName, apperrors.CategoryValidation, kind).WithContext("name", n)
		}
		seen[n] = true
	}
	return nil
}
