// Package batch plans and submits several buildings, one project each.
package batch

import (
	"context"
	"fmt"

	"Roofline/internal/calc/importer"
	"Roofline/internal/config"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/pipeline"
)

type Entry struct {
	Row  int
	Kind config.Kind
	Plan pipeline.Plan
}

// Summary counts what a plan will create.
type Summary struct {
	Project  string `json:"project"`
	Kind     string `json:"kind"`
	Strategy string `json:"strategy"`
	Bearings int    `json:"bearings"`
	Roof     int    `json:"roof"`
	Trusses  int    `json:"trusses"`
}

func Summarize(e Entry) Summary {
	p := e.Plan
	s := Summary{
		Project:  p.Project,
		Kind:     string(e.Kind),
		Bearings: len(p.Bearings),
		Trusses:  len(p.Trusses),
	}
	if p.Roof != nil {
		s.Strategy = string(p.Roof.Strategy())
		s.Roof = len(p.Roof.Keys())
	}
	return s
}

// Build plans and validates every building. It stops at the first failure
// and reports the sheet row; nothing is submitted.
func Build(buildings []importer.Building) ([]Entry, error) {
	if len(buildings) == 0 {
		return nil, apperrors.Invalid("buildings", "no items")
	}
	seen := make(map[string]int, len(buildings))
	out := make([]Entry, 0, len(buildings))
	for _, b := range buildings {
		if row, ok := seen[b.Config.Project]; ok {
			return nil, apperrors.Wrap(pipeline.ErrDuplicateName, apperrors.CategoryValidation, "project").
				WithContext("name", b.Config.Project).WithContext("first_row", row).WithContext("row", b.Row)
		}
		seen[b.Config.Project] = b.Row

		plan, err := pipeline.Build(b.Config)
		if err == nil {
			err = plan.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", b.Row, b.Config.Project, err)
		}
		out = append(out, Entry{Row: b.Row, Kind: b.Config.Building.Kind, Plan: plan})
	}
	return out, nil
}

type Outcome struct {
	Entry  Entry
	Result pipeline.Result
	Err    error
}

// Submit runs each plan in turn. A failed building does not stop the rest;
// a cancelled context does.
func Submit(ctx context.Context, r *pipeline.Runner, entries []Entry) []Outcome {
	out := make([]Outcome, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			out = append(out, Outcome{Entry: e, Err: apperrors.Wrap(err, apperrors.CategoryInternal, "batch cancelled")})
			continue
		}
		res, err := r.Run(ctx, e.Plan)
		out = append(out, Outcome{Entry: e, Result: res, Err: err})
	}
	return out
}

// Failed returns the outcomes with an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
