// Package pipeline submits a locally built Plan to the design service in
// dependency order: project, bearings, roof, truss envelopes, design.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	"Roofline/internal/designapi"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/metrics"
)

// Service is the part of the design service a run uses.
type Service interface {
	CreateProject(ctx context.Context, name string) (designapi.Project, error)
	CreateBearingEnvelope(ctx context.Context, project string, e bearing.Envelope) (bearing.Envelope, error)
	CreateRoofContainer(ctx context.Context, project string, c roof.Container) (roof.Container, error)
	CreateRoofPlanesFromFaces(ctx context.Context, project string, loops []roof.Loop) ([]roof.Plane, error)
	CreateRoofPlanesFromPolygons(ctx context.Context, project string, loops []roof.Loop) ([]roof.Plane, error)
	CreateTrussEnvelope(ctx context.Context, project string, e truss.Envelope) (truss.Envelope, error)
	CreateTrusses(ctx context.Context, project string, envelopeGUIDs []string) ([]truss.Envelope, error)
	CreateProfileTruss(ctx context.Context, project string, p truss.Profile) (string, error)
}

// Refs maps local names to service GUIDs. A stage never modifies the Refs
// it receives; it returns a new value with its own map filled in.
type Refs struct {
	Project    string
	Bearings   map[string]string
	Containers map[string]string
	Planes     map[string]string
	Trusses    map[string]string
}

type Result struct {
	Project  designapi.Project
	Refs     Refs
	Designed []truss.Envelope
}

const (
	StageProject  = "project"
	StageBearings = "bearings"
	StageRoof     = "roof"
	StageTrusses  = "trusses"
	StageDesign   = "design"
)

type Runner struct {
	Service Service
	// Concurrency bounds sibling submissions within a stage.
	Concurrency int
	// Deadline bounds the whole run. Zero means none.
	Deadline time.Duration
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

type stage struct {
	name    string
	message string
	run     func(ctx context.Context, in Refs) (Refs, error)
}

// Run validates plan and submits it. Nothing is sent when validation fails.
// There are no retries: every call creates a server-side entity.
func (r *Runner) Run(ctx context.Context, plan Plan) (Result, error) {
	if err := plan.Validate(); err != nil {
		return Result{}, err
	}
	if r.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Deadline)
		defer cancel()
	}

	var res Result
	stages := []stage{
		{StageProject, "Creating project...", func(ctx context.Context, in Refs) (Refs, error) {
			p, err := r.Service.CreateProject(ctx, plan.Project)
			if err != nil {
				return in, err
			}
			res.Project = p
			in.Project = p.GUID
			return in, nil
		}},
		{StageBearings, "Creating bearing envelopes...", func(ctx context.Context, in Refs) (Refs, error) {
			return r.bearings(ctx, in, plan.Bearings)
		}},
		{StageRoof, roofMessage(plan.Roof), func(ctx context.Context, in Refs) (Refs, error) {
			return r.roof(ctx, in, plan.Roof)
		}},
		{StageTrusses, "Creating truss envelopes...", func(ctx context.Context, in Refs) (Refs, error) {
			return r.trusses(ctx, in, plan.Trusses)
		}},
		{StageDesign, "Designing trusses...", func(ctx context.Context, in Refs) (Refs, error) {
			guids := make([]string, len(plan.Trusses))
			for i, e := range plan.Trusses {
				guids[i] = in.Trusses[e.Name]
			}
			designed, err := r.Service.CreateTrusses(ctx, in.Project, guids)
			if err != nil {
				return in, err
			}
			res.Designed = designed
			return in, nil
		}},
	}

	refs := Refs{}
	for _, st := range stages {
		r.logger().Info(st.message, slog.String("stage", st.name))
		start := time.Now()
		next, err := st.run(ctx, refs)
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailed
		}
		r.recorder().ObserveStage(st.name, time.Since(start), result)
		if err != nil {
			return Result{Project: res.Project, Refs: refs}, fmt.Errorf("stage %s: %w", st.name, err)
		}
		refs = next
	}
	res.Refs = refs
	return res, nil
}

func roofMessage(g roof.Geometry) string {
	if g != nil && g.Strategy() != roof.StrategySolid {
		return "Creating roof planes..."
	}
	return "Creating roof containers..."
}

// fanOut runs submit for each index with at most limit in flight and waits
// for all of them. The first error cancels the rest.
func fanOut(ctx context.Context, n, limit int, submit func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i := 0; i < n; i++ {
		g.Go(func() error { return submit(ctx, i) })
	}
	return g.Wait()
}

func (r *Runner) concurrency(stage string) int {
	n := max(r.Concurrency, 1)
	r.recorder().SetStageConcurrency(stage, n)
	return n
}

func (r *Runner) bearings(ctx context.Context, in Refs, envs []bearing.Envelope) (Refs, error) {
	guids := make([]string, len(envs))
	err := fanOut(ctx, len(envs), r.concurrency(StageBearings), func(ctx context.Context, i int) error {
		out, err := r.Service.CreateBearingEnvelope(ctx, in.Project, envs[i])
		if err != nil {
			return err
		}
		guids[i] = out.GUID
		return nil
	})
	if err != nil {
		return in, err
	}
	in.Bearings = zip(envs, func(e bearing.Envelope) string { return e.Name }, guids)
	return in, nil
}

func (r *Runner) roof(ctx context.Context, in Refs, g roof.Geometry) (Refs, error) {
	switch g := g.(type) {
	case roof.SolidGeometry:
		guids := make([]string, len(g.Containers))
		err := fanOut(ctx, len(g.Containers), r.concurrency(StageRoof), func(ctx context.Context, i int) error {
			out, err := r.Service.CreateRoofContainer(ctx, in.Project, g.Containers[i])
			if err != nil {
				return err
			}
			guids[i] = out.GUID
			return nil
		})
		if err != nil {
			return in, err
		}
		in.Containers = zip(g.Containers, func(c roof.Container) string { return c.Name }, guids)
		return in, nil

	case roof.FacesGeometry:
		planes, err := r.Service.CreateRoofPlanesFromFaces(ctx, in.Project, g.Planes)
		return bindPlanes(in, designapi.RoutePlanesFromFaces, g.Planes, planes, err)

	case roof.PolygonsGeometry:
		planes, err := r.Service.CreateRoofPlanesFromPolygons(ctx, in.Project, g.Planes)
		return bindPlanes(in, designapi.RoutePlanesFromPolygon, g.Planes, planes, err)
	}
	return in, apperrors.Internal(fmt.Sprintf("unsupported roof geometry %T", g), nil)
}

// bindPlanes keys the returned planes by submission order.
func bindPlanes(in Refs, route string, loops []roof.Loop, planes []roof.Plane, err error) (Refs, error) {
	if err != nil {
		return in, err
	}
	bound, err := roof.Bind(loops, planes)
	if err != nil {
		return in, apperrors.Service(route, err)
	}
	in.Planes = bound
	return in, nil
}

func (r *Runner) trusses(ctx context.Context, in Refs, envs []truss.Envelope) (Refs, error) {
	resolved := make([]truss.Envelope, len(envs))
	for i, e := range envs {
		out, err := e.Resolve(in.Containers, in.Planes)
		if err != nil {
			return in, apperrors.Internal("resolve truss references", err)
		}
		resolved[i] = out
	}
	guids := make([]string, len(envs))
	err := fanOut(ctx, len(resolved), r.concurrency(StageTrusses), func(ctx context.Context, i int) error {
		out, err := r.Service.CreateTrussEnvelope(ctx, in.Project, resolved[i])
		if err != nil {
			return err
		}
		guids[i] = out.GUID
		return nil
	})
	if err != nil {
		return in, err
	}
	in.Trusses = zip(envs, func(e truss.Envelope) string { return e.Name }, guids)
	return in, nil
}

func zip[T any](items []T, name func(T) string, guids []string) map[string]string {
	out := make(map[string]string, len(items))
	for i, it := range items {
		out[name(it)] = guids[i]
	}
	return out
}

// RunProfile creates a project and designs a single profile truss in it.
func (r *Runner) RunProfile(ctx context.Context, project string, p truss.Profile) (designapi.Project, string, error) {
	if project == "" {
		return designapi.Project{}, "", apperrors.Invalid("project", "must not be empty")
	}
	if err := truss.ValidateProfile(p); err != nil {
		return designapi.Project{}, "", err
	}
	if r.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Deadline)
		defer cancel()
	}
	r.logger().Info("Creating project...", slog.String("stage", StageProject))
	proj, err := r.Service.CreateProject(ctx, project)
	if err != nil {
		return designapi.Project{}, "", fmt.Errorf("stage %s: %w", StageProject, err)
	}
	r.logger().Info("Creating truss...", slog.String("stage", StageDesign))
	guid, err := r.Service.CreateProfileTruss(ctx, proj.GUID, p)
	if err != nil {
		return proj, "", fmt.Errorf("stage %s: %w", StageDesign, err)
	}
	return proj, guid, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) recorder() metrics.Recorder {
	if r.Metrics != nil {
		return r.Metrics
	}
	return metrics.NoopRecorder{}
}
