package designstub

import (
	"context"
	"errors"
	"sync"

	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	"Roofline/internal/designapi"
)

var ErrNotFound = errors.New("not found")

// Repository stores the entities created through the stub. Every entity is
// scoped to a project.
type Repository interface {
	CreateProject(ctx context.Context, p designapi.Project) error
	AddBearing(ctx context.Context, project string, e bearing.Envelope) error
	Bearings(ctx context.Context, project string) ([]bearing.Envelope, error)
	AddContainer(ctx context.Context, project string, c roof.Container) error
	AddPlanes(ctx context.Context, project string, planes []roof.Plane) error
	AddEnvelope(ctx context.Context, project string, e truss.Envelope) error
	// Resolved reports whether every container and plane guid exists in the project.
	Resolved(ctx context.Context, project string, containers, planes []string) (bool, error)
	// Design stamps a component design on each envelope, all or none.
	Design(ctx context.Context, project string, guids []string, design func() string) ([]truss.Envelope, error)
	AddProfile(ctx context.Context, project, guid string, p truss.Profile) error
}

type projectState struct {
	project    designapi.Project
	bearings   []bearing.Envelope
	containers map[string]roof.Container
	planes     map[string]roof.Plane
	envelopes  map[string]truss.Envelope
	profiles   map[string]truss.Profile
}

type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*projectState
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]*projectState)}
}

func (r *MemoryRepository) CreateProject(ctx context.Context, p designapi.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.GUID] = &projectState{
		project:    p,
		containers: make(map[string]roof.Container),
		planes:     make(map[string]roof.Plane),
		envelopes:  make(map[string]truss.Envelope),
		profiles:   make(map[string]truss.Profile),
	}
	return nil
}

// with runs fn on the project under the write lock.
func (r *MemoryRepository) with(project string, fn func(*projectState) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.projects[project]
	if !ok {
		return ErrNotFound
	}
	return fn(ps)
}

func (r *MemoryRepository) AddBearing(ctx context.Context, project string, e bearing.Envelope) error {
	return r.with(project, func(ps *projectState) error {
		ps.bearings = append(ps.bearings, e)
		return nil
	})
}

func (r *MemoryRepository) Bearings(ctx context.Context, project string) ([]bearing.Envelope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps, ok := r.projects[project]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]bearing.Envelope(nil), ps.bearings...), nil
}

func (r *MemoryRepository) AddContainer(ctx context.Context, project string, c roof.Container) error {
	return r.with(project, func(ps *projectState) error {
		ps.containers[c.GUID] = c
		return nil
	})
}

func (r *MemoryRepository) AddPlanes(ctx context.Context, project string, planes []roof.Plane) error {
	return r.with(project, func(ps *projectState) error {
		for _, p := range planes {
			ps.planes[p.GUID] = p
		}
		return nil
	})
}

func (r *MemoryRepository) AddEnvelope(ctx context.Context, project string, e truss.Envelope) error {
	return r.with(project, func(ps *projectState) error {
		ps.envelopes[e.GUID] = e
		return nil
	})
}

func (r *MemoryRepository) Resolved(ctx context.Context, project string, containers, planes []string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps, ok := r.projects[project]
	if !ok {
		return false, ErrNotFound
	}
	for _, g := range containers {
		if _, ok := ps.containers[g]; !ok {
			return false, nil
		}
	}
	for _, g := range planes {
		if _, ok := ps.planes[g]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (r *MemoryRepository) Design(ctx context.Context, project string, guids []string, design func() string) ([]truss.Envelope, error) {
	var out []truss.Envelope
	err := r.with(project, func(ps *projectState) error {
		out = make([]truss.Envelope, len(guids))
		for i, g := range guids {
			e, ok := ps.envelopes[g]
			if !ok {
				return ErrNotFound
			}
			out[i] = e
		}
		for i := range out {
			out[i].ComponentDesignGUID = design()
			ps.envelopes[out[i].GUID] = out[i]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MemoryRepository) AddProfile(ctx context.Context, project, guid string, p truss.Profile) error {
	return r.with(project, func(ps *projectState) error {
		ps.profiles[guid] = p
		return nil
	})
}
