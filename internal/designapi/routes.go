package designapi

import (
	"context"
	"fmt"

	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

type Project struct {
	GUID string `json:"guid,omitempty"`
	Name string `json:"name"`
}

// FacesRequest submits loops that share edges.
type FacesRequest struct {
	Faces [][]geom.Point3D `json:"faces"`
}

// PolygonsRequest submits independent loops.
type PolygonsRequest struct {
	Polygons [][]geom.Point3D `json:"polygons"`
}

func loopPoints(loops []roof.Loop) [][]geom.Point3D {
	out := make([][]geom.Point3D, len(loops))
	for i, l := range loops {
		out[i] = l.Points
	}
	return out
}

func (c *Client) CreateProject(ctx context.Context, name string) (Project, error) {
	var p Project
	if err := c.postJSON(ctx, RouteProjects, "/projects", Project{Name: name}, &p); err != nil {
		return Project{}, err
	}
	if p.GUID == "" {
		return Project{}, missingGUID(RouteProjects, name)
	}
	return p, nil
}

func (c *Client) CreateBearingEnvelope(ctx context.Context, project string, e bearing.Envelope) (bearing.Envelope, error) {
	var out bearing.Envelope
	if err := c.postJSON(ctx, RouteBearingEnvelopes, projectPath(project, "/bearingEnvelopes"), e, &out); err != nil {
		return bearing.Envelope{}, err
	}
	if out.GUID == "" {
		return bearing.Envelope{}, missingGUID(RouteBearingEnvelopes, e.Name)
	}
	return out, nil
}

func (c *Client) CreateRoofContainer(ctx context.Context, project string, rc roof.Container) (roof.Container, error) {
	var out roof.Container
	if err := c.postJSON(ctx, RouteRoofContainers, projectPath(project, "/roofContainers"), rc, &out); err != nil {
		return roof.Container{}, err
	}
	if out.GUID == "" {
		return roof.Container{}, missingGUID(RouteRoofContainers, rc.Name)
	}
	return out, nil
}

// CreateRoofPlanesFromFaces returns the planes in submission order.
func (c *Client) CreateRoofPlanesFromFaces(ctx context.Context, project string, loops []roof.Loop) ([]roof.Plane, error) {
	var out []roof.Plane
	err := c.postJSON(ctx, RoutePlanesFromFaces, projectPath(project, "/roofPlanes/fromFaces"), FacesRequest{Faces: loopPoints(loops)}, &out)
	return out, err
}

// CreateRoofPlanesFromPolygons returns the planes in submission order.
func (c *Client) CreateRoofPlanesFromPolygons(ctx context.Context, project string, loops []roof.Loop) ([]roof.Plane, error) {
	var out []roof.Plane
	err := c.postJSON(ctx, RoutePlanesFromPolygon, projectPath(project, "/roofPlanes/fromPolygons"), PolygonsRequest{Polygons: loopPoints(loops)}, &out)
	return out, err
}

func (c *Client) CreateTrussEnvelope(ctx context.Context, project string, e truss.Envelope) (truss.Envelope, error) {
	var out truss.Envelope
	if err := c.postJSON(ctx, RouteTrussEnvelopes, projectPath(project, "/trussEnvelopes"), e, &out); err != nil {
		return truss.Envelope{}, err
	}
	if out.GUID == "" {
		return truss.Envelope{}, missingGUID(RouteTrussEnvelopes, e.Name)
	}
	return out, nil
}

// CreateTrusses designs all envelopes in one call. The service either
// designs every envelope or fails the whole batch.
func (c *Client) CreateTrusses(ctx context.Context, project string, envelopeGUIDs []string) ([]truss.Envelope, error) {
	var out []truss.Envelope
	if err := c.postJSON(ctx, RouteCreateTrusses, projectPath(project, "/createTrusses"), envelopeGUIDs, &out); err != nil {
		return nil, err
	}
	if len(out) != len(envelopeGUIDs) {
		return nil, apperrors.Service(RouteCreateTrusses,
			fmt.Errorf("requested %d designs, received %d", len(envelopeGUIDs), len(out)))
	}
	return out, nil
}

// CreateProfileTruss designs a truss from its chord profile and returns the
// new truss GUID.
func (c *Client) CreateProfileTruss(ctx context.Context, project string, p truss.Profile) (string, error) {
	var guid string
	if err := c.postJSON(ctx, RouteProfileTruss, projectPath(project, "/createProfileTruss"), p, &guid); err != nil {
		return "", err
	}
	if guid == "" {
		return "", missingGUID(RouteProfileTruss, p.Name)
	}
	return guid, nil
}

func missingGUID(route, name string) error {
	return apperrors.Service(route, fmt.Errorf("%q returned without guid", name))
}
