// Package designapi is the JSON client for the remote truss design service.
package designapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"Roofline/internal/auth"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/metrics"
)

const (
	DefaultBaseURL   = "https://designserver.paragontruss.com/api/public"
	DefaultViewerURL = "https://design.paragontruss.com"
)

// Route templates, used as metric and error labels.
const (
	RouteProjects          = "/projects"
	RouteBearingEnvelopes  = "/projects/{p}/bearingEnvelopes"
	RouteRoofContainers    = "/projects/{p}/roofContainers"
	RoutePlanesFromFaces   = "/projects/{p}/roofPlanes/fromFaces"
	RoutePlanesFromPolygon = "/projects/{p}/roofPlanes/fromPolygons"
	RouteTrussEnvelopes    = "/projects/{p}/trussEnvelopes"
	RouteCreateTrusses     = "/projects/{p}/createTrusses"
	RouteProfileTruss      = "/projects/{p}/createProfileTruss"
)

const maxErrorBody = 4 << 10

type Client struct {
	BaseURL    string
	ViewerURL  string
	Token      string
	HTTPClient *http.Client
	// Limiter paces outbound calls. Nil means unlimited.
	Limiter *rate.Limiter
	Metrics metrics.Recorder
	Logger  *slog.Logger
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ViewerURL:  DefaultViewerURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Metrics:    metrics.NoopRecorder{},
		Logger:     slog.Default(),
	}
}

// ServiceError is a non-2xx response from the design service.
type ServiceError struct {
	Route  string
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.Route, e.Status)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Route, e.Status, e.Body)
}

// ProjectURL is the viewer link for a project.
func (c *Client) ProjectURL(guid string) string {
	base := c.ViewerURL
	if base == "" {
		base = DefaultViewerURL
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(guid)
}

func projectPath(guid, suffix string) string {
	return "/projects/" + url.PathEscape(guid) + suffix
}

func (c *Client) postJSON(ctx context.Context, route, path string, in, out any) error {
	if c.Token == "" {
		return apperrors.ConfigRequired("PARAGON_API_KEY")
	}
	b, err := json.Marshal(in)
	if err != nil {
		return apperrors.Internal("encode "+route, err)
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return apperrors.Internal("rate limiter", err).WithContext("route", route)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return apperrors.Internal("build request", err).WithContext("route", route)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth.Header(c.Token))

	start := time.Now()
	res, err := c.httpClient().Do(req)
	if err != nil {
		c.observe(route, start, 0)
		return apperrors.Transport(route, err)
	}
	defer res.Body.Close()
	c.observe(route, start, res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return apperrors.Service(route, &ServiceError{Route: route, Status: res.StatusCode, Body: strings.TrimSpace(string(body))}).
			WithContext("status", res.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperrors.Service(route, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) observe(route string, start time.Time, status int) {
	d := time.Since(start)
	if c.Metrics != nil {
		c.Metrics.ObserveCall(route, d, status)
	}
	if c.Logger != nil {
		c.Logger.Debug("design service call", slog.String("route", route), slog.Int("status", status), slog.Duration("took", d))
	}
}
