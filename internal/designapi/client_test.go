package designapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"Roofline/internal/calc/truss"
	"Roofline/internal/designapi"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
	"Roofline/internal/metrics"
)

type captured struct {
	path   string
	auth   string
	header string
	body   []byte
}

func fake(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.header = r.Header.Get("Content-Type")
		got.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestRequestShape(t *testing.T) {
	srv, got := fake(t, http.StatusCreated, `{"guid":"p-1","name":"API Test Project"}`)
	c := designapi.NewClient(srv.URL+"/", "secret")

	p, err := c.CreateProject(context.Background(), "API Test Project")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.GUID)
	assert.Equal(t, "/projects", got.path)
	assert.Equal(t, "JWT secret", got.auth)
	assert.Equal(t, "application/json", got.header)
	assert.JSONEq(t, `{"name":"API Test Project"}`, string(got.body))
}

func TestCreateTrussesSendsGUIDArray(t *testing.T) {
	srv, got := fake(t, http.StatusOK, `[{"guid":"t-1","name":"Common 1","componentDesignGuid":"d-1",
		"leftPoint":{"x":84,"y":0},"rightPoint":{"x":84,"y":288},"thickness":1.5,"justification":"Front",
		"roofContainerGuid":"c-1"}]`)
	c := designapi.NewClient(srv.URL, "k")

	out, err := c.CreateTrusses(context.Background(), "p 1", []string{"t-1"})
	require.NoError(t, err)
	assert.Equal(t, "/projects/p 1/createTrusses", got.path)

	var sent []string
	require.NoError(t, json.Unmarshal(got.body, &sent))
	assert.Equal(t, []string{"t-1"}, sent)

	require.Len(t, out, 1)
	assert.Equal(t, "d-1", out[0].ComponentDesignGUID)
	assert.Equal(t, truss.ContainerBound{Container: "c-1"}, out[0].Bound)
	assert.Equal(t, geom.P2(84, 288), out[0].RightPoint)
}

func TestCreateTrussesCountMismatch(t *testing.T) {
	srv, _ := fake(t, http.StatusOK, `[]`)
	c := designapi.NewClient(srv.URL, "k")

	_, err := c.CreateTrusses(context.Background(), "p", []string{"a", "b"})
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryService))
}

func TestProfileTrussReturnsGUIDString(t *testing.T) {
	srv, got := fake(t, http.StatusCreated, `"truss-9"`)
	c := designapi.NewClient(srv.URL, "k")

	p := truss.Profile{
		Name:              "RT-1",
		TopChordPoints:    []geom.Point2D{geom.P2(0, 4), geom.P2(144, 76), geom.P2(288, 4)},
		BottomChordPoints: []geom.Point2D{geom.P2(0, 0), geom.P2(288, 0)},
	}
	guid, err := c.CreateProfileTruss(context.Background(), "p", p)
	require.NoError(t, err)
	assert.Equal(t, "truss-9", guid)
	assert.Equal(t, "/projects/p/createProfileTruss", got.path)
}

func TestServiceErrorMapping(t *testing.T) {
	srv, _ := fake(t, http.StatusUnprocessableEntity, "  roof container is not closed\n")
	rec := metrics.NewPrometheusRecorder(nil)
	c := designapi.NewClient(srv.URL, "k")
	c.Metrics = rec

	_, err := c.CreateProject(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryService))
	assert.True(t, apperrors.Sent(err))

	var se *designapi.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, designapi.RouteProjects, se.Route)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Status)
	assert.Equal(t, "roof container is not closed", se.Body)
}

func TestMissingGUIDIsServiceError(t *testing.T) {
	srv, _ := fake(t, http.StatusCreated, `{"name":"p"}`)
	c := designapi.NewClient(srv.URL, "k")

	_, err := c.CreateProject(context.Background(), "p")
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryService))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := designapi.NewClient(url, "k")
	_, err := c.CreateProject(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryNetwork))
	assert.True(t, apperrors.Sent(err))
}

func TestMissingTokenSendsNothing(t *testing.T) {
	srv, got := fake(t, http.StatusCreated, `{"guid":"p"}`)
	c := designapi.NewClient(srv.URL, "")

	_, err := c.CreateProject(context.Background(), "p")
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))
	assert.False(t, apperrors.Sent(err))
	assert.Empty(t, got.path)
}

func TestLimiterHonoursContext(t *testing.T) {
	srv, _ := fake(t, http.StatusCreated, `{"guid":"p"}`)
	c := designapi.NewClient(srv.URL, "k")
	c.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := c.CreateProject(context.Background(), "p")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.CreateProject(ctx, "p")
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInternal))
	assert.False(t, apperrors.Sent(err))
}

func TestProjectURL(t *testing.T) {
	c := designapi.NewClient("", "k")
	assert.Equal(t, designapi.DefaultBaseURL, c.BaseURL)
	assert.Equal(t, "https://design.paragontruss.com/abc-123", c.ProjectURL("abc-123"))

	c.ViewerURL = "http://localhost:9000/"
	assert.Equal(t, "http://localhost:9000/abc", c.ProjectURL("abc"))
}
