package designstub_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Roofline/internal/auth"
	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/footprint"
	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	"Roofline/internal/designapi"
	"Roofline/internal/designstub"
	"Roofline/internal/geom"
)

func counter() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("g%d", n.Add(1)) }
}

func serve(t *testing.T, opts ...designstub.Option) (*designstub.Server, *httptest.Server) {
	t.Helper()
	stub := designstub.New(opts...)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return stub, srv
}

func post(t *testing.T, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", auth.Header(token))
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func gable(t *testing.T) footprint.Footprint {
	t.Helper()
	f, err := footprint.Calculate(footprint.Input{LengthIn: 720, SpanIn: 288, WallHeightIn: 96, HeelHeightIn: 4, RiseIn: 72})
	require.NoError(t, err)
	return f
}

func TestRequiresAuthorization(t *testing.T) {
	stub, srv := serve(t)

	res := post(t, srv.URL+"/projects", "", `{"name":"p"}`)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/projects", strings.NewReader(`{"name":"p"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer abc")
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res2.StatusCode)

	assert.Empty(t, stub.Calls())
}

func TestStatusCodes(t *testing.T) {
	_, srv := serve(t)

	res := post(t, srv.URL+"/projects", "k", `{"name":"p"}`)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/projects", "k", `{`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/projects", "k", `{}`).StatusCode)

	env := `{"name":"South","leftPoint":{"x":0,"y":0},"rightPoint":{"x":720,"y":0},"thickness":3.5,"top":96,"bottom":0,"justification":"Front"}`
	assert.Equal(t, http.StatusNotFound, post(t, srv.URL+"/projects/nope/bearingEnvelopes", "k", env).StatusCode)
}

func TestContainerValidation(t *testing.T) {
	_, srv := serve(t)
	c := designapi.NewClient(srv.URL, "k")
	ctx := context.Background()

	p, err := c.CreateProject(ctx, "p")
	require.NoError(t, err)

	good := roof.Solid("Main", gable(t))
	out, err := c.CreateRoofContainer(ctx, p.GUID, good)
	require.NoError(t, err)
	assert.NotEmpty(t, out.GUID)
	assert.Equal(t, good.SolidData, out.SolidData)

	bad := good
	bad.SolidData.Faces = bad.SolidData.Faces[:len(bad.SolidData.Faces)-1]
	_, err = c.CreateRoofContainer(ctx, p.GUID, bad)
	var se *designapi.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Status)
}

func TestPlanesFromFacesInferSupportAndCuts(t *testing.T) {
	_, srv := serve(t, designstub.WithGUIDs(counter()))
	c := designapi.NewClient(srv.URL, "k")
	ctx := context.Background()
	f := gable(t)

	p, err := c.CreateProject(ctx, "p")
	require.NoError(t, err)
	bearings := map[string]string{}
	for _, e := range bearing.Perimeter(f, bearing.Input{}) {
		out, err := c.CreateBearingEnvelope(ctx, p.GUID, e)
		require.NoError(t, err)
		bearings[e.Name] = out.GUID
	}

	loops := roof.Faces(f)
	planes, err := c.CreateRoofPlanesFromFaces(ctx, p.GUID, loops)
	require.NoError(t, err)
	require.Len(t, planes, 2)

	south, north := planes[0], planes[1]
	assert.Equal(t, roof.ReferenceBearingEnvelope, south.ReferenceGeometry.Type)
	assert.Equal(t, bearings["South"], south.ReferenceGeometry.BearingEnvelopeGUID)
	assert.Equal(t, bearings["North"], north.ReferenceGeometry.BearingEnvelopeGUID)
	assert.InDelta(t, 100.0, south.Elevation, 1e-9)
	assert.InDelta(t, 4.0, south.HeelHeight, 1e-9)
	assert.InDelta(t, 6.0, south.Slope, 1e-9)

	require.Len(t, south.Cuts, 1)
	assert.Equal(t, roof.CutAgainstPlane, south.Cuts[0].Type)
	assert.Equal(t, north.GUID, south.Cuts[0].CuttingPlaneGUID)
	assert.Equal(t, south.GUID, north.Cuts[0].CuttingPlaneGUID)

	keys, err := roof.Bind(loops, planes)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Main South": south.GUID, "Main North": north.GUID}, keys)
}

func TestCrossGablePlanesCutAlongValleys(t *testing.T) {
	_, srv := serve(t, designstub.WithGUIDs(counter()))
	c := designapi.NewClient(srv.URL, "k")
	ctx := context.Background()
	cg, err := footprint.CrossGable(footprint.Input{LengthIn: 720, SpanIn: 288, WallHeightIn: 96, HeelHeightIn: 4, RiseIn: 72}, footprint.Wing{})
	require.NoError(t, err)

	p, err := c.CreateProject(ctx, "p")
	require.NoError(t, err)
	for _, e := range append(bearing.Perimeter(cg.Main, bearing.Input{Prefix: "Main"}),
		bearing.WingPerimeter(cg, bearing.Input{Prefix: "Upper"})...) {
		_, err := c.CreateBearingEnvelope(ctx, p.GUID, e)
		require.NoError(t, err)
	}

	loops := roof.CrossGableFaces(cg)
	planes, err := c.CreateRoofPlanesFromFaces(ctx, p.GUID, loops)
	require.NoError(t, err)
	keys, err := roof.Bind(loops, planes)
	require.NoError(t, err)

	cutBy := func(key string) []string {
		for i, l := range loops {
			if l.Key != key {
				continue
			}
			var out []string
			for _, cut := range planes[i].Cuts {
				out = append(out, cut.CuttingPlaneGUID)
			}
			return out
		}
		return nil
	}
	assert.ElementsMatch(t, []string{keys["Main South"], keys["Upper East"]}, cutBy("Main North East"))
	assert.ElementsMatch(t, []string{keys["Main South"], keys["Upper West"]}, cutBy("Main North West"))
	assert.ElementsMatch(t, []string{keys["Main North East"], keys["Upper West"]}, cutBy("Upper East"))
}

func TestPlanesFromPolygonsAreAbsolute(t *testing.T) {
	_, srv := serve(t)
	c := designapi.NewClient(srv.URL, "k")
	ctx := context.Background()

	p, err := c.CreateProject(ctx, "p")
	require.NoError(t, err)
	planes, err := c.CreateRoofPlanesFromPolygons(ctx, p.GUID, roof.Faces(gable(t)))
	require.NoError(t, err)
	require.Len(t, planes, 2)
	for _, pl := range planes {
		assert.Equal(t, roof.ReferenceAbsolute, pl.ReferenceGeometry.Type)
		assert.Empty(t, pl.Cuts)
	}

	// a single face shares no edge
	_, err = c.CreateRoofPlanesFromFaces(ctx, p.GUID, roof.Faces(gable(t))[:1])
	var se *designapi.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Status)
}

func TestEnvelopeReferencesAndDesign(t *testing.T) {
	_, srv := serve(t)
	c := designapi.NewClient(srv.URL, "k")
	ctx := context.Background()
	f := gable(t)

	p, err := c.CreateProject(ctx, "p")
	require.NoError(t, err)
	container, err := c.CreateRoofContainer(ctx, p.GUID, roof.Solid("Main", f))
	require.NoError(t, err)

	dangling, err := truss.NewBuilder("Lost", geom.P2(84, 0), geom.P2(84, 288)).Container("unknown").Build()
	require.NoError(t, err)
	_, err = c.CreateTrussEnvelope(ctx, p.GUID, dangling)
	var se *designapi.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Status)

	env, err := truss.NewBuilder("Common 1", geom.P2(84, 0), geom.P2(84, 288)).Container(container.GUID).Build()
	require.NoError(t, err)
	created, err := c.CreateTrussEnvelope(ctx, p.GUID, env)
	require.NoError(t, err)
	assert.Empty(t, created.ComponentDesignGUID)

	designed, err := c.CreateTrusses(ctx, p.GUID, []string{created.GUID})
	require.NoError(t, err)
	require.Len(t, designed, 1)
	assert.Equal(t, created.GUID, designed[0].GUID)
	assert.NotEmpty(t, designed[0].ComponentDesignGUID)

	// one unknown guid fails the whole batch
	_, err = c.CreateTrusses(ctx, p.GUID, []string{created.GUID, "missing"})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestRateLimit(t *testing.T) {
	_, srv := serve(t, designstub.WithRateLimit(0, 1))

	assert.Equal(t, http.StatusCreated, post(t, srv.URL+"/projects", "k", `{"name":"p"}`).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, post(t, srv.URL+"/projects", "k", `{"name":"p"}`).StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := serve(t)
	post(t, srv.URL+"/projects", "k", `{"name":"p"}`)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `roofline_design_calls_total{route="/projects",status="201"} 1`)
}

func TestCallsRecordRouteTemplates(t *testing.T) {
	stub, srv := serve(t)
	c := designapi.NewClient(srv.URL, "k")
	ctx := context.Background()

	p, err := c.CreateProject(ctx, "p")
	require.NoError(t, err)
	_, err = c.CreateBearingEnvelope(ctx, p.GUID, bearing.Perimeter(gable(t), bearing.Input{})[0])
	require.NoError(t, err)

	assert.Equal(t, []string{designapi.RouteProjects, designapi.RouteBearingEnvelopes}, stub.Calls())
}

func TestCallHistoryIsBounded(t *testing.T) {
	for _, tc := range []struct {
		keep int
		want []string
	}{
		{0, nil},
		{2, []string{designapi.RouteBearingEnvelopes, designapi.RouteBearingEnvelopes}},
	} {
		t.Run(fmt.Sprint(tc.keep), func(t *testing.T) {
			stub, srv := serve(t, designstub.WithCallHistory(tc.keep))
			c := designapi.NewClient(srv.URL, "k")
			ctx := context.Background()

			p, err := c.CreateProject(ctx, "p")
			require.NoError(t, err)
			for _, e := range bearing.Perimeter(gable(t), bearing.Input{}) {
				_, err := c.CreateBearingEnvelope(ctx, p.GUID, e)
				require.NoError(t, err)
			}

			assert.Equal(t, tc.want, stub.Calls())
			assert.Equal(t, 5, stub.Requests())
		})
	}
}
