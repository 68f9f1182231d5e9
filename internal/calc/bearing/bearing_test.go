package bearing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Roofline/internal/calc/footprint"
	"Roofline/internal/geom"
)

func gable(t *testing.T) footprint.Footprint {
	t.Helper()
	f, err := footprint.Calculate(footprint.Input{LengthIn: 720, SpanIn: 288, WallHeightIn: 108, RiseIn: 120})
	require.NoError(t, err)
	return f
}

func TestPerimeterMatchesFootprintEdges(t *testing.T) {
	envs := Perimeter(gable(t), Input{})
	require.Len(t, envs, 4)

	want := []struct {
		name        string
		left, right geom.Point2D
	}{
		{"South", geom.P2(0, 0), geom.P2(720, 0)},
		{"East", geom.P2(720, 0), geom.P2(720, 288)},
		{"North", geom.P2(720, 288), geom.P2(0, 288)},
		{"West", geom.P2(0, 288), geom.P2(0, 0)},
	}
	for i, w := range want {
		assert.Equal(t, w.name, envs[i].Name)
		assert.Equal(t, w.left, envs[i].LeftPoint)
		assert.Equal(t, w.right, envs[i].RightPoint)
		assert.Equal(t, 3.5, envs[i].Thickness)
		assert.Equal(t, 108.0, envs[i].Top)
		assert.Equal(t, 0.0, envs[i].Bottom)
		assert.Equal(t, geom.Front, envs[i].Justification)
		assert.NoError(t, Validate(envs[i]))
	}
}

func TestWingPerimeterSkipsSharedEdge(t *testing.T) {
	c, err := footprint.CrossGable(footprint.Input{LengthIn: 720, SpanIn: 288, WallHeightIn: 96, HeelHeightIn: 4, RiseIn: 72}, footprint.Wing{})
	require.NoError(t, err)

	envs := WingPerimeter(c, Input{Prefix: "Upper"})
	require.Len(t, envs, 3)
	assert.Equal(t, "Upper East", envs[0].Name)
	assert.Equal(t, geom.P2(504, 288), envs[0].LeftPoint)
	assert.Equal(t, geom.P2(504, 720), envs[0].RightPoint)
	assert.Equal(t, "Upper West", envs[2].Name)
	assert.Equal(t, geom.P2(216, 288), envs[2].RightPoint)
}

func TestValidate(t *testing.T) {
	ok := Envelope{Name: "South", LeftPoint: geom.P2(0, 0), RightPoint: geom.P2(1, 0), Thickness: 3.5, Top: 96, Justification: geom.Front}
	require.NoError(t, Validate(ok))

	cases := map[string]func(e *Envelope){
		"name":          func(e *Envelope) { e.Name = "" },
		"zero length":   func(e *Envelope) { e.RightPoint = e.LeftPoint },
		"thickness":     func(e *Envelope) { e.Thickness = 0 },
		"top":           func(e *Envelope) { e.Top = e.Bottom },
		"justification": func(e *Envelope) { e.Justification = "Left" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := ok
			mutate(&e)
			assert.Error(t, Validate(e))
		})
	}
}
