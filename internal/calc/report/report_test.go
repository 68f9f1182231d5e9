package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	"Roofline/internal/config"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/pipeline"
)

func plan(t *testing.T, kind config.Kind, s roof.Strategy) pipeline.Plan {
	t.Helper()
	cfg := config.Default()
	cfg.Building.Kind = kind
	cfg.Roof.Strategy = s
	p, err := pipeline.Build(cfg)
	require.NoError(t, err)
	return p
}

func TestWritePDF(t *testing.T) {
	p := plan(t, config.KindCrossGable, roof.StrategyFaces)
	res := pipeline.Result{
		Refs:     pipeline.Refs{Trusses: map[string]string{"Common 1": "t-1"}},
		Designed: []truss.Envelope{{GUID: "t-1", ComponentDesignGUID: "d-1"}},
	}

	var buf bytes.Buffer
	err := Write(&buf, Input{
		Author:     "QA",
		ProjectURL: "https://design.paragontruss.com/abc",
		Plan:       p,
		Result:     res,
		Date:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestWriteRequiresProject(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Input{})
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
	assert.Zero(t, buf.Len())
}

func TestTables(t *testing.T) {
	p := plan(t, config.KindGable, roof.StrategySolid)
	res := pipeline.Result{
		Refs: pipeline.Refs{
			Bearings:   map[string]string{"South": "b-1"},
			Containers: map[string]string{"Main": "c-1"},
			Trusses:    map[string]string{"Common 1": "t-1"},
		},
		Designed: []truss.Envelope{{GUID: "t-1", ComponentDesignGUID: "d-1"}},
	}
	ts := tables(Input{Plan: p, Result: res})
	require.Len(t, ts, 3)

	assert.Equal(t, []string{"South", "(0, 0)", "(720, 0)", `96"`, "b-1"}, ts[0].rows[0])
	assert.Equal(t, []string{"Main", "solid", "c-1"}, ts[1].rows[0])
	assert.Equal(t, []string{"Common 1", "(84, 0)", "(84, 288)", "container Main", "d-1"}, ts[2].rows[0])
	for _, tb := range ts {
		for _, row := range tb.rows {
			assert.Len(t, row, len(tb.header))
		}
		assert.Len(t, tb.widths, len(tb.header))
	}
}

func TestBound(t *testing.T) {
	assert.Equal(t, "container Upper", Bound(truss.ContainerBound{Container: "Upper"}))
	assert.Equal(t, `top Upper East, Upper West / bottom ceiling 96"`, Bound(truss.CutBound{
		Top:    []truss.Cut{truss.RoofPlaneCut("Upper East"), truss.RoofPlaneCut("Upper West")},
		Bottom: []truss.Cut{truss.CeilingCut(96)},
	}))
	assert.Equal(t, "top - / bottom Main North", Bound(truss.CutBound{Bottom: []truss.Cut{truss.RoofPlaneCut("Main North")}}))
	assert.Equal(t, "-", Bound(nil))
}
