package importer

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Roofline/internal/calc/roof"
	"Roofline/internal/config"
	apperrors "Roofline/internal/errors"
)

func sheet(t *testing.T, rows map[int][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	name := f.GetSheetName(0)
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(name, "A1", &header))
	for n, row := range rows {
		require.NoError(t, f.SetSheetRow(name, fmt.Sprintf("A%d", n), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadBuildings(t *testing.T) {
	buf := sheet(t, map[int][]any{
		2: {"Garage", "gable", "480", "288", "", "", "", "6", "Faces"},
		3: {"House", "Cross-Gable", "", "", "", "4.163118960624631"},
		5: {"Bad", "gable", "abc"},
		6: {"", "gable"},
		7: {"Hip", "hip"},
	})

	res, err := Read(buf, *config.Default())
	require.NoError(t, err)
	require.Len(t, res.Buildings, 2)

	garage := res.Buildings[0]
	assert.Equal(t, 2, garage.Row)
	assert.Equal(t, "Garage", garage.Config.Project)
	assert.Equal(t, config.KindGable, garage.Config.Building.Kind)
	assert.Equal(t, 480.0, garage.Config.Building.Main.LengthIn)
	assert.Equal(t, 96.0, garage.Config.Building.Main.WallHeightIn, "blank cell keeps the base value")
	assert.Equal(t, 0.0, garage.Config.Building.Main.RiseIn)
	assert.Equal(t, 6.0, garage.Config.Building.Main.Pitch)
	assert.Equal(t, roof.StrategyFaces, garage.Config.Roof.Strategy)

	house := res.Buildings[1]
	assert.Equal(t, config.KindCrossGable, house.Config.Building.Kind)
	assert.Equal(t, 720.0, house.Config.Building.Main.LengthIn)
	assert.Equal(t, 72.0, house.Config.Building.Main.RiseIn)
	assert.InDelta(t, 4.163118960624631, house.Config.Building.Main.HeelHeightIn, 1e-12)

	require.Len(t, res.Skipped, 3)
	rows := []int{res.Skipped[0].Row, res.Skipped[1].Row, res.Skipped[2].Row}
	assert.Equal(t, []int{5, 6, 7}, rows)
	for _, s := range res.Skipped {
		assert.True(t, apperrors.IsCategory(s, apperrors.CategoryValidation), s.Error())
	}
}

func TestReadRejectsNonPositiveRiseAndPitch(t *testing.T) {
	res, err := Read(sheet(t, map[int][]any{
		2: {"Sunk", "gable", "", "", "", "", "-40"},
		3: {"Flat", "gable", "", "", "", "", "", "0"},
		4: {"Steep", "gable", "", "", "", "", "90"},
	}), *config.Default())
	require.NoError(t, err)

	require.Len(t, res.Skipped, 2)
	for i, want := range []struct {
		row   int
		field string
	}{{2, "rise_in"}, {3, "pitch"}} {
		s := res.Skipped[i]
		assert.Equal(t, want.row, s.Row)
		var ae *apperrors.Error
		require.True(t, errors.As(s, &ae), s.Error())
		assert.Equal(t, apperrors.CategoryValidation, ae.Category)
		assert.Equal(t, want.field, ae.Context["field"])
	}

	require.Len(t, res.Buildings, 1)
	assert.Equal(t, 90.0, res.Buildings[0].Config.Building.Main.RiseIn)
	assert.Equal(t, 0.0, res.Buildings[0].Config.Building.Main.Pitch)
}

func TestRowsDoNotShareBaseState(t *testing.T) {
	base := *config.Default()
	res, err := Read(sheet(t, map[int][]any{
		2: {"A", "gable", "500"},
		3: {"B", "gable"},
	}), base)
	require.NoError(t, err)
	require.Len(t, res.Buildings, 2)
	assert.Equal(t, 500.0, res.Buildings[0].Config.Building.Main.LengthIn)
	assert.Equal(t, 720.0, res.Buildings[1].Config.Building.Main.LengthIn)
	assert.Equal(t, 720.0, base.Building.Main.LengthIn)
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Template(&buf))

	_, err := Read(&buf, *config.Default())
	require.Error(t, err, "header only")
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))
}

func TestReadRejectsNonSheet(t *testing.T) {
	_, err := Read(bytes.NewBufferString("project,kind\n"), *config.Default())
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))

	_, err = ReadFile("does-not-exist.xlsx", *config.Default())
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CategoryConfig, appErr.Category)
}
