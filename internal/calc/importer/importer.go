// Package importer reads building rows from an .xlsx sheet into configs.
package importer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Roofline/internal/calc/roof"
	"Roofline/internal/config"
	apperrors "Roofline/internal/errors"
)

// Columns is the expected header row. Only project and kind are required;
// blank cells keep the base config value.
var Columns = []string{
	"project", "kind", "length_in", "span_in", "wall_height_in",
	"heel_height_in", "rise_in", "pitch", "strategy", "wing_length_in",
}

const (
	colProject = iota
	colKind
	colLength
	colSpan
	colWall
	colHeel
	colRise
	colPitch
	colStrategy
	colWingLength
)

type Building struct {
	// Row is the 1-based sheet row.
	Row    int
	Config *config.Config
}

type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

type Result struct {
	Buildings []Building
	Skipped   []RowError
}

func ReadFile(path string, base config.Config) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CategoryConfig, "open sheet").WithContext("path", path)
	}
	defer f.Close()
	return Read(f, base)
}

// Read parses the first sheet. Rows that fail to parse or validate are
// reported in Skipped; the rest inherit everything else from base.
func Read(r io.Reader, base config.Config) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CategoryConfig, "invalid sheet")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CategoryConfig, "read sheet").WithContext("sheet", sheet)
	}
	if len(rows) < 2 {
		return Result{}, apperrors.New(apperrors.CategoryConfig, "empty sheet").WithContext("sheet", sheet)
	}

	var res Result
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		cfg, err := parseRow(row, base)
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: i + 1, Err: err})
			continue
		}
		res.Buildings = append(res.Buildings, Building{Row: i + 1, Config: cfg})
	}
	return res, nil
}

func parseRow(row []string, base config.Config) (*config.Config, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	cfg := base
	if cfg.Project = cell(colProject); cfg.Project == "" {
		return nil, apperrors.Invalid("project", "must not be empty")
	}
	if k := cell(colKind); k != "" {
		cfg.Building.Kind = config.Kind(strings.ToLower(k))
	}
	if s := cell(colStrategy); s != "" {
		st, err := roof.ParseStrategy(strings.ToLower(s))
		if err != nil {
			return nil, apperrors.Invalid("strategy", err.Error())
		}
		cfg.Roof.Strategy = st
	}

	m := &cfg.Building.Main
	for _, f := range []struct {
		col  int
		name string
		dst  *float64
	}{
		{colLength, "length_in", &m.LengthIn},
		{colSpan, "span_in", &m.SpanIn},
		{colWall, "wall_height_in", &m.WallHeightIn},
		{colHeel, "heel_height_in", &m.HeelHeightIn},
		{colWingLength, "wing_length_in", &cfg.Building.Wing.LengthIn},
	} {
		if err := optional(cell(f.col), f.name, f.dst); err != nil {
			return nil, err
		}
	}

	// a filled rise or pitch cell replaces both base values
	if cell(colRise) != "" || cell(colPitch) != "" {
		var rise, pitch float64
		for _, f := range []struct {
			col  int
			name string
			dst  *float64
		}{
			{colRise, "rise_in", &rise},
			{colPitch, "pitch", &pitch},
		} {
			if err := optional(cell(f.col), f.name, f.dst); err != nil {
				return nil, err
			}
			if cell(f.col) != "" && *f.dst <= 0 {
				return nil, apperrors.Invalid(f.name, "must be positive")
			}
		}
		m.RiseIn, m.Pitch = rise, pitch
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func optional(s, field string, dst *float64) error {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return apperrors.Invalid(field, fmt.Sprintf("not a number: %q", s))
	}
	*dst = v
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Template writes an empty sheet with the header row.
func Template(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &header); err != nil {
		return apperrors.Internal("write header", err)
	}
	if err := f.Write(w); err != nil {
		return apperrors.Internal("write sheet", err)
	}
	return nil
}
