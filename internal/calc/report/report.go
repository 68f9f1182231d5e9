// Package report renders a PDF summary of a planned or submitted building.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"Roofline/internal/calc/truss"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
	"Roofline/internal/pipeline"
)

type Input struct {
	Title  string
	Author string
	// ProjectURL is empty for a dry run.
	ProjectURL string
	Plan       pipeline.Plan
	Result     pipeline.Result
	Date       time.Time
}

type table struct {
	title  string
	header []string
	widths []float64
	rows   [][]string
}

// Write renders in as an A4 PDF.
func Write(w io.Writer, in Input) error {
	if in.Plan.Project == "" {
		return apperrors.Invalid("project", "must not be empty")
	}
	if in.Title == "" {
		in.Title = "Roof Framing Summary"
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(in.Title, true)
	pdf.SetAuthor(in.Author, true)
	pdf.SetCreationDate(in.Date)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, in.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", in.Plan.Project))
	pdf.Ln(6)
	if in.Author != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Author: %s", in.Author))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", in.Date.Format("2006-01-02")))
	pdf.Ln(6)
	if in.ProjectURL != "" {
		pdf.CellFormat(0, 6, in.ProjectURL, "", 1, "L", false, 0, in.ProjectURL)
	} else {
		pdf.Cell(0, 6, "Dry run: nothing was submitted.")
		pdf.Ln(6)
	}
	pdf.Ln(4)

	for _, t := range tables(in) {
		render(pdf, t)
	}

	if err := pdf.Output(w); err != nil {
		return apperrors.Internal("render report", err)
	}
	return nil
}

func render(pdf *gofpdf.Fpdf, t table) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, t.title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range t.header {
		pdf.CellFormat(t.widths[i], 6, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range t.rows {
		for i, c := range row {
			pdf.CellFormat(t.widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func tables(in Input) []table {
	p, refs := in.Plan, in.Result.Refs

	bearings := table{
		title:  "Bearing envelopes",
		header: []string{"Name", "Left", "Right", "Top", "GUID"},
		widths: []float64{35, 30, 30, 15, 80},
	}
	for _, b := range p.Bearings {
		bearings.rows = append(bearings.rows, []string{
			b.Name, point(b.LeftPoint), point(b.RightPoint), inches(b.Top), refs.Bearings[b.Name],
		})
	}

	rf := table{
		title:  "Roof",
		header: []string{"Key", "Strategy", "GUID"},
		widths: []float64{50, 30, 110},
	}
	if p.Roof != nil {
		strategy := string(p.Roof.Strategy())
		guids := refs.Planes
		if refs.Containers != nil {
			guids = refs.Containers
		}
		for _, k := range p.Roof.Keys() {
			rf.rows = append(rf.rows, []string{k, strategy, guids[k]})
		}
	}

	designed := make(map[string]string, len(in.Result.Designed))
	for _, d := range in.Result.Designed {
		designed[d.GUID] = d.ComponentDesignGUID
	}
	trusses := table{
		title:  "Truss envelopes",
		header: []string{"Name", "Left", "Right", "Bound", "Design"},
		widths: []float64{25, 30, 30, 55, 50},
	}
	for _, e := range p.Trusses {
		trusses.rows = append(trusses.rows, []string{
			e.Name, point(e.LeftPoint), point(e.RightPoint), Bound(e.Bound), designed[refs.Trusses[e.Name]],
		})
	}
	return []table{bearings, rf, trusses}
}

// Bound describes a truss bound in one line.
func Bound(b truss.Bound) string {
	switch b := b.(type) {
	case truss.ContainerBound:
		return "container " + b.Container
	case truss.CutBound:
		return fmt.Sprintf("top %s / bottom %s", cuts(b.Top), cuts(b.Bottom))
	}
	return "-"
}

func cuts(cs []truss.Cut) string {
	if len(cs) == 0 {
		return "-"
	}
	out := make([]string, len(cs))
	for i, c := range cs {
		switch c.Kind {
		case truss.CutRoofPlane:
			out[i] = c.Ref
		case truss.CutCeiling:
			out[i] = "ceiling " + inches(c.Elevation)
		default:
			out[i] = "plane"
		}
	}
	return strings.Join(out, ", ")
}

func point(p geom.Point2D) string {
	return fmt.Sprintf("(%s, %s)", num(p.X), num(p.Y))
}

func inches(v float64) string {
	return num(v) + `"`
}

func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
