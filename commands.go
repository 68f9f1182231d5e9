package main

import (
	"fmt"
	"log/slog"
	"os"

	"Roofline/internal/calc/batch"
	"Roofline/internal/calc/footprint"
	"Roofline/internal/calc/importer"
	"Roofline/internal/calc/report"
	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	"Roofline/internal/config"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/metrics"
	"Roofline/internal/pipeline"
)

type PlanCmd struct {
	Strategy string `help:"Override roof.strategy (solid, faces, polygons)"`
	PDF      string `name:"pdf" help:"Write a PDF summary to this path"`
}

func (c *PlanCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config, c.Strategy)
	if err != nil {
		return err
	}
	plan, err := pipeline.Build(cfg)
	if err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return err
	}
	entry := batch.Entry{Kind: cfg.Building.Kind, Plan: plan}
	if err := printJSON(batch.Summarize(entry)); err != nil {
		return err
	}
	return writeReport(c.PDF, report.Input{Plan: plan})
}

type SubmitCmd struct {
	Strategy    string `help:"Override roof.strategy (solid, faces, polygons)"`
	PDF         string `name:"pdf" help:"Write a PDF summary to this path"`
	MetricsAddr string `help:"Serve Prometheus metrics on this address while submitting"`
}

func (c *SubmitCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config, c.Strategy)
	if err != nil {
		return err
	}
	plan, err := pipeline.Build(cfg)
	if err != nil {
		return err
	}

	rec := metrics.NewPrometheusRecorder(nil)
	defer serveMetrics(c.MetricsAddr, rec)()
	client, err := newClient(cfg, rec)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := newRunner(cfg, client, rec).Run(ctx, plan)
	if err != nil {
		if res.Project.GUID != "" {
			slog.Warn("Partial project left on the service", "url", client.ProjectURL(res.Project.GUID))
		}
		return err
	}
	url := client.ProjectURL(res.Project.GUID)
	slog.Info("Trusses designed", "count", len(res.Designed))
	fmt.Println(url)
	return writeReport(c.PDF, report.Input{ProjectURL: url, Plan: plan, Result: res})
}

type ProfileCmd struct {
	Name         string  `default:"Common" help:"Truss name"`
	Overhang     float64 `help:"Overhang in inches; trusses.overhang when zero"`
	OverhangType string  `enum:"Plumb,Square,Horizontal" default:"Plumb" help:"Overhang cut type"`
}

func (c *ProfileCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config, "")
	if err != nil {
		return err
	}
	f, err := footprint.Calculate(cfg.Building.Main)
	if err != nil {
		return err
	}
	overhang := c.Overhang
	if overhang == 0 {
		overhang = cfg.Trusses.Overhang
	}
	p := truss.ProfileFor(c.Name, f, truss.Overhang{Distance: overhang, CutType: truss.OverhangCut(c.OverhangType)})

	rec := metrics.NewPrometheusRecorder(nil)
	client, err := newClient(cfg, rec)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	proj, guid, err := newRunner(cfg, client, rec).RunProfile(ctx, cfg.Project, p)
	if err != nil {
		return err
	}
	slog.Info("Profile truss designed", "truss", guid)
	fmt.Println(client.ProjectURL(proj.GUID))
	return nil
}

type ImportCmd struct {
	File     string `arg:"" help:"Spreadsheet with one building per row"`
	Template bool   `help:"Write an empty sheet with the expected columns to FILE and exit"`
	Submit   bool   `help:"Submit every building, one project each"`
}

func (c *ImportCmd) Run(cli *CLI) error {
	if c.Template {
		f, err := os.Create(c.File)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CategoryConfig, "create sheet").WithContext("path", c.File)
		}
		defer f.Close()
		return importer.Template(f)
	}

	cfg, err := loadConfig(cli.Config, "")
	if err != nil {
		return err
	}
	res, err := importer.ReadFile(c.File, *cfg)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		slog.Warn("Skipping row", "row", s.Row, "error", s.Err)
	}
	entries, err := batch.Build(res.Buildings)
	if err != nil {
		return err
	}
	if !c.Submit {
		summaries := make([]batch.Summary, len(entries))
		for i, e := range entries {
			summaries[i] = batch.Summarize(e)
		}
		return printJSON(summaries)
	}

	rec := metrics.NewPrometheusRecorder(nil)
	client, err := newClient(cfg, rec)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	outcomes := batch.Submit(ctx, newRunner(cfg, client, rec), entries)
	for _, o := range outcomes {
		if o.Err != nil {
			slog.Error("Building failed", "row", o.Entry.Row, "project", o.Entry.Plan.Project, "error", o.Err)
			continue
		}
		fmt.Printf("%s\t%s\n", o.Entry.Plan.Project, client.ProjectURL(o.Result.Project.GUID))
	}
	if failed := batch.Failed(outcomes); len(failed) > 0 {
		return apperrors.New(apperrors.CategoryService, fmt.Sprintf("%d of %d buildings failed", len(failed), len(outcomes))).
			WithContext("first_error", failed[0].Err.Error())
	}
	return nil
}

func loadConfig(path, strategy string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if strategy != "" {
		s, err := roof.ParseStrategy(strategy)
		if err != nil {
			return nil, apperrors.Invalid("strategy", err.Error())
		}
		cfg.Roof.Strategy = s
	}
	return cfg, nil
}
