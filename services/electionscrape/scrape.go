package electionscrape

import (
	"context"
	"errors"
	"fmt"
	"kenosha-results/lib/chrono"
	"kenosha-results/lib/export"
	"kenosha-results/lib/results"
	"kenosha-results/lib/scrapers/kenosha"
	"kenosha-results/lib/telemetry"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/electionscrape")

const (
	report_run_duplicate = "run.duplicate"
	report_run_unit      = "run.unit"
)

// Source is where reporting units and their records come from,
// *kenosha.Client in production.
type Source interface {
	Discover(ctx context.Context, filter []string) (kenosha.Plan, error)
	ScrapeUnit(ctx context.Context, unit kenosha.ReportingUnit, layout results.Layout) kenosha.UnitOutcome
}

type Options struct {
	Layout results.Layout
	// Municipalities restricts the run to the named municipalities,
	// empty means every municipality of the election.
	Municipalities []string
	Writer         export.Writer
	OutputDir      string
	OutputPrefix   string
	Time           chrono.TimeAPI
	Tel            telemetry.API
}

// MunicipalitySummary counts unit outcomes of a single municipality.
type MunicipalitySummary struct {
	Municipality string
	Units        int
	Records      int
	Empty        int
	Failed       int
	WardIssues   int
}

type Report struct {
	// Path is the written output file, empty if nothing was written.
	Path       string
	Table      results.Table
	Summaries  []MunicipalitySummary
	Duplicates int
	Elapsed    time.Duration
}

func (r Report) FailedUnits() int {
	n := 0
	for _, s := range r.Summaries {
		n += s.Failed
	}
	return n
}

type run struct {
	source    Source
	opts      Options
	tel       telemetry.API
	summaries []MunicipalitySummary
}

func (r *run) summary(municipality string) *MunicipalitySummary {
	for i := range r.summaries {
		if r.summaries[i].Municipality == municipality {
			return &r.summaries[i]
		}
	}
	r.summaries = append(r.summaries, MunicipalitySummary{Municipality: municipality})
	return &r.summaries[len(r.summaries)-1]
}

// scrapeAll visits every unit of the plan one at a time and returns the
// record batches of the units that produced records.
func (r *run) scrapeAll(ctx context.Context, plan kenosha.Plan) ([][]results.VoteRecord, error) {
	units := plan.Units()
	batches := make([][]results.VoteRecord, 0, len(units))

	for i, unit := range units {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		slog.InfoContext(
			ctx, "scraping reporting unit",
			"municipality", unit.Municipality,
			"ward_id", unit.WardId,
			"progress", fmt.Sprintf("%d/%d", i+1, len(units)),
		)
		outcome := r.source.ScrapeUnit(ctx, unit, r.opts.Layout)

		// a fetch interrupted by cancellation is not a unit failure
		err = ctx.Err()
		if err != nil {
			return nil, err
		}

		s := r.summary(unit.Municipality)
		s.Units++
		if outcome.WardIssue != nil {
			s.WardIssues++
		}

		switch outcome.Status {
		case kenosha.StatusFetchError:
			s.Failed++
			r.tel.ReportWarning(report_run_unit, outcome.Err, unit.Municipality, unit.WardId)
		case kenosha.StatusEmpty:
			s.Empty++
			slog.InfoContext(ctx, "no data found for reporting unit", "municipality", unit.Municipality, "ward_id", unit.WardId)
		case kenosha.StatusRecords:
			s.Records += len(outcome.Records)
			batches = append(batches, outcome.Records)
		}
	}

	return batches, nil
}

// Run discovers the reporting units of the election, scrapes them in order
// and writes the resulting table. Nothing is written if the run is cancelled
// or if the collected records cannot be turned into a table.
func Run(ctx context.Context, source Source, opts Options) (Report, error) {
	ctx, span := tracer.Start(ctx, "scrape:Run")
	defer span.End()

	if opts.Writer == nil {
		return Report{}, fmt.Errorf("no output writer configured")
	}
	if opts.Time == nil {
		now, err := chrono.NewStandardTime()
		if err != nil {
			return Report{}, err
		}
		opts.Time = now
	}
	tel := opts.Tel
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}

	r := &run{
		source: source,
		opts:   opts,
		tel:    telemetry.NewScopedAPI("electionscrape", tel),
	}
	start := time.Now()

	plan, err := source.Discover(ctx, opts.Municipalities)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return Report{}, fmt.Errorf("discover reporting units: %w", err)
	}
	for _, muni := range plan.Municipalities() {
		r.summary(muni)
	}
	slog.InfoContext(
		ctx, "discovered reporting units",
		"municipalities", len(plan.Municipalities()),
		"units", plan.UnitCount(),
	)
	span.SetAttributes(attribute.Int("units", plan.UnitCount()))

	batches, err := r.scrapeAll(ctx, plan)
	report := Report{Summaries: r.summaries}
	if err != nil {
		report.Elapsed = time.Since(start)
		span.SetStatus(codes.Error, "run cancelled")
		return report, err
	}

	table, err := results.Build(batches)
	report.Elapsed = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build result table")
		var voteErr *results.VoteError
		if errors.As(err, &voteErr) {
			return report, fmt.Errorf("aggregate %s: %w", voteErr.Record.Key(), err)
		}
		return report, err
	}

	for _, dup := range table.Duplicates {
		r.tel.ReportWarning(report_run_duplicate, "duplicate vote record dropped", dup.Key().String())
	}
	report.Table = table
	report.Duplicates = len(table.Duplicates)

	if opts.OutputDir != "" {
		err = os.MkdirAll(opts.OutputDir, 0777)
		if err != nil {
			return report, fmt.Errorf("create output dir: %w", err)
		}
	}
	path := export.Filename(opts.OutputDir, opts.OutputPrefix, opts.Time.Now(), opts.Writer.Ext())
	err = opts.Writer.WriteFile(ctx, path, table)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write output")
		return report, err
	}
	report.Path = path

	slog.InfoContext(
		ctx, "wrote election results",
		"path", path,
		"rows", len(table.Rows),
		"seconds", report.Elapsed.Seconds(),
	)
	return report, nil
}
