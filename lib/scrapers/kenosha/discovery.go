package kenosha

import (
	"context"
	"fmt"
	"kenosha-results/lib/htmlutil"
	"kenosha-results/lib/textutil"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	municipalityControl  = "ddMunis"
	reportingUnitControl = "ddReportingUnits"
	// value of the "nothing selected" option at the top of every dropdown
	placeholderValue = "-1"

	// minimum Jaro-Winkler similarity for a municipality filter to be
	// matched to a listed municipality
	filterSimilarity = 0.9
)

// OptionValues returns the values of the options of the named <select>, in
// document order. Empty values and the placeholder are skipped, duplicates
// are kept. A missing control yields no values.
func OptionValues(doc *goquery.Document, control string) []string {
	var values []string
	for _, opt := range htmlutil.SelectOptions(doc.Selection, control) {
		if opt.Value == "" || opt.Value == placeholderValue {
			continue
		}
		values = append(values, opt.Value)
	}
	return values
}

// Municipalities lists every municipality of the election.
func (c *Client) Municipalities(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:Municipalities")
	defer span.End()

	doc, err := c.fetch(ctx, municipalityPage, map[string]string{
		"eid":      c.electionId(),
		"muniName": c.SeedMunicipality,
		"p":        "0",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch municipality listing")
		c.tel.ReportBroken(report_client_municipalities, err)
		return nil, err
	}

	munis := OptionValues(doc, municipalityControl)
	c.tel.ReportDebug("found municipalities", len(munis))
	return munis, nil
}

// Wards lists the ward ids of a municipality.
func (c *Client) Wards(ctx context.Context, municipality string) ([]int, error) {
	ctx, span := tracer.Start(ctx, "client:Wards")
	defer span.End()
	span.SetAttributes(attribute.String("municipality", municipality))

	doc, err := c.fetch(ctx, municipalityPage, map[string]string{
		"eid":      c.electionId(),
		"muniName": municipality,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch ward listing")
		c.tel.ReportBroken(report_client_wards, err, municipality)
		return nil, err
	}

	var wards []int
	for _, value := range OptionValues(doc, reportingUnitControl) {
		id, err := strconv.Atoi(value)
		if err != nil {
			c.tel.ReportWarning(
				report_client_wards,
				fmt.Errorf("non-numeric ward id %q", value),
				municipality,
			)
			continue
		}
		wards = append(wards, id)
	}
	return wards, nil
}

// Discover builds the scrape plan. If `filter` is non-empty only the
// municipalities it names are included, names are matched loosely against
// the listing. A municipality whose ward listing cannot be fetched is left
// out of the plan.
func (c *Client) Discover(ctx context.Context, filter []string) (Plan, error) {
	ctx, span := tracer.Start(ctx, "client:Discover")
	defer span.End()

	munis, err := c.Municipalities(ctx)
	if err != nil {
		return Plan{}, err
	}

	if len(filter) > 0 {
		munis, err = c.applyFilter(munis, filter)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Plan{}, err
		}
	}

	var entries []PlanEntry
	for _, muni := range munis {
		wards, err := c.Wards(ctx, muni)
		if ctx.Err() != nil {
			return Plan{}, ctx.Err()
		}
		if err != nil {
			c.tel.ReportWarning(report_client_discover, fmt.Errorf("skipping municipality: %w", err), muni)
			continue
		}
		entries = append(entries, PlanEntry{
			Municipality: muni,
			Wards:        wards,
		})
	}

	plan := NewPlan(entries)
	c.tel.ReportCount(report_client_discover, int64(plan.UnitCount()))
	return plan, nil
}

func (c *Client) applyFilter(munis []string, filter []string) ([]string, error) {
	var selected []string
	included := make(map[string]struct{})
	for _, name := range filter {
		match, similarity, ok := textutil.ResolveName(name, munis, filterSimilarity)
		if !ok {
			c.tel.ReportWarning(
				report_client_discover,
				fmt.Errorf("no municipality matches %q", name),
				similarity,
			)
			continue
		}
		if _, dup := included[match]; dup {
			continue
		}
		included[match] = struct{}{}
		selected = append(selected, match)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("none of the municipalities %q are part of this election", filter)
	}

	// keep listing order so output does not depend on flag order
	ordered := make([]string, 0, len(selected))
	for _, m := range munis {
		if _, ok := included[m]; ok {
			ordered = append(ordered, m)
			delete(included, m)
		}
	}
	return ordered, nil
}
