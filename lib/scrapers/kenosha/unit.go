package kenosha

import (
	"context"
	"errors"
	"fmt"
	"kenosha-results/lib/results"
	"kenosha-results/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UnitRecords turns a parsed reporting unit page into vote records.
//
// In the single layout a page that does not say which ward it is for is
// treated as empty, in the multi layout its records are kept with an empty
// ward number and the problem is reported through WardIssue.
func UnitRecords(doc *goquery.Document, unit ReportingUnit, layout results.Layout) UnitOutcome {
	wardName, resolved := WardName(doc)
	unit.WardName = wardName
	outcome := UnitOutcome{Unit: unit, Status: StatusEmpty}

	wardNumber, err := WardNumber(wardName)
	if err != nil {
		outcome.WardIssue = err
	}
	if !resolved && layout == results.LayoutSingle {
		return outcome
	}

	for _, cell := range ExtractCandidates(doc) {
		party := ""
		candidate := cell.Label
		if layout.TracksParty() {
			party, candidate = SplitParty(cell.Label)
		}
		outcome.Records = append(outcome.Records, results.VoteRecord{
			Municipality: unit.Municipality,
			WardId:       unit.WardId,
			WardName:     wardName,
			WardNumber:   wardNumber,
			Contest:      cell.Contest,
			Party:        party,
			Candidate:    candidate,
			VoteText:     CleanVoteText(cell.VoteText),
		})
	}

	if len(outcome.Records) > 0 {
		outcome.Status = StatusRecords
	}
	return outcome
}

// ScrapeUnit fetches and extracts a single reporting unit. It never returns
// an error, fetch failures are reported through the outcome's status.
func (c *Client) ScrapeUnit(ctx context.Context, unit ReportingUnit, layout results.Layout) UnitOutcome {
	ctx, span := tracer.Start(ctx, "client:ScrapeUnit")
	defer span.End()
	span.SetAttributes(
		attribute.String("municipality", unit.Municipality),
		attribute.Int("ward_id", unit.WardId),
	)

	doc, err := c.fetch(ctx, reportingUnitsPage, map[string]string{
		"eid":      c.electionId(),
		"jid":      fmt.Sprint(unit.WardId),
		"muniName": unit.Municipality,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch reporting unit")
		c.tel.ReportBroken(report_unit_scrape, err, unit.Municipality, unit.WardId)
		telemetry.RecordUnit(ctx, unit.Municipality, 0, true)
		return UnitOutcome{
			Unit:   unit,
			Status: StatusFetchError,
			Err:    err,
		}
	}

	outcome := UnitRecords(doc, unit, layout)
	if outcome.WardIssue != nil {
		if errors.Is(outcome.WardIssue, ErrUnknownWard) {
			c.tel.ReportWarning(
				report_unit_ward_name,
				fmt.Errorf("could not find selected ward name in %s", reportingUnitControl),
				unit.Municipality,
				unit.WardId,
			)
		} else {
			c.tel.ReportWarning(report_unit_ward_name, outcome.WardIssue, unit.Municipality, unit.WardId)
		}
	}

	span.SetAttributes(
		attribute.String("ward_name", outcome.Unit.WardName),
		attribute.Int("records", len(outcome.Records)),
	)
	telemetry.RecordUnit(ctx, unit.Municipality, len(outcome.Records), false)
	return outcome
}
