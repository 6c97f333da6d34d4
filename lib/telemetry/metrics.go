package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("kenosha.scraper")

var recordsCounter, _ = meter.Int64Counter(
	"records_scraped",
	metric.WithDescription("vote records extracted from reporting unit pages"),
)
var unitFailureCounter, _ = meter.Int64Counter(
	"units_failed",
	metric.WithDescription("reporting units whose page could not be fetched"),
)

// RecordUnit records the outcome of a single reporting unit scrape.
func RecordUnit(ctx context.Context, municipality string, records int, failed bool) {
	attrs := metric.WithAttributes(attribute.String("municipality", municipality))
	if failed {
		unitFailureCounter.Add(ctx, 1, attrs)
		return
	}
	recordsCounter.Add(ctx, int64(records), attrs)
}
