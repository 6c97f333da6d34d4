package kenosha

import (
	"kenosha-results/lib/telemetry"
)

var tracer = telemetry.Tracer("kenosha.lib.scrapers.kenosha")

const (
	report_client_fetch          = "client.fetch"
	report_client_municipalities = "client.municipalities"
	report_client_wards          = "client.wards"
	report_client_discover       = "client.discover"
	report_unit_ward_name        = "unit.ward-name"
	report_unit_scrape           = "unit.scrape"
)
