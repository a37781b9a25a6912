package clone

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrName = "github.com/tilsley/cgs"

// instruments are the OTel counters emitted during a clone. They are noops
// unless telemetry has registered a global MeterProvider.
type instruments struct {
	listings        metric.Int64Counter
	listingFailures metric.Int64Counter
	materialized    metric.Int64Counter
	bytesWritten    metric.Int64Counter
}

func newInstruments() *instruments {
	m := otel.Meter(instrName)

	listings, _ := m.Int64Counter("cgs.listings",
		metric.WithDescription("Number of contents API listings fetched"))
	listingFailures, _ := m.Int64Counter("cgs.listing.failures",
		metric.WithDescription("Number of listings that failed and were skipped"))
	materialized, _ := m.Int64Counter("cgs.files.materialized",
		metric.WithDescription("Number of files written to disk"))
	bytesWritten, _ := m.Int64Counter("cgs.bytes.written",
		metric.WithDescription("Bytes written to disk"),
		metric.WithUnit("By"))

	return &instruments{
		listings:        listings,
		listingFailures: listingFailures,
		materialized:    materialized,
		bytesWritten:    bytesWritten,
	}
}
