// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRunSummary prints the batch fetch summary using the configured output format.
func (ow *OutWriter) WriteRunSummary(summary schema.RunSummary, cfg *contract.Config, duration time.Duration) error {
	return PrintRunSummary(summary, cfg, duration)
}

// WriteTimeseries prints one stored timeseries using the configured output format.
func (ow *OutWriter) WriteTimeseries(ts schema.Timeseries, cfg *contract.Config) error {
	return PrintTimeseries(ts, cfg)
}

// WriteRunHistory prints stored fetch-run records using the configured output format.
func (ow *OutWriter) WriteRunHistory(runs []schema.FetchRunRecord, cfg *contract.Config) error {
	return PrintRunHistory(runs, cfg)
}
