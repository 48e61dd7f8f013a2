package core

import (
	"errors"
	"fmt"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/parquet"
	"github.com/repotally/repotally/internal/tsfile"
	"github.com/repotally/repotally/schema"
)

// ExecuteExport writes every stored timeseries to a single Parquet file. It
// serves as the main entry point for the 'export' command.
func ExecuteExport(cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store, err := tsfile.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	stored, err := store.List()
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return errors.New("no stored timeseries found to export")
	}

	var series []schema.Timeseries
	for _, entry := range stored {
		ts, err := store.Load(entry.Repo, entry.Metric)
		if err != nil {
			return fmt.Errorf("failed to load %s/%s: %w", entry.Repo, entry.Metric, err)
		}
		series = append(series, ts)
	}

	rows := parquet.ConvertTimeseries(series)
	outFile := cfg.OutputFile + ".observations.parquet"
	if err := parquet.WriteObservationsParquet(rows, outFile); err != nil {
		return fmt.Errorf("failed to write observations: %w", err)
	}

	fmt.Printf("Exported %d observations across %d series to: %s\n", len(rows), len(series), outFile)
	return nil
}
