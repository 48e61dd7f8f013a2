package core

import (
	"fmt"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/plotter"
	"github.com/repotally/repotally/internal/tsfile"
)

// ExecutePlot renders one PNG chart per configured repository for the
// selected plot metric. Repositories with no stored points are skipped.
// It serves as the main entry point for the 'plot' command.
func ExecutePlot(cfg *contract.Config) error {
	store, err := tsfile.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	p := plotter.New(cfg.PlotsDir)
	plotted := 0

	for _, spec := range cfg.Repos {
		ts, err := store.Load(spec.Slug(), cfg.PlotMetric)
		if err != nil {
			return err
		}
		if ts.IsEmpty() {
			fmt.Printf("No stored %s data for %s, skipping\n", cfg.PlotMetric, spec.Slug())
			continue
		}

		outPath, err := p.Plot(ts, cfg.PlotYLabel)
		if err != nil {
			return err
		}
		fmt.Printf("Saved plot to %s\n", outPath)
		plotted++
	}

	if plotted == 0 {
		return fmt.Errorf("no stored %s data found for any configured repository", cfg.PlotMetric)
	}
	return nil
}
