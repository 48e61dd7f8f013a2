package core

import (
	"fmt"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/outwriter"
	"github.com/repotally/repotally/internal/tsfile"
)

// ExecuteShow prints the stored timeseries for one (repo, metric) pair. It
// serves as the main entry point for the 'show' command.
func ExecuteShow(cfg *contract.Config) error {
	if cfg.ShowRepo == "" {
		return fmt.Errorf("no repository selected: set --repo")
	}
	if cfg.ShowMetric == "" {
		return fmt.Errorf("no metric selected: set --metric")
	}

	store, err := tsfile.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	ts, err := store.Load(cfg.ShowRepo, cfg.ShowMetric)
	if err != nil {
		return err
	}
	if ts.IsEmpty() {
		return fmt.Errorf("no stored data for %s/%s", cfg.ShowRepo, cfg.ShowMetric)
	}

	return outwriter.NewOutWriter().WriteTimeseries(ts, cfg)
}
