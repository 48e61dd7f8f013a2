package core

import (
	"errors"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/outwriter"
)

// ExecuteRunHistory prints the most recent tracked fetch runs. It serves as
// the main entry point for the 'runs list' command.
func ExecuteRunHistory(cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetRunsStore()
	if store == nil {
		return errors.New("run tracking is not enabled. Set --runs-backend to a database backend")
	}

	runs, err := store.ListRuns(cfg.RunsLimit)
	if err != nil {
		return err
	}

	return outwriter.NewOutWriter().WriteRunHistory(runs, cfg)
}
