// Package core has the fetch, merge and reporting logic for repotally.
package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/repotally/repotally/internal/apiclient"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/outwriter"
	"github.com/repotally/repotally/internal/tsfile"
	"github.com/repotally/repotally/schema"
)

// httpTimeout bounds each upstream API call.
const httpTimeout = 30 * time.Second

// ExecuteFetchRun fetches every configured metric, merges the batches into
// the stored series, and prints a run summary. It serves as the main entry
// point for the 'run' command.
func ExecuteFetchRun(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	store, err := tsfile.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: httpTimeout}
	clients := []contract.SourceClient{
		apiclient.NewGithub(httpClient, cfg.GithubToken, mgr.GetResponseCache()),
		apiclient.NewPypi(httpClient),
		apiclient.NewConda(httpClient),
	}

	summary, err := RunFetch(ctx, cfg, clients, store, mgr.GetRunsStore())
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteRunSummary(summary, cfg, duration)
}

// RunFetch executes the fetch/merge/save batch over every configured
// repository and source. Per-metric failures, including store I/O failures,
// downgrade to skipped outcomes and the batch keeps going. The runs store
// may be nil when run tracking is disabled.
func RunFetch(ctx context.Context, cfg *contract.Config, clients []contract.SourceClient, store contract.TimeseriesStore, runs contract.RunsStore) (schema.RunSummary, error) {
	summary := schema.RunSummary{StartTime: time.Now()}

	var runID int64
	if runs != nil {
		var err error
		runID, err = runs.BeginRun(summary.StartTime, runParams(cfg))
		if err != nil {
			contract.LogWarn("recording fetch run", err)
			runs = nil
		}
	}

	for _, spec := range cfg.Repos {
		for _, client := range clients {
			for _, metric := range client.Metrics(spec) {
				if !cfg.WantsMetric(metric) {
					continue
				}

				outcome := fetchAndMerge(ctx, cfg, client, store, spec, metric)
				summary.Outcomes = append(summary.Outcomes, outcome)

				if runs != nil {
					if err := runs.RecordMetricResult(runID, outcome); err != nil {
						contract.LogWarn("recording metric result", err)
					}
				}
			}
		}
	}

	summary.EndTime = time.Now()

	if runs != nil {
		if err := runs.EndRun(runID, summary.EndTime, len(summary.Repos()), summary.TotalPoints()); err != nil {
			contract.LogWarn("completing fetch run", err)
		}
	}

	return summary, nil
}

// fetchAndMerge handles one (repo, metric) pair: fetch the batch, merge it
// into the stored series, and save. Any failure produces a skipped outcome
// so the rest of the batch keeps going.
func fetchAndMerge(ctx context.Context, cfg *contract.Config, client contract.SourceClient, store contract.TimeseriesStore, spec contract.RepoSpec, metric schema.MetricName) schema.MetricOutcome {
	outcome := schema.MetricOutcome{
		Repo:   spec.Slug(),
		Metric: metric,
		Source: client.Kind(),
	}

	batch, err := client.Fetch(ctx, spec, metric)
	if err != nil {
		outcome.Status = schema.SkippedStatus
		outcome.Detail = skipDetail(err)
		return outcome
	}

	existing, err := store.Load(spec.Slug(), metric)
	if err != nil {
		outcome.Status = schema.SkippedStatus
		outcome.Detail = fmt.Sprintf("load failed: %v", err)
		return outcome
	}
	merged, err := Merge(existing, batch)
	if err != nil {
		outcome.Status = schema.SkippedStatus
		outcome.Detail = fmt.Sprintf("merge failed: %v", err)
		return outcome
	}

	if err := store.Save(merged); err != nil {
		outcome.Status = schema.SkippedStatus
		outcome.Detail = fmt.Sprintf("save failed: %v", err)
		return outcome
	}

	outcome.Status = schema.FetchedStatus
	outcome.PointsMerged = len(batch)
	return outcome
}

// skipDetail maps fetch errors to a short human-readable skip reason.
func skipDetail(err error) string {
	var netErr *schema.NetworkError
	if errors.As(err, &netErr) {
		if netErr.RateLimited() {
			return "rate limited"
		}
		if netErr.Status != 0 {
			return fmt.Sprintf("network failure (%d)", netErr.Status)
		}
		return "network failure"
	}

	var credErr *schema.MissingCredentialError
	if errors.As(err, &credErr) {
		return "missing credential"
	}

	var valErr *schema.ValidationError
	if errors.As(err, &valErr) {
		return fmt.Sprintf("bad payload: %v", valErr)
	}

	return err.Error()
}

// runParams captures the configuration recorded with a tracked run.
func runParams(cfg *contract.Config) map[string]any {
	repos := make([]string, len(cfg.Repos))
	for i, spec := range cfg.Repos {
		repos[i] = spec.Slug()
	}

	metrics := "all"
	if len(cfg.Metrics) > 0 {
		metrics = fmt.Sprint(cfg.Metrics)
	}

	return map[string]any{
		"repos":    repos,
		"metrics":  metrics,
		"data_dir": cfg.DataDir,
	}
}
