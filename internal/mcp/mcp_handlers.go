package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.TimeseriesStore
}

func (h *toolHandler) handleListRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stored, err := h.store.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list stored series: %v", err)), nil
	}

	// Group stored metrics per repository
	metricsByRepo := make(map[string][]string)
	for _, s := range stored {
		metricsByRepo[s.Repo] = append(metricsByRepo[s.Repo], string(s.Metric))
	}

	type repoInfo struct {
		Name          string   `json:"name"`
		GitOwner      string   `json:"git_owner"`
		GitRepo       string   `json:"git_repo"`
		PypiName      string   `json:"pypi_name,omitempty"`
		CondaOrg      string   `json:"conda_org,omitempty"`
		CondaName     string   `json:"conda_name,omitempty"`
		StoredMetrics []string `json:"stored_metrics"`
	}

	output := make([]repoInfo, 0, len(h.baseCfg.Repos))
	for _, spec := range h.baseCfg.Repos {
		output = append(output, repoInfo{
			Name:          spec.Slug(),
			GitOwner:      spec.GitOwner,
			GitRepo:       spec.GitRepo,
			PypiName:      spec.PypiName,
			CondaOrg:      spec.CondaOrg,
			CondaName:     spec.CondaName,
			StoredMetrics: metricsByRepo[spec.Slug()],
		})
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetTimeseries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	if repo == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}
	metric := request.GetString("metric", "")
	if metric == "" {
		return mcp.NewToolResultError("metric is required"), nil
	}

	ts, err := h.store.Load(repo, schema.MetricName(metric))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load timeseries: %v", err)), nil
	}
	if ts.IsEmpty() {
		return mcp.NewToolResultError(fmt.Sprintf("no stored data for %s/%s", repo, metric)), nil
	}

	if last := request.GetInt("last", 0); last > 0 && last < ts.Len() {
		ts.Points = ts.Points[ts.Len()-last:]
	}

	jsonData, _ := json.MarshalIndent(ts, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetLatest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	if repo == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	stored, err := h.store.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list stored series: %v", err)), nil
	}

	type latestValue struct {
		Metric string  `json:"metric"`
		Date   string  `json:"date"`
		Value  float64 `json:"value"`
	}

	var output []latestValue
	for _, s := range stored {
		if s.Repo != repo {
			continue
		}
		ts, err := h.store.Load(s.Repo, s.Metric)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load %s/%s: %v", s.Repo, s.Metric, err)), nil
		}
		if ts.IsEmpty() {
			continue
		}
		last := ts.Last()
		output = append(output, latestValue{
			Metric: string(s.Metric),
			Date:   last.Date.Format(schema.DateFormat),
			Value:  last.Value,
		})
	}

	if len(output) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no stored data for repository %q", repo)), nil
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
