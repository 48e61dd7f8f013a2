package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/repotally/repotally/internal/contract"
	mcp_internal "github.com/repotally/repotally/internal/mcp"
	"github.com/repotally/repotally/internal/tsfile"
	"github.com/repotally/repotally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*contract.Config, contract.TimeseriesStore) {
	t.Helper()

	store, err := tsfile.NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(schema.Timeseries{
		Repo:   "reV",
		Metric: schema.MetricStargazers,
		Points: []schema.Point{
			{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Value: 100},
			{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Value: 105},
			{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Value: 110},
		},
	}))

	baseCfg := &contract.Config{
		Repos: []contract.RepoSpec{
			{Name: "reV", GitOwner: "NREL", GitRepo: "reV", PypiName: "NREL-reV"},
		},
	}
	return baseCfg, store
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestMCPServerTools(t *testing.T) {
	baseCfg, store := newTestServer(t)
	s := mcp_internal.NewMCPServer(baseCfg, store)

	t.Run("list_repositories", func(t *testing.T) {
		res := callTool(t, s, "list_repositories", map[string]any{})
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		var repos []map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &repos))
		require.Len(t, repos, 1)
		assert.Equal(t, "reV", repos[0]["name"])
		assert.Contains(t, text, "stargazers")
	})

	t.Run("get_timeseries", func(t *testing.T) {
		res := callTool(t, s, "get_timeseries", map[string]any{
			"repo":   "reV",
			"metric": "stargazers",
		})
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		var ts schema.Timeseries
		require.NoError(t, json.Unmarshal([]byte(text), &ts))
		assert.Equal(t, 3, ts.Len())
	})

	t.Run("get_timeseries last N", func(t *testing.T) {
		res := callTool(t, s, "get_timeseries", map[string]any{
			"repo":   "reV",
			"metric": "stargazers",
			"last":   2.0,
		})
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		var ts schema.Timeseries
		require.NoError(t, json.Unmarshal([]byte(text), &ts))
		require.Equal(t, 2, ts.Len())
		assert.Equal(t, 110.0, ts.Last().Value)
	})

	t.Run("get_timeseries missing repo", func(t *testing.T) {
		res := callTool(t, s, "get_timeseries", map[string]any{
			"metric": "stargazers",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "repo is required")
	})

	t.Run("get_timeseries unknown series", func(t *testing.T) {
		res := callTool(t, s, "get_timeseries", map[string]any{
			"repo":   "reV",
			"metric": "clones",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "no stored data")
	})

	t.Run("get_latest", func(t *testing.T) {
		res := callTool(t, s, "get_latest", map[string]any{
			"repo": "reV",
		})
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		var latest []map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &latest))
		require.Len(t, latest, 1)
		assert.Equal(t, "stargazers", latest[0]["metric"])
		assert.Equal(t, "2024-06-03", latest[0]["date"])
		assert.Equal(t, 110.0, latest[0]["value"])
	})

	t.Run("get_latest unknown repo", func(t *testing.T) {
		res := callTool(t, s, "get_latest", map[string]any{
			"repo": "missing",
		})
		assert.True(t, res.IsError)
	})
}
