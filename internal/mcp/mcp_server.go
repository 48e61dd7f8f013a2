// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/repotally/repotally/internal/contract"
)

// NewMCPServer initializes and configures the repotally MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.TimeseriesStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Repotally Usage Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
	}

	// --- 1. Tool: list_repositories ---
	s.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List the configured repositories and the (repo, metric) timeseries stored on disk."),
	), h.handleListRepositories)

	// --- 2. Tool: get_timeseries ---
	s.AddTool(mcp.NewTool("get_timeseries",
		mcp.WithDescription("Return the stored timeseries for one repository metric."),
		mcp.WithString("repo", mcp.Description("Repository name as configured (e.g. 'reV')."), mcp.Required()),
		mcp.WithString("metric", mcp.Description("Metric name (e.g. 'clones', 'stargazers', 'pypi_daily')."), mcp.Required()),
		mcp.WithNumber("last", mcp.Description("Return only the most recent N points.")),
	), h.handleGetTimeseries)

	// --- 3. Tool: get_latest ---
	s.AddTool(mcp.NewTool("get_latest",
		mcp.WithDescription("Return the most recent value of every stored metric for one repository."),
		mcp.WithString("repo", mcp.Description("Repository name as configured."), mcp.Required()),
	), h.handleGetLatest)

	return s
}

// StartMCPServer starts the repotally MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.TimeseriesStore) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
