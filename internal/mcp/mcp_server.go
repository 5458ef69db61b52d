// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/supplelab/tierank/internal/contract"
)

// NewMCPServer initializes and configures the tierank MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Tier Ranking Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: rank_catalog ---
	s.AddTool(mcp.NewTool("rank_catalog",
		mcp.WithDescription("Grade every product of a supplement catalog on price, cost effectiveness, content, evidence and safety. Nothing is persisted."),
		mcp.WithString("catalog", mcp.Description("Comma-separated catalog files or globs (e.g. 'catalog/**/*.yaml')."), mcp.Required()),
		mcp.WithNumber("trim_percent", mcp.Description("Share of values dropped from each tail before ranking (0-25). Defaults to the server setting.")),
		mcp.WithString("group", mcp.Description("Only return products of this primary ingredient group.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleRankCatalog)

	// --- 2. Tool: audit_ranks ---
	s.AddTool(mcp.NewTool("audit_ranks",
		mcp.WithDescription("Audit a persisted rank run for invalid grades, impossible S+ combinations, missing inputs and distribution drift. Report only."),
		mcp.WithNumber("run_id", mcp.Description("Rank run to audit. Defaults to the latest completed run.")),
		mcp.WithBoolean("strict", mcp.Description("Fail the audit on distribution warnings.")),
	), h.handleAuditRanks)

	// --- 3. Tool: explain_product ---
	s.AddTool(mcp.NewTool("explain_product",
		mcp.WithDescription("Explain one product's grades: raw value, comparison group size, percentile, grade and weight per axis."),
		mcp.WithString("product_id", mcp.Description("ID of the product to explain."), mcp.Required()),
		mcp.WithString("catalog", mcp.Description("Comma-separated catalog files or globs. Defaults to the latest retained snapshot.")),
	), h.handleExplainProduct)

	// --- 4. Tool: get_rank_rules ---
	s.AddTool(mcp.NewTool("get_rank_rules",
		mcp.WithDescription("Describe the grade bands, axis formulas, weights and evidence levels in effect."),
	), h.handleGetRankRules)

	return s
}

// StartMCPServer starts the tierank MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
