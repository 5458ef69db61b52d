package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/supplelab/tierank/core"
	"github.com/supplelab/tierank/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// splitCatalog turns a comma-separated catalog argument into patterns.
func splitCatalog(catalog string) []string {
	var patterns []string
	for p := range strings.SplitSeq(catalog, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}

// jsonResult encodes v as an indented JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRankCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.CatalogPatterns = splitCatalog(request.GetString("catalog", ""))
	if len(cfg.CatalogPatterns) == 0 {
		return mcp.NewToolResultError("catalog is required"), nil
	}
	cfg.TrimPercent = request.GetFloat("trim_percent", cfg.TrimPercent)
	if err := contract.ValidateTrimPercent(cfg.TrimPercent); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid ranking parameters: %v", err)), nil
	}

	output, err := core.RankOnly(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}

	if g := request.GetString("group", ""); g != "" {
		filtered := output.Results[:0]
		for _, r := range output.Results {
			if r.GroupKey == g {
				filtered = append(filtered, r)
			}
		}
		output.Results = filtered
	}
	if l := request.GetInt("limit", 0); l > 0 && l < len(output.Results) {
		output.Results = output.Results[:l]
	}

	return jsonResult(output)
}

func (h *toolHandler) handleAuditRanks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Fix = false
	cfg.Strict = request.GetBool("strict", cfg.Strict)
	runID := request.GetInt("run_id", 0)
	if runID < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid audit parameters: run_id must not be negative (received %d)", runID)), nil
	}
	cfg.RunID = int64(runID)

	report, err := core.BuildAuditReport(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("audit failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleExplainProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	productID := strings.TrimSpace(request.GetString("product_id", ""))
	if productID == "" {
		return mcp.NewToolResultError("product_id is required"), nil
	}
	if c := request.GetString("catalog", ""); c != "" {
		cfg.CatalogPatterns = splitCatalog(c)
	}

	model, err := core.ExplainProduct(core.WithSuppressHeader(ctx), cfg, h.mgr, productID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("explain failed: %v", err)), nil
	}
	return jsonResult(model)
}

func (h *toolHandler) handleGetRankRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(core.BuildMetricsModel(h.baseCfg))
}
