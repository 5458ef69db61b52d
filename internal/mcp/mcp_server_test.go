package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/internal/contract"
	mcp_internal "github.com/supplelab/tierank/internal/mcp"
	"github.com/supplelab/tierank/internal/store"
	"github.com/supplelab/tierank/schema"
)

const testCatalog = `{"products": [
  {"id": "mg-1", "name": "Magnesium A", "price": 12, "servings_per_container": 60, "servings_per_day": 2,
   "ingredients": [{"group_key": "magnesium", "amount_mg": 200, "primary": true}], "evidence": "moderate"},
  {"id": "mg-2", "name": "Magnesium B", "price": 18, "servings_per_container": 60, "servings_per_day": 2,
   "ingredients": [{"group_key": "magnesium", "amount_mg": 300, "primary": true}], "evidence": "high"},
  {"id": "zn-1", "name": "Zinc", "price": 8, "servings_per_container": 90, "servings_per_day": 1,
   "ingredients": [{"group_key": "zinc", "amount_mg": 15, "primary": true}], "evidence": "high"}
]}`

func baseConfig() *contract.Config {
	return &contract.Config{
		Workers:        2,
		TrimPercent:    contract.DefaultTrimPercent,
		Weights:        schema.GetDefaultWeights(),
		EvidenceScores: schema.DefaultEvidenceScores,
	}
}

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))
	return path
}

func callTool(t *testing.T, cfg *contract.Config, mgr contract.StoreManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"rank_catalog missing catalog", "rank_catalog", map[string]any{"catalog": " , "}, "catalog is required"},
		{"rank_catalog trim too high", "rank_catalog", map[string]any{"catalog": "x.json", "trim_percent": 40.0}, "trim-percent must be between 0 and 25"},
		{"rank_catalog missing file", "rank_catalog", map[string]any{"catalog": "/nonexistent/catalog.json"}, "ranking failed"},
		{"audit_ranks negative run", "audit_ranks", map[string]any{"run_id": -3.0}, "run_id must not be negative"},
		{"audit_ranks without store", "audit_ranks", map[string]any{}, "audit requires a rank store"},
		{"explain_product missing id", "explain_product", map[string]any{"product_id": "  "}, "product_id is required"},
		{"explain_product without catalog", "explain_product", map[string]any{"product_id": "mg-1"}, "no snapshot store configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, baseConfig(), nil, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

func TestRankCatalogTool(t *testing.T) {
	catalog := writeTestCatalog(t)

	t.Run("all products", func(t *testing.T) {
		res := callTool(t, baseConfig(), nil, "rank_catalog", map[string]any{"catalog": catalog})
		require.False(t, res.IsError, resultText(t, res))

		var output schema.BatchOutput
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &output))
		assert.Equal(t, 2, output.Partitions)
		require.Len(t, output.Results, 3)
		assert.Zero(t, output.RunID, "MCP ranking is never persisted")
	})

	t.Run("group filter and limit", func(t *testing.T) {
		res := callTool(t, baseConfig(), nil, "rank_catalog", map[string]any{
			"catalog": catalog,
			"group":   "magnesium",
			"limit":   1.0,
		})
		require.False(t, res.IsError, resultText(t, res))

		var output schema.BatchOutput
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &output))
		require.Len(t, output.Results, 1)
		assert.Equal(t, "mg-1", output.Results[0].ProductID)
	})
}

func TestExplainProductTool(t *testing.T) {
	catalog := writeTestCatalog(t)

	res := callTool(t, baseConfig(), nil, "explain_product", map[string]any{"product_id": "zn-1", "catalog": catalog})
	require.False(t, res.IsError, resultText(t, res))

	var model schema.ExplainRenderModel
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &model))
	assert.Equal(t, "zinc", model.GroupKey)
	assert.Len(t, model.Axes, len(schema.AllAxes))

	res = callTool(t, baseConfig(), nil, "explain_product", map[string]any{"product_id": "nope", "catalog": catalog})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "product not found")
}

func TestAuditRanksTool(t *testing.T) {
	ranks := &store.MockRankStore{}
	mgr := &store.MockStoreManager{}
	mgr.On("GetRankStore").Return(ranks)

	price, perContainer, perDay := 10.0, 60, 2
	records := []schema.RankRecord{{
		ProductID:            "mg-1",
		GroupKey:             "magnesium",
		Grades:               map[schema.Axis]schema.Grade{schema.AxisPrice: schema.GradeA},
		OverallGrade:         schema.GradeSPlus,
		Price:                &price,
		ServingsPerContainer: &perContainer,
		ServingsPerDay:       &perDay,
	}}
	ranks.On("GetRun", int64(4)).Return(schema.RankRunRecord{RunID: 4, RunToken: "tok-4"}, nil)
	ranks.On("GetRanks", int64(4)).Return(records, nil)

	cfg := baseConfig()
	cfg.DistributionMinProducts = 10
	cfg.Fix = true

	res := callTool(t, cfg, mgr, "audit_ranks", map[string]any{"run_id": 4.0})
	require.False(t, res.IsError, resultText(t, res))

	var report schema.AuditReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, int64(4), report.RunID)
	assert.False(t, report.Passed)
	assert.Equal(t, 1, report.Counts[schema.IssueImpossibleCombination])
	assert.Empty(t, report.Fixed, "the tool never rewrites records")
}

func TestGetRankRulesTool(t *testing.T) {
	res := callTool(t, baseConfig(), nil, "get_rank_rules", nil)
	require.False(t, res.IsError)

	var model schema.MetricsRenderModel
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &model))
	assert.Len(t, model.Axes, len(schema.AllAxes))
	assert.Contains(t, model.Invariants, "s_plus")
}
