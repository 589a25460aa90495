package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/burnup/internal/testserver"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "call %s", name)
	return result
}

// decode unmarshals the structured content of a successful result.
func decode(t *testing.T, result *sdkmcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, result.IsError, "tool error: %s", errorText(result))
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func errorText(result *sdkmcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(*sdkmcp.TextContent); ok {
		return text.Text
	}
	return ""
}

func ingest(t *testing.T, cs *sdkmcp.ClientSession) string {
	t.Helper()
	var out struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Cycles   int      `json:"cycles"`
		Trailing int      `json:"trailing_cycle"`
		Regions  []string `json:"regions"`
		Warnings []string `json:"warnings"`
		Cooling  string   `json:"cooling_mode"`
	}
	decode(t, callTool(t, cs, "ingest_report", map[string]any{
		"path": testserver.Fixture("two_cycle.out"),
	}), &out)
	require.NotEmpty(t, out.ID)
	require.Equal(t, "two_cycle.out", out.Name)
	require.Equal(t, 2, out.Cycles)
	require.Equal(t, 3, out.Trailing)
	require.Equal(t, []string{"FUEL1"}, out.Regions)
	require.Empty(t, out.Warnings)
	require.Equal(t, "none", out.Cooling)
	return out.ID
}

func TestTools_Listed(t *testing.T) {
	ts := testserver.New(t, "secret")
	cs := ts.Connect(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"ingest_report", "list_runs", "get_run", "list_cycles",
		"get_material", "material_metrics", "get_balance", "delete_run",
	}, names)
}

func TestTools_IngestAndQuery(t *testing.T) {
	ts := testserver.New(t, "secret")
	cs := ts.Connect(t)
	id := ingest(t, cs)

	var runs struct {
		Runs []struct {
			ID     string `json:"id"`
			Cycles int    `json:"cycles"`
		} `json:"runs"`
	}
	decode(t, callTool(t, cs, "list_runs", map[string]any{}), &runs)
	require.Len(t, runs.Runs, 1)
	require.Equal(t, id, runs.Runs[0].ID)

	var cycles struct {
		Cycles []struct {
			N            int               `json:"n"`
			Times        []float64         `json:"times"`
			Regime       string            `json:"regime"`
			Consistent   bool              `json:"regime_consistent"`
			RequiredFeed float64           `json:"required_feed"`
			Regimes      map[string]string `json:"regimes"`
		} `json:"cycles"`
	}
	decode(t, callTool(t, cs, "list_cycles", map[string]any{"run_id": id}), &cycles)
	require.Len(t, cycles.Cycles, 2)
	require.Equal(t, []float64{0, 100}, cycles.Cycles[0].Times)
	require.Equal(t, "required", cycles.Cycles[0].Regime)
	require.True(t, cycles.Cycles[0].Consistent)
	require.Equal(t, map[string]string{"FUEL1": "required"}, cycles.Cycles[0].Regimes)
	require.InDelta(t, 1.0, cycles.Cycles[0].RequiredFeed, 1e-12)
	require.Equal(t, "none", cycles.Cycles[1].Regime)

	var mat struct {
		Composition struct {
			Mass     float64 `json:"mass"`
			Nuclides []struct {
				Name string  `json:"name"`
				Mass float64 `json:"mass"`
			} `json:"nuclides"`
		} `json:"composition"`
	}
	decode(t, callTool(t, cs, "get_material", map[string]any{
		"run_id": id, "cycle": 1, "node": 0, "region": "FUEL1",
	}), &mat)
	require.InDelta(t, 100.0, mat.Composition.Mass, 1e-9)
	masses := make(map[string]float64)
	for _, n := range mat.Composition.Nuclides {
		masses[n.Name] = n.Mass
	}
	require.InDelta(t, 1.2, masses["Cs137"], 1e-12)
	require.InDelta(t, 0.8, masses["Xe136"], 1e-12)
	require.NotContains(t, masses, "sfpU235")

	var m struct {
		Metrics struct {
			Mass         float64  `json:"mass"`
			CriticalMass *float64 `json:"critical_mass"`
			U2           *float64 `json:"u2"`
		} `json:"metrics"`
	}
	decode(t, callTool(t, cs, "material_metrics", map[string]any{
		"run_id": id, "cycle": 1, "node": 0, "region": "FUEL1",
	}), &m)
	require.NotNil(t, m.Metrics.CriticalMass)
	require.Greater(t, *m.Metrics.CriticalMass, 0.0)

	decode(t, callTool(t, cs, "material_metrics", map[string]any{
		"run_id": id, "cycle": 1, "node": 1, "region": "FUEL1",
	}), &m)
	require.Nil(t, m.Metrics.CriticalMass, "rates are only known at node 0")

	var balance struct {
		RequiredFeed float64            `json:"required_feed"`
		UraniumAdded map[string]float64 `json:"uranium_added"`
		Charge       struct {
			Mass float64 `json:"mass"`
		} `json:"charge"`
		Discharge struct {
			Mass float64 `json:"mass"`
		} `json:"discharge"`
	}
	decode(t, callTool(t, cs, "get_balance", map[string]any{"run_id": id, "cycle": 1}), &balance)
	require.InDelta(t, 1.0, balance.RequiredFeed, 1e-12)
	require.Equal(t, map[string]float64{"FUEL1": 2.0}, balance.UraniumAdded)
	require.InDelta(t, 3.0, balance.Charge.Mass, 1e-9)
	require.InDelta(t, 2.0, balance.Discharge.Mass, 1e-9)

	decode(t, callTool(t, cs, "get_material", map[string]any{
		"run_id": id, "cycle": 1, "region": "discharge",
	}), &mat)
	require.InDelta(t, 2.0, mat.Composition.Mass, 1e-9)
}

func TestTools_Errors(t *testing.T) {
	ts := testserver.New(t, "secret")
	cs := ts.Connect(t)

	result := callTool(t, cs, "get_run", map[string]any{"run_id": "missing"})
	require.True(t, result.IsError)
	require.Contains(t, errorText(result), "RUN_NOT_FOUND")

	result = callTool(t, cs, "ingest_report", map[string]any{"path": testserver.Fixture("yields.csv")})
	require.True(t, result.IsError)
	require.Contains(t, errorText(result), "MALFORMED_REPORT")

	id := ingest(t, cs)
	result = callTool(t, cs, "get_material", map[string]any{
		"run_id": id, "cycle": 1, "node": 7, "region": "FUEL1",
	})
	require.True(t, result.IsError)
	require.Contains(t, errorText(result), "MATERIAL_NOT_FOUND")

	result = callTool(t, cs, "get_balance", map[string]any{"run_id": id, "cycle": 9})
	require.True(t, result.IsError)
	require.Contains(t, errorText(result), "CYCLE_NOT_FOUND")
}

func TestTools_DeleteRun(t *testing.T) {
	ts := testserver.New(t, "secret")
	cs := ts.Connect(t)
	id := ingest(t, cs)

	var out struct {
		Deleted string `json:"deleted"`
	}
	decode(t, callTool(t, cs, "delete_run", map[string]any{"run_id": id}), &out)
	require.Equal(t, id, out.Deleted)

	result := callTool(t, cs, "list_cycles", map[string]any{"run_id": id})
	require.True(t, result.IsError)
	require.Contains(t, errorText(result), "RUN_NOT_FOUND")
}

func TestDocResources(t *testing.T) {
	ts := testserver.New(t, "secret")
	cs := ts.Connect(t)
	ctx := context.Background()

	res, err := cs.ListResources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, res.Resources, 3)

	read, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "burnup://docs/metrics"})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	require.Contains(t, read.Contents[0].Text, "critical_mass")
}

func TestHTTP_BearerAuth(t *testing.T) {
	ts := testserver.New(t, "secret")
	ctx := context.Background()

	cs := ts.ConnectHTTP(t, "secret")
	var runs struct {
		Runs []any `json:"runs"`
	}
	decode(t, callTool(t, cs, "list_runs", map[string]any{}), &runs)
	require.Empty(t, runs.Runs)

	bad := ts.ConnectHTTP(t, "wrong")
	_, err := bad.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_runs", Arguments: map[string]any{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized")
}
