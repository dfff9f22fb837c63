// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdgeo/roadctl/internal/analysis"
)

func sampleStats() analysis.Stats {
	return analysis.Stats{
		TotalNodes:               12345,
		TotalEdges:               23456,
		IsConnected:              false,
		Components:               7,
		AvgDegreeCentrality:      0.12345,
		AvgBetweennessCentrality: 0.00042,
		AnalysisDate:             "2025-06-01 10:00:00",
	}
}

func TestTextFieldOrder(t *testing.T) {
	out := Text("Bangladesh", sampleStats())

	fields := []string{
		"BANGLADESH ROAD CONNECTIVITY REPORT",
		"Total Road Nodes: 12,345",
		"Total Road Segments: 23,456",
		"Network Connected: No",
		"Number of Components: 7",
		"Average Degree Centrality: 0.1235",
		"Average Betweenness Centrality: 0.0004",
		"Analysis Date: 2025-06-01 10:00:00",
	}

	prev := -1
	for _, f := range fields {
		idx := strings.Index(out, f)
		require.GreaterOrEqual(t, idx, 0, "missing field %q", f)
		assert.Greater(t, idx, prev, "field %q out of order", f)
		prev = idx
	}
}

func TestTextOmitsOptionalFields(t *testing.T) {
	stats := analysis.Stats{
		TotalNodes:  3,
		TotalEdges:  2,
		IsConnected: true,
		Components:  1,
	}

	out := Text("Dhaka", stats)

	assert.Contains(t, out, "Network Connected: Yes")
	assert.NotContains(t, out, "Degree Centrality")
	assert.NotContains(t, out, "Betweenness Centrality")
	assert.NotContains(t, out, "Analysis Date")
}

func TestTextSampledMarker(t *testing.T) {
	stats := sampleStats()
	stats.BetweennessSampled = true

	out := Text("Bangladesh", stats)

	assert.Contains(t, out, "Average Betweenness Centrality: 0.0004 (sampled)")
}

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer

	err := Emit(&buf, "Bangladesh", sampleStats(), "json", false)
	require.NoError(t, err)

	var got analysis.Stats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleStats(), got)
}

func TestEmitYAML(t *testing.T) {
	var buf bytes.Buffer

	err := Emit(&buf, "Bangladesh", sampleStats(), "yaml", false)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "total_nodes: 12345")
	assert.Contains(t, out, "is_connected: false")
	assert.Contains(t, out, "number_of_components: 7")
}

func TestEmitDefaultIsText(t *testing.T) {
	var buf bytes.Buffer

	err := Emit(&buf, "Bangladesh", sampleStats(), "", false)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "BANGLADESH ROAD CONNECTIVITY REPORT")
}

func TestTableContainsMetrics(t *testing.T) {
	out := Table(sampleStats(), false)

	assert.Contains(t, out, "Metric")
	assert.Contains(t, out, "Total Road Nodes")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "Number of Components")
}

func TestDiffReportsChanges(t *testing.T) {
	prev := sampleStats()
	cur := sampleStats()
	cur.TotalNodes = 12400
	cur.Components = 6

	out, err := Diff(prev, cur, false)
	require.NoError(t, err)

	assert.Contains(t, out, "total_nodes")
	assert.Contains(t, out, "12400")
	assert.Contains(t, out, "number_of_components")
}

func TestDiffNoChanges(t *testing.T) {
	stats := sampleStats()

	out, err := Diff(stats, stats, false)
	require.NoError(t, err)

	assert.Equal(t, "No changes since last analysis.\n", out)
}
