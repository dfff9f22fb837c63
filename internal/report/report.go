// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
	"gopkg.in/yaml.v2"

	"github.com/bdgeo/roadctl/internal/analysis"
	"github.com/bdgeo/roadctl/internal/config"
)

const rule = "=================================================="

// Text renders the connectivity report as a fixed-order text block. Pure:
// no side effects, the CLI layer decides where it goes.
func Text(place string, stats analysis.Stats) string {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s ROAD CONNECTIVITY REPORT\n", strings.ToUpper(place))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total Road Nodes: %s\n", humanize.Comma(int64(stats.TotalNodes)))
	fmt.Fprintf(&b, "Total Road Segments: %s\n", humanize.Comma(int64(stats.TotalEdges)))
	fmt.Fprintf(&b, "Network Connected: %s\n", yesNo(stats.IsConnected))
	fmt.Fprintf(&b, "Number of Components: %d\n", stats.Components)

	if stats.AvgDegreeCentrality > 0 {
		fmt.Fprintf(&b, "Average Degree Centrality: %.4f\n", stats.AvgDegreeCentrality)
	}
	if stats.AvgBetweennessCentrality > 0 {
		sampled := ""
		if stats.BetweennessSampled {
			sampled = " (sampled)"
		}
		fmt.Fprintf(&b, "Average Betweenness Centrality: %.4f%s\n", stats.AvgBetweennessCentrality, sampled)
	}
	if stats.AnalysisDate != "" {
		fmt.Fprintf(&b, "Analysis Date: %s\n", stats.AnalysisDate)
	}

	fmt.Fprintln(&b, rule)
	return b.String()
}

// Emit writes the stats in the requested format: text (default), table,
// json, or yaml.
func Emit(w io.Writer, place string, stats analysis.Stats, format string, color bool) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		fmt.Fprintln(w, string(out))
	case "yaml":
		m, err := toMap(stats)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		_, _ = w.Write(out)
	case "table":
		fmt.Fprintln(w, Table(stats, color))
	default:
		fmt.Fprint(w, Text(place, stats))
	}
	return nil
}

// Table renders the stats as a two-column table.
func Table(stats analysis.Stats, color bool) string {
	headerStyle := lipgloss.NewStyle().Align(lipgloss.Left)
	cellStyle := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Left)

	if color {
		headerColor, _ := config.GetString("colors.title", "#f6be00")
		cellColor, _ := config.GetString("colors.even", "#ffffff")
		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		cellStyle = cellStyle.Foreground(lipgloss.Color(cellColor))
	}

	rows := [][]string{
		{"Total Road Nodes", humanize.Comma(int64(stats.TotalNodes))},
		{"Total Road Segments", humanize.Comma(int64(stats.TotalEdges))},
		{"Network Connected", yesNo(stats.IsConnected)},
		{"Number of Components", fmt.Sprintf("%d", stats.Components)},
		{"Average Degree Centrality", fmt.Sprintf("%.4f", stats.AvgDegreeCentrality)},
		{"Average Betweenness Centrality", fmt.Sprintf("%.4f", stats.AvgBetweennessCentrality)},
		{"Analysis Date", stats.AnalysisDate},
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Metric", "Value").
		BorderHeader(false).
		Rows(rows...)

	return t.String()
}

// Diff renders what changed between a previous stats document and the
// current one (fresh analysis vs what the cache held).
func Diff(prev, cur analysis.Stats, color bool) (string, error) {
	left, err := json.Marshal(prev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal previous stats: %w", err)
	}
	right, err := json.Marshal(cur)
	if err != nil {
		return "", fmt.Errorf("failed to marshal current stats: %w", err)
	}

	d, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", fmt.Errorf("failed to diff stats: %w", err)
	}
	if !d.Modified() {
		return "No changes since last analysis.\n", nil
	}

	var leftObj map[string]interface{}
	if err := json.Unmarshal(left, &leftObj); err != nil {
		return "", fmt.Errorf("failed to decode previous stats: %w", err)
	}

	f := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       color,
	})
	out, err := f.Format(d)
	if err != nil {
		return "", fmt.Errorf("failed to format diff: %w", err)
	}
	return out, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// toMap round-trips through JSON so YAML output gets the same snake_case
// keys as the cached schema.
func toMap(stats analysis.Stats) (map[string]interface{}, error) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return m, nil
}
