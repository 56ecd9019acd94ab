package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uhatikus/UAIssistant/model"
)

// The plot tools build plotly-compatible figure JSON and hand it to the
// frontend as a plot value {file_id, filename, raw_json}; the LLM only
// gets a confirmation line.

var defaultColors = []string{
	"rgb(228,26,28)", "rgb(55,126,184)", "rgb(77,175,74)",
	"rgb(152,78,163)", "rgb(255,127,0)", "rgb(255,255,51)",
	"rgb(166,86,40)", "rgb(247,129,191)", "rgb(153,153,153)",
}

func plotValue(toolName string, figure map[string]any) (model.MessageValue, error) {
	raw, err := json.Marshal(figure)
	if err != nil {
		return model.MessageValue{}, fmt.Errorf("encoding figure: %w", err)
	}
	fileID := fmt.Sprintf("%s_%s", toolName, uuid.New().String())
	return model.MessageValue{
		Type: model.MessageTypePlot,
		Content: map[string]any{
			"file_id":  fileID,
			"filename": fileID + ".json",
			"raw_json": string(raw),
		},
	}, nil
}

func plotColors(args Args, n int) []string {
	colors := args.StringSlice("colors")
	for len(colors) < n {
		colors = append(colors, defaultColors[len(colors)%len(defaultColors)])
	}
	return colors
}

func colorsParam() Param {
	return Param{
		Name:        "colors",
		Type:        "array",
		Description: "List of colors to use. Example: ['rgb(228,26,28)', 'rgb(55,126,184)', 'rgb(77,175,74)']. Applied in same order as target_columns List.",
	}
}

// Histogram plots one histogram trace per target column.
type Histogram struct{}

func (t *Histogram) Spec() Spec {
	return Spec{
		Name:        "histogram",
		Description: "Call this function to give to the user a histogram plot of the data available",
		Params:      append(analysisParams(), colorsParam()),
	}
}

func (t *Histogram) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
	name, err := args.requireString("dataset_name")
	if err != nil {
		return "", nil, err
	}
	frame, err := validatedDataset(ctx, repo, name)
	if err != nil {
		return "", nil, err
	}
	columns, err := targetColumns(frame, args.StringSlice("target_columns"))
	if err != nil {
		return "", nil, err
	}
	colors := plotColors(args, len(columns))

	traces := make([]any, 0, len(columns))
	for i, col := range columns {
		values, _ := frame.Numeric(col)
		traces = append(traces, map[string]any{
			"type":   "histogram",
			"x":      values,
			"name":   col,
			"marker": map[string]any{"color": colors[i]},
		})
	}
	figure := map[string]any{
		"data":   traces,
		"layout": map[string]any{"title": name},
	}
	value, err := plotValue("histogram", figure)
	if err != nil {
		return "", nil, err
	}
	output := fmt.Sprintf("The user has successfully received the histogram plot. The columns names of this dataset: [%s]", strings.Join(frame.Columns, ", "))
	return output, []model.MessageValue{value}, nil
}

// CorrelationHeatmap plots the pairwise Pearson correlation matrix of
// the target columns.
type CorrelationHeatmap struct{}

func (t *CorrelationHeatmap) Spec() Spec {
	return Spec{
		Name:        "correlation_heatmap",
		Description: "Call this function to give to the user a correlation heatmap plot of the data available",
		Params: append(analysisParams(), Param{
			Name:        "colorscale",
			Type:        "string",
			Description: "Colorscale for plotly plots. Example: 'RdBu_r'",
			Default:     "RdBu_r",
		}),
	}
}

func (t *CorrelationHeatmap) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
	name, err := args.requireString("dataset_name")
	if err != nil {
		return "", nil, err
	}
	frame, err := validatedDataset(ctx, repo, name)
	if err != nil {
		return "", nil, err
	}
	columns, err := targetColumns(frame, args.StringSlice("target_columns"))
	if err != nil {
		return "", nil, err
	}

	matrix := make([][]float64, len(columns))
	for i, a := range columns {
		matrix[i] = make([]float64, len(columns))
		xs, _ := frame.Numeric(a)
		for j, b := range columns {
			ys, _ := frame.Numeric(b)
			matrix[i][j] = pearson(xs, ys)
		}
	}
	figure := map[string]any{
		"data": []any{map[string]any{
			"type":       "heatmap",
			"x":          columns,
			"y":          columns,
			"z":          matrix,
			"colorscale": args.String("colorscale", "RdBu_r"),
			"zmin":       -1,
			"zmax":       1,
		}},
		"layout": map[string]any{"title": fmt.Sprintf("%s correlation", name)},
	}
	value, err := plotValue("correlation_heatmap", figure)
	if err != nil {
		return "", nil, err
	}
	output := fmt.Sprintf("The user has successfully received the correlation heatmap. The columns names of this dataset: [%s]", strings.Join(frame.Columns, ", "))
	return output, []model.MessageValue{value}, nil
}

// CorrelationScatter plots one column against another with their
// correlation in the title. Exactly two target columns are required.
type CorrelationScatter struct{}

func (t *CorrelationScatter) Spec() Spec {
	return Spec{
		Name:        "correlation_scatter_plot",
		Description: "Call this function to give to the user a correlation scatter plot of the data available. Set exactly 2 target_columns.",
		Params:      append(analysisParams(), colorsParam()),
	}
}

func (t *CorrelationScatter) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
	name, err := args.requireString("dataset_name")
	if err != nil {
		return "", nil, err
	}
	frame, err := validatedDataset(ctx, repo, name)
	if err != nil {
		return "", nil, err
	}
	columns, err := targetColumns(frame, args.StringSlice("target_columns"))
	if err != nil {
		return "", nil, err
	}
	if len(columns) != 2 {
		return "", nil, fmt.Errorf("correlation scatter plot needs exactly 2 target columns, got %d", len(columns))
	}
	xs, _ := frame.Numeric(columns[0])
	ys, _ := frame.Numeric(columns[1])
	colors := plotColors(args, 1)

	figure := map[string]any{
		"data": []any{map[string]any{
			"type":   "scatter",
			"mode":   "markers",
			"x":      xs,
			"y":      ys,
			"name":   fmt.Sprintf("%s vs %s", columns[0], columns[1]),
			"marker": map[string]any{"color": colors[0]},
		}},
		"layout": map[string]any{
			"title": fmt.Sprintf("%s: %s vs %s (r=%.3f)", name, columns[0], columns[1], pearson(xs, ys)),
			"xaxis": map[string]any{"title": columns[0]},
			"yaxis": map[string]any{"title": columns[1]},
		},
	}
	value, err := plotValue("correlation_scatter_plot", figure)
	if err != nil {
		return "", nil, err
	}
	output := fmt.Sprintf("The user has successfully received the correlation scatter plot. The columns names of this dataset: [%s]", strings.Join(frame.Columns, ", "))
	return output, []model.MessageValue{value}, nil
}
