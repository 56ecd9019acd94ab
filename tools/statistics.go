package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/uhatikus/UAIssistant/model"
)

// Statistics summarises the numeric columns of a dataset. The summary
// table goes to the frontend as a markdown text value; the LLM only
// receives a short confirmation so it does not echo the whole table.
type Statistics struct{}

func (t *Statistics) Spec() Spec {
	return Spec{
		Name:        "statistics",
		Description: "Call this function to give to the user a statistics of the data available",
		Params:      analysisParams(),
	}
}

// analysisParams is the parameter set shared by every dataset-analysis
// tool, mirroring the common base their schemas derive from.
func analysisParams() []Param {
	return []Param{
		{
			Name:        "dataset_name",
			Type:        "string",
			Description: "The name of the dataset to analyze.",
			Required:    true,
		},
		{
			Name:        "target_columns",
			Type:        "array",
			Description: "The columns of the dataset that the user would like to analyze. By default, all numeric columns in the dataset are used.",
		},
	}
}

func (t *Statistics) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
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

	var table strings.Builder
	table.WriteString("| column | count | mean | std | min | 25%-quantile | median | 75%-quantile | max |\n")
	table.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, col := range columns {
		values, _ := frame.Numeric(col)
		fmt.Fprintf(&table, "| %s | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			col, len(values), mean(values), stddev(values),
			quantile(values, 0), quantile(values, 0.25), quantile(values, 0.5),
			quantile(values, 0.75), quantile(values, 1))
	}

	output := fmt.Sprintf("The user has successfully received the statistics. The columns names of this dataset: [%s]", strings.Join(frame.Columns, ", "))
	frontend := []model.MessageValue{
		{
			Type: model.MessageTypeText,
			Content: map[string]any{
				"message": fmt.Sprintf("The statistics for the columns: %s are as follows:\n\n%s", strings.Join(columns, "; "), table.String()),
			},
		},
	}
	return output, frontend, nil
}
