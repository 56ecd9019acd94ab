package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/uhatikus/UAIssistant/model"
)

// ListDatasets names the datasets available for analysis.
type ListDatasets struct{}

func (t *ListDatasets) Spec() Spec {
	return Spec{
		Name:        "get_datasets",
		Description: "Returns the list of available datasets names for analysis.",
	}
}

func (t *ListDatasets) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
	names, err := repo.ListDatasets(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("listing datasets: %w", err)
	}
	return fmt.Sprintf("List of available datasets name: [%s]", strings.Join(names, ", ")), nil, nil
}

// DatasetColumns describes one dataset's columns and row count.
type DatasetColumns struct{}

func (t *DatasetColumns) Spec() Spec {
	return Spec{
		Name:        "get_dataset_columns",
		Description: "Returns the list of the columns in the given dataset and the number of rows.",
		Params: []Param{
			{
				Name:        "dataset_name",
				Type:        "string",
				Description: "The name of the dataset to analyze.",
				Required:    true,
			},
		},
	}
}

func (t *DatasetColumns) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
	name, err := args.requireString("dataset_name")
	if err != nil {
		return "", nil, err
	}
	frame, err := validatedDataset(ctx, repo, name)
	if err != nil {
		return "", nil, err
	}
	output := fmt.Sprintf(
		"The dataset %s contains the following columns: [%s]. There are %d rows in total.",
		name, strings.Join(frame.Columns, ", "), frame.NumRows(),
	)
	return output, nil, nil
}
