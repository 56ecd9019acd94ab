package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/uhatikus/UAIssistant/model"
)

// Modeling fits an ordinary-least-squares line between two columns and
// reports the fit quality. The first target column is the predictor,
// the second the response.
type Modeling struct{}

func (t *Modeling) Spec() Spec {
	return Spec{
		Name:        "modeling",
		Description: "Call this function to fit a simple linear regression model between two numeric columns and give the user the fit summary. Set exactly 2 target_columns: predictor first, response second.",
		Params:      analysisParams(),
	}
}

func (t *Modeling) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
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
		return "", nil, fmt.Errorf("modeling needs exactly 2 target columns (predictor, response), got %d", len(columns))
	}

	xs, _ := frame.Numeric(columns[0])
	ys, _ := frame.Numeric(columns[1])
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 3 {
		return "", nil, fmt.Errorf("not enough rows to fit a model (%d)", n)
	}

	slope, intercept := leastSquares(xs[:n], ys[:n])
	r := pearson(xs[:n], ys[:n])

	summary := fmt.Sprintf(
		"Linear regression of %s on %s over %d rows:\n\n%s = %.4f * %s + %.4f\n\nR² = %.4f",
		columns[1], columns[0], n, columns[1], slope, columns[0], intercept, r*r,
	)
	output := fmt.Sprintf("The user has successfully received the model. The columns names of this dataset: [%s]", strings.Join(frame.Columns, ", "))
	frontend := []model.MessageValue{
		{
			Type:    model.MessageTypeText,
			Content: map[string]any{"message": summary},
		},
	}
	return output, frontend, nil
}

func leastSquares(xs, ys []float64) (slope, intercept float64) {
	mx, my := mean(xs), mean(ys)
	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	if den == 0 {
		return 0, my
	}
	slope = num / den
	return slope, my - slope*mx
}
