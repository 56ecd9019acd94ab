package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/uhatikus/UAIssistant/model"
)

// Shared helpers for the data-analysis tools: dataset validation,
// target-column selection and the small amount of statistics they need.
// No numeric library exists in the reference stacks this service is
// built from, so the math stays in plain Go.

var errEmptyDataset = errors.New("the chosen dataset is empty")

func validatedDataset(ctx context.Context, repo Repository, name string) (*model.Frame, error) {
	frame, err := repo.Dataset(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %q: %w", name, err)
	}
	if frame.Empty() {
		return nil, errEmptyDataset
	}
	return frame, nil
}

// targetColumns narrows the requested columns to the numeric ones the
// dataset actually holds. An empty request means every numeric column.
func targetColumns(frame *model.Frame, requested []string) ([]string, error) {
	numeric := frame.NumericColumns()
	if len(numeric) == 0 {
		return nil, fmt.Errorf("dataset %s has no numeric columns", frame.Name)
	}
	if len(requested) == 0 {
		return numeric, nil
	}
	allowed := make(map[string]bool, len(numeric))
	for _, c := range numeric {
		allowed[c] = true
	}
	var selected []string
	for _, c := range requested {
		if allowed[c] {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("none of the requested columns are numeric columns of %s", frame.Name)
	}
	return selected, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 {
		return 0
	}
	mx, my := mean(xs[:n]), mean(ys[:n])
	var num, dx, dy float64
	for i := 0; i < n; i++ {
		num += (xs[i] - mx) * (ys[i] - my)
		dx += (xs[i] - mx) * (xs[i] - mx)
		dy += (ys[i] - my) * (ys[i] - my)
	}
	if dx == 0 || dy == 0 {
		return 0
	}
	return num / math.Sqrt(dx*dy)
}
