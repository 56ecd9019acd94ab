package model

// Frame is a small in-memory table returned by the tabular data
// provider. Values are kept as loosely typed cells; numeric analysis
// goes through Numeric which skips non-numeric cells.
type Frame struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Empty reports whether the frame has no columns.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Columns) == 0
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

func (f *Frame) columnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Numeric returns the float64 values of a column. Cells that are not
// numeric are skipped; ok is false when the column does not exist or
// holds no numeric cells at all.
func (f *Frame) Numeric(name string) ([]float64, bool) {
	idx := f.columnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]float64, 0, len(f.Rows))
	for _, row := range f.Rows {
		if idx >= len(row) {
			continue
		}
		switch v := row[idx].(type) {
		case float64:
			values = append(values, v)
		case int:
			values = append(values, float64(v))
		case int64:
			values = append(values, float64(v))
		}
	}
	if len(values) == 0 {
		return nil, false
	}
	return values, true
}

// NumericColumns lists the columns that hold numeric data, in column
// order.
func (f *Frame) NumericColumns() []string {
	var numeric []string
	for _, c := range f.Columns {
		if _, ok := f.Numeric(c); ok {
			numeric = append(numeric, c)
		}
	}
	return numeric
}
