package chart

import "github.com/JonMunkholm/SliceOfPie/internal/dataset"

// ClassifyAll assigns a role to every header of ds, in header order.
//
// A column is numeric when it has at least one row and every value parses as
// a finite number. A numeric column with more than one row whose values step
// by exactly 1 (5, 6, 7...) is a SequentialIndex, but only the leftmost such
// column; later ones stay Numeric. Everything else is Categorical.
func ClassifyAll(ds *dataset.Dataset) Columns {
	headers := ds.Headers()
	cols := make(Columns, len(headers))

	indexTaken := false
	for i, h := range headers {
		role := classifyValues(ds.Column(h), !indexTaken)
		if role == SequentialIndex {
			indexTaken = true
		}
		cols[i] = Column{Header: h, Role: role}
	}
	return cols
}

// Classify returns the role of a single header. It always agrees with
// ClassifyAll, so an earlier sequential column can demote a later one to
// Numeric. Unknown headers are Categorical.
func Classify(ds *dataset.Dataset, header string) Role {
	if !ds.HasHeader(header) {
		return Categorical
	}
	return ClassifyAll(ds).Role(header)
}

func classifyValues(values []string, allowIndex bool) Role {
	if len(values) == 0 {
		return Categorical
	}

	nums := make([]float64, len(values))
	for i, v := range values {
		f, ok := dataset.ParseNumber(v)
		if !ok {
			return Categorical
		}
		nums[i] = f
	}

	if allowIndex && isSequential(nums) {
		return SequentialIndex
	}
	return Numeric
}

// isSequential reports whether nums has more than one value and each value is
// exactly one more than the previous.
func isSequential(nums []float64) bool {
	if len(nums) < 2 {
		return false
	}
	for i := 1; i < len(nums); i++ {
		if nums[i]-nums[i-1] != 1 {
			return false
		}
	}
	return true
}
