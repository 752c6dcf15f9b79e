package chart

// Role is the classification of a single column.
type Role string

const (
	// Categorical columns label the chart axis.
	Categorical Role = "categorical"
	// Numeric columns become chart series.
	Numeric Role = "numeric"
	// SequentialIndex columns are numeric row counters (1, 2, 3...) and are
	// left out of both labels and series.
	SequentialIndex Role = "sequential_index"
)

// Column pairs a header with its role.
type Column struct {
	Header string `json:"header"`
	Role   Role   `json:"role"`
}

// Columns holds the roles of every header, in header order.
type Columns []Column

// Role returns the role of header. Unknown headers are Categorical.
func (c Columns) Role(header string) Role {
	for _, col := range c {
		if col.Header == header {
			return col.Role
		}
	}
	return Categorical
}

// Numeric returns the Numeric headers in order. SequentialIndex columns are
// not included.
func (c Columns) Numeric() []string {
	return c.with(Numeric)
}

// Categorical returns the Categorical headers in order.
func (c Columns) Categorical() []string {
	return c.with(Categorical)
}

// SequentialIndex returns the header classified as a row index, if any.
func (c Columns) SequentialIndex() (string, bool) {
	for _, col := range c {
		if col.Role == SequentialIndex {
			return col.Header, true
		}
	}
	return "", false
}

func (c Columns) with(role Role) []string {
	var out []string
	for _, col := range c {
		if col.Role == role {
			out = append(out, col.Header)
		}
	}
	return out
}
