package table

import "sort"

// RowTable is an ordered sequence of rows; each row maps a column name to
// a Value. Row count is fixed once constructed; columns are an open set
// since kernels may write back new column names.
type RowTable struct {
	rows []map[string]Value
}

// New builds a RowTable from already-decoded rows. The row count is fixed
// for the lifetime of the table.
func New(rows []map[string]Value) *RowTable {
	return &RowTable{rows: rows}
}

// NewEmpty builds a RowTable of n rows, each with no columns set.
func NewEmpty(n int) *RowTable {
	rows := make([]map[string]Value, n)
	for i := range rows {
		rows[i] = make(map[string]Value)
	}
	return &RowTable{rows: rows}
}

// Len returns the row count.
func (t *RowTable) Len() int { return len(t.rows) }

// Get looks up column name in row i with an exact-case match only; callers
// needing the case-fallback chain use Lookup in the
// binder package, which calls this three times.
func (t *RowTable) Get(row int, name string) (Value, bool) {
	v, ok := t.rows[row][name]
	return v, ok
}

// Set assigns column name in row i, creating the column if it did not
// already exist in that row.
func (t *RowTable) Set(row int, name string, v Value) {
	t.rows[row][name] = v
}

// Row returns the raw column map for row i. Callers must not retain it
// across calls that mutate the table from another row index.
func (t *RowTable) Row(i int) map[string]Value {
	return t.rows[i]
}

// Columns returns the union of every column name present in any row,
// sorted alphabetically (the ordering CSV output requires).
func (t *RowTable) Columns() []string {
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		for name := range row {
			seen[name] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for name := range seen {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}
