package core

// Selection restricts one column to a set of accepted values.
//
// An empty accepted set matches no rows. A selection on a column the table
// does not have is treated the same as an empty selection.
type Selection struct {
	Column   string
	Accepted []string
}

// NewSelection builds a selection, dropping duplicate values while keeping
// the order in which values were first given.
func NewSelection(column string, values ...string) Selection {
	seen := make(map[string]struct{}, len(values))
	accepted := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		accepted = append(accepted, v)
	}
	return Selection{Column: column, Accepted: accepted}
}

// IsEmpty reports whether the selection accepts no values.
func (s Selection) IsEmpty() bool {
	return len(s.Accepted) == 0
}

// set returns the accepted values as a lookup set.
func (s Selection) set() map[string]struct{} {
	m := make(map[string]struct{}, len(s.Accepted))
	for _, v := range s.Accepted {
		m[v] = struct{}{}
	}
	return m
}

// Apply returns the rows of t whose value in the selection's column is one
// of the accepted values.
func (s Selection) Apply(t *Table) *Table {
	idx, ok := t.ColumnIndex(s.Column)
	if !ok || s.IsEmpty() {
		return t.Where(func([]string) bool { return false })
	}
	accepted := s.set()
	return t.Where(func(row []string) bool {
		_, keep := accepted[row[idx]]
		return keep
	})
}

// Pipeline is an ordered list of selections. Selections are combined with
// logical AND, and each selection's candidate values are scoped to the rows
// left by the selections before it.
type Pipeline []Selection

// Apply returns the working subset: the rows of t matched by every selection,
// in their original order. Apply never modifies t and always returns a
// non-nil table carrying t's columns.
func (p Pipeline) Apply(t *Table) *Table {
	out := t.Where(func([]string) bool { return true })
	for _, s := range p {
		out = s.Apply(out)
	}
	return out
}

// Options returns the candidate values for selection i: the distinct values
// of its column among the rows kept by selections 0..i-1.
func (p Pipeline) Options(t *Table, i int) []string {
	if i < 0 || i >= len(p) {
		return []string{}
	}
	return DistinctValuesOf(p[:i].Apply(t), p[i].Column)
}

// Resolve constrains every selection to values that are still offered for it,
// cascading from the first selection to the last. Accepted values that no
// longer appear are dropped; a selection on a missing column becomes empty.
func (p Pipeline) Resolve(t *Table) Pipeline {
	out := make(Pipeline, len(p))
	for i, s := range p {
		out[i] = Selection{Column: s.Column, Accepted: []string{}}
		if !t.HasColumn(s.Column) {
			continue
		}
		offered := make(map[string]struct{})
		for _, v := range out.Options(t, i) {
			offered[v] = struct{}{}
		}
		for _, v := range s.Accepted {
			if _, ok := offered[v]; ok {
				out[i].Accepted = append(out[i].Accepted, v)
			}
		}
	}
	return out
}

// Values returns the accepted values of the first selection on column.
func (p Pipeline) Values(column string) []string {
	for _, s := range p {
		if s.Column == column {
			return append([]string{}, s.Accepted...)
		}
	}
	return []string{}
}
