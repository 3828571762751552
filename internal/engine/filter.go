package engine

import (
	"sort"

	"salaryviz/internal/models"
)

// FullTime is the employment type every working set is restricted to.
const FullTime = "FT"

// Predicate restricts one field to a set of allowed values. The zero
// Predicate passes every row. A Predicate is never modified after
// construction; a new selection builds a new one.
type Predicate struct {
	field   models.Field
	allowed map[string]struct{}
}

// PassAll returns the predicate that accepts every row.
func PassAll() Predicate { return Predicate{} }

// Allow returns a predicate accepting rows whose field is one of
// values. With no values it is PassAll.
func Allow(field models.Field, values ...string) Predicate {
	if len(values) == 0 {
		return PassAll()
	}
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return Predicate{field: field, allowed: allowed}
}

// IsPassAll reports whether p accepts every row.
func (p Predicate) IsPassAll() bool { return p.allowed == nil }

// Field returns the restricted field, or "" for PassAll.
func (p Predicate) Field() models.Field { return p.field }

// Values returns the allowed values in sorted order.
func (p Predicate) Values() []string {
	if p.allowed == nil {
		return nil
	}
	out := make([]string, 0, len(p.allowed))
	for v := range p.allowed {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Match reports whether r satisfies p.
func (p Predicate) Match(r models.Row) bool {
	if p.allowed == nil {
		return true
	}
	_, ok := p.allowed[r.Text(p.field)]
	return ok
}

// Equal reports whether p and q accept the same rows.
func (p Predicate) Equal(q Predicate) bool {
	if p.IsPassAll() || q.IsPassAll() {
		return p.IsPassAll() == q.IsPassAll()
	}
	if p.field != q.field || len(p.allowed) != len(q.allowed) {
		return false
	}
	for v := range p.allowed {
		if _, ok := q.allowed[v]; !ok {
			return false
		}
	}
	return true
}

// WorkingSet returns the rows of ds with the given employment type that
// satisfy p, in load order. An empty employment type disables the
// constant filter. The result is always computed from ds and is never
// nil.
func WorkingSet(ds *Dataset, employment string, p Predicate) []models.Row {
	out := make([]models.Row, 0)
	for _, r := range ds.Rows() {
		if employment != "" && r.EmploymentType != employment {
			continue
		}
		if !p.Match(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
