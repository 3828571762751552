// Package scale maps field values onto pixel coordinates.
//
// Every projector is an immutable value: it is built from a domain and
// a pixel range and has no setters. When the visible rows change the
// caller builds a new projector; zoom and pan derive new projectors
// from a base one (see Transform).
package scale

import (
	"errors"
	"fmt"

	"salaryviz/internal/models"
)

// ErrNotNumeric is returned when a numeric projector is asked to
// project a categorical field.
var ErrNotNumeric = errors.New("field is not numeric")

// OutOfDomainError reports a categorical value that is not part of the
// projector's enumerated domain.
type OutOfDomainError struct {
	Field models.Field
	Value string
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("%s: value %q outside domain", e.Field, e.Value)
}

// Range is a pixel interval. From may be greater than To, as for a
// vertical axis that grows upwards.
type Range struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

func (r Range) lerp(t float64) float64 { return r.From + t*(r.To-r.From) }

// Projector places one field of a row on a pixel axis.
type Projector interface {
	Field() models.Field
	Project(r models.Row) (float64, error)
	Range() Range
}

// Kind is the type of a field's domain.
type Kind int

const (
	Categorical Kind = iota
	Numerical
	Ordered
)

func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Numerical:
		return "numerical"
	case Ordered:
		return "ordinal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// FieldSpec describes how to build the projector for one field.
type FieldSpec struct {
	Field models.Field
	Kind  Kind

	// Values is the enumerated domain of a categorical or ordinal
	// field. If empty, the distinct values of the rows are used in
	// first-appearance order.
	Values []string

	// Padding is the edge padding of a categorical axis, in steps.
	Padding float64

	// Numeric controls the domain of a numerical field.
	Numeric NumericOptions
}

// Project builds the projector described by fs over rows. Numeric
// domains are computed from rows, so the result always reflects the
// rows currently visible.
func Project(fs FieldSpec, rows []models.Row, rng Range) (Projector, error) {
	switch fs.Kind {
	case Categorical:
		return NewPoint(fs.Field, domainValues(fs, rows), rng, fs.Padding), nil
	case Ordered:
		return NewOrdinal(fs.Field, domainValues(fs, rows), rng), nil
	case Numerical:
		if len(rows) > 0 {
			if _, ok := rows[0].Number(fs.Field); !ok {
				return nil, fmt.Errorf("%s: %w", fs.Field, ErrNotNumeric)
			}
		}
		min, max := NumericDomain(rows, fs.Field, fs.Numeric)
		return NewLinear(fs.Field, min, max, rng), nil
	}
	return nil, fmt.Errorf("%s: unknown field kind %v", fs.Field, fs.Kind)
}

func domainValues(fs FieldSpec, rows []models.Row) []string {
	if len(fs.Values) > 0 {
		return fs.Values
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		v := r.Text(fs.Field)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
