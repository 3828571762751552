package scale

import (
	"math"

	"salaryviz/internal/models"
)

// Band lays a categorical domain out as equal-width bands across a
// range. Inner padding is the gap between bands and outer padding the
// gap at either edge, both as fractions of the step. Bands are centered
// in the range.
type Band struct {
	field     models.Field
	domain    []string
	index     map[string]int
	rng       Range
	starts    []float64
	step      float64
	bandwidth float64
}

// NewBand returns a band projector over domain.
func NewBand(field models.Field, domain []string, rng Range, paddingInner, paddingOuter float64) Band {
	paddingInner = math.Min(1, math.Max(0, paddingInner))
	paddingOuter = math.Max(0, paddingOuter)

	b := Band{
		field:  field,
		domain: append([]string(nil), domain...),
		index:  make(map[string]int, len(domain)),
		rng:    rng,
	}
	for i, v := range b.domain {
		if _, ok := b.index[v]; !ok {
			b.index[v] = i
		}
	}

	n := float64(len(b.domain))
	reverse := rng.To < rng.From
	start, stop := rng.From, rng.To
	if reverse {
		start, stop = stop, start
	}
	b.step = (stop - start) / math.Max(1, n-paddingInner+paddingOuter*2)
	start += (stop - start - b.step*(n-paddingInner)) * 0.5
	b.bandwidth = b.step * (1 - paddingInner)

	b.starts = make([]float64, len(b.domain))
	for i := range b.starts {
		j := i
		if reverse {
			j = len(b.starts) - 1 - i
		}
		b.starts[j] = start + b.step*float64(i)
	}
	return b
}

// NewPoint returns a projector placing domain values at evenly spaced
// points, with padding steps of space at either edge.
func NewPoint(field models.Field, domain []string, rng Range, padding float64) Band {
	return NewBand(field, domain, rng, 1, padding)
}

// Map returns the start of v's band (for a point projector, the point).
func (b Band) Map(v string) (float64, error) {
	i, ok := b.index[v]
	if !ok {
		return 0, &OutOfDomainError{Field: b.field, Value: v}
	}
	return b.starts[i], nil
}

// Project maps the row's value of the projector's field.
func (b Band) Project(r models.Row) (float64, error) { return b.Map(r.Text(b.field)) }

// Bandwidth is the width of each band; zero for point projectors.
func (b Band) Bandwidth() float64 { return b.bandwidth }

// Step is the distance between the starts of adjacent bands.
func (b Band) Step() float64 { return b.step }

// Domain returns a copy of the enumerated domain.
func (b Band) Domain() []string { return append([]string(nil), b.domain...) }

func (b Band) Field() models.Field { return b.field }
func (b Band) Range() Range        { return b.rng }
