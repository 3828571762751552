package scale

import (
	"math"

	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"

	"salaryviz/internal/models"
)

// niceTicks is the tick count "nice" rounding aims for.
const niceTicks = 10

// NumericOptions controls how a numeric domain is derived from rows.
type NumericOptions struct {
	// ZeroBase starts the domain at 0 instead of the data minimum.
	ZeroBase bool

	// Headroom multiplies the upper bound so marks stay clear of the
	// top edge. Values <= 0 mean 1.
	Headroom float64

	// Nice extends the domain outwards to round tick values.
	Nice bool
}

// Extent returns the minimum and maximum of field over rows. It returns
// 0, 0 for no rows.
func Extent(rows []models.Row, field models.Field) (min, max float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	xs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Number(field); ok {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return 0, 0
	}
	return stats.Bounds(xs)
}

// NumericDomain returns the domain of field over rows according to opts.
func NumericDomain(rows []models.Row, field models.Field, opts NumericOptions) (min, max float64) {
	min, max = Extent(rows, field)
	if opts.ZeroBase {
		min = 0
	}
	if opts.Headroom > 0 {
		max *= opts.Headroom
	}
	if opts.Nice {
		min, max = Nice(min, max, niceTicks)
	}
	return min, max
}

// Linear maps a numeric domain linearly onto a range. Projectors built
// by NewLinear clamp values outside the domain to the range ends; those
// derived by a Transform do not, so panned-away marks land off-range.
type Linear struct {
	field models.Field
	s     scale.Linear
	rng   Range
	clamp bool
}

// NewLinear returns a clamping linear projector from [min, max] to rng.
func NewLinear(field models.Field, min, max float64, rng Range) Linear {
	return Linear{
		field: field,
		s:     scale.Linear{Min: min, Max: max},
		rng:   rng,
		clamp: true,
	}
}

// Map returns the pixel position of v. A degenerate domain maps every
// value to the middle of the range.
func (l Linear) Map(v float64) float64 {
	if l.s.Min == l.s.Max {
		return l.rng.lerp(0.5)
	}
	t := l.s.Map(v)
	if l.clamp {
		t = math.Min(1, math.Max(0, t))
	}
	return l.rng.lerp(t)
}

// Invert returns the domain value at pixel px, without clamping.
func (l Linear) Invert(px float64) float64 {
	if l.rng.From == l.rng.To {
		return l.s.Min
	}
	t := (px - l.rng.From) / (l.rng.To - l.rng.From)
	return l.s.Min + t*(l.s.Max-l.s.Min)
}

// Project maps the row's value of the projector's field.
func (l Linear) Project(r models.Row) (float64, error) {
	v, ok := r.Number(l.field)
	if !ok {
		return 0, ErrNotNumeric
	}
	return l.Map(v), nil
}

// Domain returns the domain bounds.
func (l Linear) Domain() (min, max float64) { return l.s.Min, l.s.Max }

// Ticks returns at most max round tick values inside the domain.
func (l Linear) Ticks(max int) []float64 {
	lo, hi := l.s.Min, l.s.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return []float64{lo}
	}
	s := scale.Linear{Min: lo, Max: hi}
	major, _ := s.Ticks(scale.TickOptions{Max: max})
	return major
}

func (l Linear) Field() models.Field { return l.field }
func (l Linear) Range() Range        { return l.rng }

// Nice extends [min, max] outwards so both ends fall on multiples of a
// 1, 2 or 5 × 10^n tick step for roughly count ticks.
func Nice(min, max float64, count int) (float64, float64) {
	if max < min {
		n0, n1 := Nice(max, min, count)
		return n1, n0
	}
	var prestep float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(min, max, count)
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			min = math.Floor(min/step) * step
			max = math.Ceil(max/step) * step
		case step < 0:
			min = math.Ceil(min*step) / step
			max = math.Floor(max*step) / step
		default:
			return min, max
		}
		prestep = step
	}
	return min, max
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickIncrement returns the tick step for [start, stop]. Steps below 1
// are returned negated and inverted (-10 means 0.1) to keep them exact.
func tickIncrement(start, stop float64, count int) float64 {
	if count <= 0 || !(stop > start) {
		return 0
	}
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// Ordinal maps an ordered categorical domain onto a continuous axis:
// the i'th value sits at position i+1 of a linear scale over
// [0.5, n+0.5], so the axis can be zoomed like a numeric one.
type Ordinal struct {
	field  models.Field
	domain []string
	rank   map[string]int
	lin    Linear
}

// NewOrdinal returns an ordinal projector over domain.
func NewOrdinal(field models.Field, domain []string, rng Range) Ordinal {
	o := Ordinal{
		field:  field,
		domain: append([]string(nil), domain...),
		rank:   make(map[string]int, len(domain)),
	}
	for i, v := range o.domain {
		if _, ok := o.rank[v]; !ok {
			o.rank[v] = i + 1
		}
	}
	o.lin = NewLinear(field, 0.5, float64(len(domain))+0.5, rng)
	return o
}

// Rank returns the 1-based position of v in the domain.
func (o Ordinal) Rank(v string) (int, error) {
	r, ok := o.rank[v]
	if !ok {
		return 0, &OutOfDomainError{Field: o.field, Value: v}
	}
	return r, nil
}

// Map returns the pixel position of v.
func (o Ordinal) Map(v string) (float64, error) {
	r, err := o.Rank(v)
	if err != nil {
		return 0, err
	}
	return o.lin.Map(float64(r)), nil
}

// Project maps the row's value of the projector's field.
func (o Ordinal) Project(r models.Row) (float64, error) { return o.Map(r.Text(o.field)) }

// Linear returns the underlying rank scale.
func (o Ordinal) Linear() Linear { return o.lin }

// Domain returns a copy of the enumerated domain.
func (o Ordinal) Domain() []string { return append([]string(nil), o.domain...) }

func (o Ordinal) Field() models.Field { return o.field }
func (o Ordinal) Range() Range        { return o.lin.rng }
