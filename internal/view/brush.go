package view

import (
	"salaryviz/internal/engine"
	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

// BrushState is the state of a brush selection.
type BrushState int

const (
	Unselected BrushState = iota
	Selected
)

func (s BrushState) String() string {
	if s == Selected {
		return "selected"
	}
	return "unselected"
}

// BrushLayout is what a brushable view exposes for hit testing: the
// groups it draws and the band projector that placed them.
type BrushLayout struct {
	Field  models.Field
	Groups []models.AggregateGroup
	Band   scale.Band
}

// Brush is a selection over the bars of a view. It is a value: every
// transition returns a new Brush.
type Brush struct {
	field models.Field
	keys  []string
}

// State reports whether the brush selects anything.
func (b Brush) State() BrushState {
	if len(b.keys) == 0 {
		return Unselected
	}
	return Selected
}

// Keys returns the selected keys in bar order.
func (b Brush) Keys() []string { return append([]string(nil), b.keys...) }

// Predicate returns the filter this brush imposes.
func (b Brush) Predicate() engine.Predicate {
	if b.State() == Unselected {
		return engine.PassAll()
	}
	return engine.Allow(b.field, b.keys...)
}

// End completes a brush gesture over pixel extent [x0, x1]. A zero-width
// extent clears the brush, and so does an extent that fully contains no
// bar: an empty selection never blanks the dependent views.
func (b Brush) End(layout BrushLayout, x0, x1 float64) Brush {
	if x0 == x1 {
		return b.Clear()
	}
	keys := SelectKeys(layout, x0, x1)
	if len(keys) == 0 {
		return b.Clear()
	}
	return Brush{field: layout.Field, keys: keys}
}

// Clear returns the unselected brush.
func (b Brush) Clear() Brush { return Brush{} }

// SelectKeys returns the keys of the bars lying entirely inside
// [x0, x1]; a bar that only overlaps an edge is not selected.
func SelectKeys(layout BrushLayout, x0, x1 float64) []string {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	var keys []string
	for _, g := range layout.Groups {
		x, err := layout.Band.Map(g.Key)
		if err != nil {
			continue
		}
		if x >= x0 && x+layout.Band.Bandwidth() <= x1 {
			keys = append(keys, g.Key)
		}
	}
	return keys
}
