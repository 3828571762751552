// Package view turns the working set into projected frames and keeps
// the dashboard's views consistent as the user brushes, zooms and
// hovers.
package view

import (
	"fmt"
	"log/slog"
	"strconv"

	"salaryviz/internal/engine"
	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

// View names used by the dashboard.
const (
	OverviewName = "overview"
	ScatterName  = "scatter"
	ParallelName = "parallel"
)

// NoHighlight marks a frame with no hovered row.
const NoHighlight = -1

// Context is everything a view needs for one render pass. Views treat
// it as read-only.
type Context struct {
	Dataset    *engine.Dataset
	WorkingSet []models.Row
	Predicate  engine.Predicate
	Size       models.Size
	Transform  scale.Transform
	Gesture    bool
	Highlight  int
	Logger     *slog.Logger
}

func (ctx *Context) logger() *slog.Logger {
	if ctx.Logger == nil {
		return slog.Default()
	}
	return ctx.Logger
}

// A View projects a Context into a Frame. Render must be idempotent:
// the same Context always yields the same Frame.
type View interface {
	Name() string
	Render(ctx *Context) (Frame, error)
}

// Brushable is a view whose bars can be brushed to filter the others.
type Brushable interface {
	View
	Layout(ctx *Context) (BrushLayout, error)
}

// Zoomable is a view with its own zoom/pan transform.
type Zoomable interface {
	View
	ZoomBounds() (min, max float64)
}

// RowView is a view that draws one mark per working set row, so hover
// indexes refer to working set rows. HoverRow returns the row behind
// mark index, or an error if the index is out of range or the row has
// no mark in this view.
type RowView interface {
	View
	HoverRow(ctx *Context, index int) (models.Row, error)
}

// workingRow returns working set row i.
func workingRow(ctx *Context, i int) (models.Row, error) {
	if i < 0 || i >= len(ctx.WorkingSet) {
		return models.Row{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return ctx.WorkingSet[i], nil
}

// yTicks projects the ticks of a numeric axis.
func yTicks(l scale.Linear, n int, format func(float64) string) []Tick {
	values := l.Ticks(n)
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Value: v, Pos: l.Map(v)}
		if format != nil {
			ticks[i].Label = format(v)
		}
	}
	return ticks
}

// dollarsK formats a salary as $120k.
func dollarsK(v float64) string {
	return "$" + strconv.FormatFloat(v/1000, 'f', -1, 64) + "k"
}

func percent(v float64) string { return fmt.Sprintf("%g%%", v) }
