package view

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"salaryviz/internal/engine"
	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

var (
	ErrUnknownView     = errors.New("unknown view")
	ErrNotBrushable    = errors.New("view cannot be brushed")
	ErrNotZoomable     = errors.New("view cannot be zoomed")
	ErrNotHoverable    = errors.New("view has no row marks")
	ErrIndexOutOfRange = errors.New("row index out of range")
	ErrNoMark          = errors.New("row has no mark in view")

	ErrInvalidTransform = errors.New("transform is not finite")
)

// Margin is the space around a view's drawable area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargin matches the dashboard's chart layout.
var DefaultMargin = Margin{Top: 40, Right: 40, Bottom: 60, Left: 80}

// Inner returns the drawable size of a container of size s.
func (m Margin) Inner(s models.Size) models.Size {
	return models.Size{
		Width:  math.Max(0, s.Width-m.Left-m.Right),
		Height: math.Max(0, s.Height-m.Top-m.Bottom),
	}
}

// Config configures a Coordinator.
type Config struct {
	// Employment is the constant employment-type filter of every
	// working set. Empty disables it.
	Employment string

	// Margin is subtracted from container sizes.
	Margin Margin

	// DefaultSize is the container size of views not yet resized.
	DefaultSize models.Size

	Logger *slog.Logger
}

// FilterResult summarizes a filter change.
type FilterResult struct {
	Rows int      `json:"rows"`
	Keys []string `json:"keys,omitempty"`
}

// Coordinator owns the active predicate and working set and re-renders
// views when they change. All methods are serialized on one mutex and
// every render is idempotent, so concurrent events are applied in
// arrival order and the last one always determines the final frames.
type Coordinator struct {
	mu       sync.Mutex
	ds       *engine.Dataset
	cfg      Config
	logger   *slog.Logger
	renderer Renderer

	views      []View
	byName     map[string]View
	sizes      map[string]models.Size
	highlights map[string]int
	brushes    map[string]Brush
	zooms      map[string]TransformState

	predicate engine.Predicate
	working   []models.Row
}

// NewCoordinator returns a coordinator over ds with an unfiltered
// working set. Views render in the order given.
func NewCoordinator(ds *engine.Dataset, r Renderer, cfg Config, views ...View) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		ds:         ds,
		cfg:        cfg,
		logger:     logger,
		renderer:   r,
		byName:     make(map[string]View, len(views)),
		sizes:      make(map[string]models.Size, len(views)),
		highlights: make(map[string]int, len(views)),
		brushes:    make(map[string]Brush),
		zooms:      make(map[string]TransformState),
	}
	for _, v := range views {
		c.views = append(c.views, v)
		c.byName[v.Name()] = v
		c.sizes[v.Name()] = cfg.DefaultSize
		c.highlights[v.Name()] = NoHighlight
		if z, ok := v.(Zoomable); ok {
			c.zooms[v.Name()] = NewTransformState(z.ZoomBounds())
		}
	}
	c.predicate = engine.PassAll()
	c.working = engine.WorkingSet(ds, cfg.Employment, c.predicate)
	return c
}

// Render draws every view.
func (c *Coordinator) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked("")
}

// FilterChange installs p, recomputes the working set from the dataset
// and re-renders every view except origin. An unchanged predicate
// renders nothing. The current selection is available from Selection;
// no frame carries it.
func (c *Coordinator) FilterChange(origin string, p engine.Predicate) (FilterResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterChangeLocked(origin, p)
}

func (c *Coordinator) filterChangeLocked(origin string, p engine.Predicate) (FilterResult, error) {
	if p.Equal(c.predicate) {
		// Same rows, same frames.
		return c.selectionLocked(), nil
	}
	c.predicate = p
	c.working = engine.WorkingSet(c.ds, c.cfg.Employment, p)
	// Hover indexes refer to the old working set.
	for name := range c.highlights {
		c.highlights[name] = NoHighlight
	}
	res := c.selectionLocked()
	c.logger.Debug("filter changed", "origin", origin, "rows", res.Rows, "keys", len(res.Keys))
	return res, c.renderLocked(origin)
}

// Brush applies a completed brush gesture over pixel extent [x0, x1]
// of the named view.
func (c *Coordinator) Brush(name string, x0, x1 float64) (FilterResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.viewLocked(name)
	if err != nil {
		return FilterResult{}, err
	}
	bv, ok := v.(Brushable)
	if !ok {
		return FilterResult{}, fmt.Errorf("%s: %w", name, ErrNotBrushable)
	}
	layout, err := bv.Layout(c.contextLocked(v))
	if err != nil {
		return FilterResult{}, fmt.Errorf("%s: %w", name, err)
	}
	b := c.brushes[name].End(layout, x0, x1)
	c.brushes[name] = b
	return c.filterChangeLocked(name, b.Predicate())
}

// ClearBrush removes the named view's brush selection.
func (c *Coordinator) ClearBrush(name string) (FilterResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.viewLocked(name)
	if err != nil {
		return FilterResult{}, err
	}
	if _, ok := v.(Brushable); !ok {
		return FilterResult{}, fmt.Errorf("%s: %w", name, ErrNotBrushable)
	}
	c.brushes[name] = c.brushes[name].Clear()
	return c.filterChangeLocked(name, engine.PassAll())
}

// Resize sets container sizes and re-renders every view, including the
// overview, under the current selection.
func (c *Coordinator) Resize(sizes map[string]models.Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range sizes {
		if _, err := c.viewLocked(name); err != nil {
			return err
		}
	}
	for name, s := range sizes {
		c.sizes[name] = s
	}
	return c.renderLocked("")
}

// Zoom sets the transform of a zoomable view. While active is true the
// gesture is in progress and decorations are suppressed; the final
// call of a gesture passes active=false.
func (c *Coordinator) Zoom(name string, t scale.Transform, active bool) (scale.Transform, error) {
	if !t.Finite() {
		return scale.Transform{}, fmt.Errorf("%s: %w: %+v", name, ErrInvalidTransform, t)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateZoomLocked(name, gesture(active, func(s TransformState) TransformState {
		return s.Set(t)
	}))
}

// ZoomBy scales the named view's transform by factor around pixel
// (px, py), as a wheel step does.
func (c *Coordinator) ZoomBy(name string, factor, px, py float64, active bool) (scale.Transform, error) {
	if !(scale.Transform{K: factor, X: px, Y: py}).Finite() || factor <= 0 {
		return scale.Transform{}, fmt.Errorf("%s: %w: factor %g at (%g, %g)", name, ErrInvalidTransform, factor, px, py)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateZoomLocked(name, gesture(active, func(s TransformState) TransformState {
		return s.ZoomAt(factor, px, py)
	}))
}

// Pan translates the named view's transform by (dx, dy) pixels, as a
// drag step does.
func (c *Coordinator) Pan(name string, dx, dy float64, active bool) (scale.Transform, error) {
	if !(scale.Transform{K: 1, X: dx, Y: dy}).Finite() {
		return scale.Transform{}, fmt.Errorf("%s: %w: pan (%g, %g)", name, ErrInvalidTransform, dx, dy)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateZoomLocked(name, gesture(active, func(s TransformState) TransformState {
		return s.Pan(dx, dy)
	}))
}

// gesture applies step and then begins or ends the gesture.
func gesture(active bool, step func(TransformState) TransformState) func(TransformState) TransformState {
	return func(s TransformState) TransformState {
		s = step(s)
		if active {
			return s.Begin()
		}
		return s.End()
	}
}

// ResetZoom returns a zoomable view to the identity transform.
func (c *Coordinator) ResetZoom(name string) (scale.Transform, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateZoomLocked(name, TransformState.Reset)
}

func (c *Coordinator) updateZoomLocked(name string, step func(TransformState) TransformState) (scale.Transform, error) {
	v, err := c.viewLocked(name)
	if err != nil {
		return scale.Transform{}, err
	}
	if _, ok := v.(Zoomable); !ok {
		return scale.Transform{}, fmt.Errorf("%s: %w", name, ErrNotZoomable)
	}
	s := step(c.zooms[name])
	c.zooms[name] = s
	return s.Transform(), c.drawLocked(v)
}

// HoverEnter highlights working set row index in the named view and
// returns the row.
func (c *Coordinator) HoverEnter(name string, index int) (models.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.viewLocked(name)
	if err != nil {
		return models.Row{}, err
	}
	rv, ok := v.(RowView)
	if !ok {
		return models.Row{}, fmt.Errorf("%s: %w", name, ErrNotHoverable)
	}
	row, err := rv.HoverRow(c.contextLocked(v), index)
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", name, err)
	}
	c.highlights[name] = index
	return row, c.drawLocked(v)
}

// HoverExit clears the named view's highlight.
func (c *Coordinator) HoverExit(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.viewLocked(name)
	if err != nil {
		return err
	}
	if c.highlights[name] == NoHighlight {
		return nil
	}
	c.highlights[name] = NoHighlight
	return c.drawLocked(v)
}

// Predicate returns the active predicate.
func (c *Coordinator) Predicate() engine.Predicate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.predicate
}

// Selection returns the size of the working set and the selected keys
// of the active predicate.
func (c *Coordinator) Selection() FilterResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectionLocked()
}

func (c *Coordinator) selectionLocked() FilterResult {
	return FilterResult{Rows: len(c.working), Keys: c.predicate.Values()}
}

// WorkingSet returns a copy of the current working set.
func (c *Coordinator) WorkingSet() []models.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Row(nil), c.working...)
}

// Views returns the registered view names in render order.
func (c *Coordinator) Views() []string {
	names := make([]string, len(c.views))
	for i, v := range c.views {
		names[i] = v.Name()
	}
	return names
}

func (c *Coordinator) viewLocked(name string) (View, error) {
	v, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return v, nil
}

func (c *Coordinator) contextLocked(v View) *Context {
	name := v.Name()
	ctx := &Context{
		Dataset:    c.ds,
		WorkingSet: c.working,
		Predicate:  c.predicate,
		Size:       c.cfg.Margin.Inner(c.sizes[name]),
		Transform:  scale.Identity(),
		Highlight:  c.highlights[name],
		Logger:     c.logger,
	}
	if z, ok := c.zooms[name]; ok {
		ctx.Transform = z.Transform()
		ctx.Gesture = z.Active()
	}
	return ctx
}

// renderLocked draws every view but skip. A failing view does not stop
// the others; all errors are returned together.
func (c *Coordinator) renderLocked(skip string) error {
	var errs []error
	for _, v := range c.views {
		if v.Name() == skip {
			continue
		}
		if err := c.drawLocked(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) drawLocked(v View) error {
	f, err := v.Render(c.contextLocked(v))
	if err != nil {
		c.logger.Error("render failed", "view", v.Name(), "err", err)
		return fmt.Errorf("render %s: %w", v.Name(), err)
	}
	if err := c.renderer.Draw(f); err != nil {
		return fmt.Errorf("draw %s: %w", v.Name(), err)
	}
	return nil
}
