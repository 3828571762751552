package view

import (
	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

// Frame is the fully projected state of one view, ready for a renderer.
type Frame interface {
	ViewName() string
}

// Renderer draws frames. It is called with the coordinator's lock held
// and must not call back into the coordinator.
type Renderer interface {
	Draw(f Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame) error

func (fn RendererFunc) Draw(f Frame) error { return fn(f) }

// Bar is one overview bar in view pixels.
type Bar struct {
	Key    string  `json:"key"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OverviewFrame is the aggregate bar chart.
type OverviewFrame struct {
	View    string      `json:"view"`
	Size    models.Size `json:"size"`
	Bars    []Bar       `json:"bars"`
	YDomain [2]float64  `json:"y_domain"`
	YTicks  []Tick      `json:"y_ticks"`
}

func (f *OverviewFrame) ViewName() string { return f.View }

// Point is one scatter mark. Index is the row's position in the
// working set.
type Point struct {
	Index int     `json:"index"`
	CX    float64 `json:"cx"`
	CY    float64 `json:"cy"`
	Color string  `json:"color"`
}

// Tick is an axis tick: a domain value and its pixel position.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
	Pos   float64 `json:"pos"`
}

// ScatterFrame is the zoomable salary/experience scatter plot.
type ScatterFrame struct {
	View      string          `json:"view"`
	Size      models.Size     `json:"size"`
	Points    []Point         `json:"points"`
	XDomain   [2]float64      `json:"x_domain"`
	YDomain   [2]float64      `json:"y_domain"`
	XTicks    []Tick          `json:"x_ticks"`
	YTicks    []Tick          `json:"y_ticks"`
	Gridlines bool            `json:"gridlines"`
	Transform scale.Transform `json:"transform"`
	Legend    []Tick          `json:"legend"`
	Highlight int             `json:"highlight"`
	Skipped   int             `json:"skipped,omitempty"`
}

func (f *ScatterFrame) ViewName() string { return f.View }

// Axis is one vertical axis of the parallel coordinates plot.
type Axis struct {
	Field  models.Field `json:"field"`
	Label  string       `json:"label"`
	Kind   scale.Kind   `json:"kind"`
	X      float64      `json:"x"`
	Ticks  []Tick       `json:"ticks"`
	Values []string     `json:"values,omitempty"`
}

// Line is one row's polyline across the axes.
type Line struct {
	Index  int          `json:"index"`
	Points [][2]float64 `json:"points"`
}

// ParallelFrame is the parallel coordinates plot.
type ParallelFrame struct {
	View      string      `json:"view"`
	Size      models.Size `json:"size"`
	Axes      []Axis      `json:"axes"`
	Lines     []Line      `json:"lines"`
	Highlight int         `json:"highlight"`
	Caption   string      `json:"caption"`
	Skipped   int         `json:"skipped,omitempty"`
}

func (f *ParallelFrame) ViewName() string { return f.View }
