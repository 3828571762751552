package view

import (
	"salaryviz/internal/engine"
	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

// Overview is the bar chart of mean salary per job title. It aggregates
// the whole dataset, so its frame depends only on the dataset and its
// size; the brush selection lives in the coordinator.
type Overview struct {
	Key, Value models.Field
	Aggregate  engine.AggregateOptions
	Padding    float64
	Headroom   float64
	Ticks      int
}

// NewOverview returns the mean-salary-by-title overview.
func NewOverview(opts engine.AggregateOptions) *Overview {
	return &Overview{
		Key:       models.JobTitle,
		Value:     models.SalaryInUSD,
		Aggregate: opts,
		Padding:   0.2,
		Headroom:  1.05,
		Ticks:     10,
	}
}

func (v *Overview) Name() string { return OverviewName }

// Layout aggregates the dataset and places the bars.
func (v *Overview) Layout(ctx *Context) (BrushLayout, error) {
	groups, err := engine.Aggregate(ctx.Dataset.Rows(), v.Key, v.Value, v.Aggregate)
	if err != nil {
		return BrushLayout{}, err
	}
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return BrushLayout{
		Field:  v.Key,
		Groups: groups,
		Band:   scale.NewBand(v.Key, keys, scale.Range{From: 0, To: ctx.Size.Width}, v.Padding, v.Padding),
	}, nil
}

func (v *Overview) yScale(ctx *Context, groups []models.AggregateGroup) scale.Linear {
	max := engine.MaxMean(groups)
	if v.Headroom > 0 {
		max *= v.Headroom
	}
	min, max := scale.Nice(0, max, 10)
	return scale.NewLinear(v.Value, min, max, scale.Range{From: ctx.Size.Height, To: 0})
}

func (v *Overview) Render(ctx *Context) (Frame, error) {
	layout, err := v.Layout(ctx)
	if err != nil {
		return nil, err
	}
	y := v.yScale(ctx, layout.Groups)

	f := &OverviewFrame{
		View: v.Name(),
		Size: ctx.Size,
		Bars: make([]Bar, 0, len(layout.Groups)),
	}
	f.YDomain[0], f.YDomain[1] = y.Domain()
	if len(layout.Groups) == 0 {
		return f, nil
	}
	f.YTicks = yTicks(y, v.Ticks, dollarsK)
	for _, g := range layout.Groups {
		x, err := layout.Band.Map(g.Key)
		if err != nil {
			return nil, err
		}
		top := y.Map(g.Mean)
		f.Bars = append(f.Bars, Bar{
			Key:    g.Key,
			Mean:   g.Mean,
			Count:  g.Count,
			X:      x,
			Y:      top,
			Width:  layout.Band.Bandwidth(),
			Height: ctx.Size.Height - top,
		})
	}
	return f, nil
}
