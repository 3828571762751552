package view

import (
	"errors"
	"fmt"

	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

var experienceLabels = map[string]string{
	"EN": "Entry",
	"MI": "Mid",
	"SE": "Senior",
	"EX": "Executive",
}

// Scatter plots salary against experience level, colored by remote
// ratio. It is zoomable and draws one point per working set row.
type Scatter struct {
	Headroom         float64
	ZoomMin, ZoomMax float64
	Ticks            int
	Color            scale.Color
}

// NewScatter returns the salary/experience scatter plot.
func NewScatter(zoomMin, zoomMax float64) *Scatter {
	return &Scatter{
		Headroom: 1.05,
		ZoomMin:  zoomMin,
		ZoomMax:  zoomMax,
		Ticks:    10,
		Color:    scale.RemoteColor(),
	}
}

func (v *Scatter) Name() string                   { return ScatterName }
func (v *Scatter) ZoomBounds() (min, max float64) { return v.ZoomMin, v.ZoomMax }
// HoverRow returns working set row index if it is drawn as a point.
func (v *Scatter) HoverRow(ctx *Context, index int) (models.Row, error) {
	r, err := workingRow(ctx, index)
	if err != nil {
		return models.Row{}, err
	}
	x, _ := v.Projectors(ctx)
	if _, err := x.Project(r); err != nil {
		return models.Row{}, fmt.Errorf("row %d: %w: %w", index, ErrNoMark, err)
	}
	return r, nil
}

// Projectors returns the base (unzoomed) projectors for the working set.
func (v *Scatter) Projectors(ctx *Context) (scale.Ordinal, scale.Linear) {
	x := scale.NewOrdinal(models.ExperienceLevel, models.ExperienceLevels, scale.Range{From: 0, To: ctx.Size.Width})
	min, max := scale.NumericDomain(ctx.WorkingSet, models.SalaryInUSD, scale.NumericOptions{
		ZeroBase: true,
		Headroom: v.Headroom,
		Nice:     true,
	})
	y := scale.NewLinear(models.SalaryInUSD, min, max, scale.Range{From: ctx.Size.Height, To: 0})
	return x, y
}

func (v *Scatter) Render(ctx *Context) (Frame, error) {
	baseX, baseY := v.Projectors(ctx)
	x := ctx.Transform.RescaleOrdinalX(baseX)
	y := ctx.Transform.RescaleY(baseY)

	f := &ScatterFrame{
		View:      v.Name(),
		Size:      ctx.Size,
		Points:    make([]Point, 0, len(ctx.WorkingSet)),
		Gridlines: !ctx.Gesture,
		Transform: ctx.Transform,
		Highlight: ctx.Highlight,
	}
	f.XDomain[0], f.XDomain[1] = x.Linear().Domain()
	f.YDomain[0], f.YDomain[1] = y.Domain()

	// Experience ticks sit on the ranks; salary ticks follow the zoom.
	for _, lvl := range models.ExperienceLevels {
		r, _ := x.Rank(lvl)
		pos, _ := x.Map(lvl)
		f.XTicks = append(f.XTicks, Tick{Value: float64(r), Label: experienceLabels[lvl], Pos: pos})
	}
	f.YTicks = yTicks(y, v.Ticks, dollarsK)

	legend := scale.NewLinear(models.RemoteRatio, 0, 100, scale.Range{From: 0, To: 100})
	for _, stop := range scale.RemoteStops {
		f.Legend = append(f.Legend, Tick{Value: stop, Label: scale.Hex(v.Color.Map(stop)), Pos: legend.Map(stop)})
	}

	for i, r := range ctx.WorkingSet {
		cx, err := x.Project(r)
		if err != nil {
			var ood *scale.OutOfDomainError
			if errors.As(err, &ood) {
				f.Skipped++
				continue
			}
			return nil, err
		}
		f.Points = append(f.Points, Point{
			Index: i,
			CX:    cx,
			CY:    y.Map(r.SalaryInUSD),
			Color: scale.Hex(v.Color.Map(float64(r.RemoteRatio))),
		})
	}
	if f.Skipped > 0 {
		ctx.logger().Warn("rows outside the experience domain skipped", "view", v.Name(), "skipped", f.Skipped)
	}
	return f, nil
}
