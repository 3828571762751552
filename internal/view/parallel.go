package view

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

// Dimension is one axis of the parallel coordinates plot.
type Dimension struct {
	Field  models.Field
	Label  string
	Kind   scale.Kind
	Values []string
}

// DefaultDimensions are the axes drawn by NewParallel, left to right.
var DefaultDimensions = []Dimension{
	{Field: models.ExperienceLevel, Label: "Experience Level", Kind: scale.Categorical, Values: models.ExperienceLevels},
	{Field: models.RemoteRatio, Label: "Remote Work %", Kind: scale.Numerical},
	{Field: models.CompanySize, Label: "Company Size", Kind: scale.Categorical, Values: models.CompanySizes},
	{Field: models.SalaryInUSD, Label: "Salary (USD)", Kind: scale.Numerical},
}

// dimensionField names the horizontal axis of the plot.
const dimensionField models.Field = "dimension"

// Parallel is the parallel coordinates plot. Numeric axes span the
// working set's extent, so they rescale as the selection changes.
type Parallel struct {
	Dimensions []Dimension
	Padding    float64
	Ticks      int
	Lang       language.Tag
}

// NewParallel returns the parallel coordinates plot over
// DefaultDimensions.
func NewParallel() *Parallel {
	return &Parallel{
		Dimensions: DefaultDimensions,
		Padding:    0.1,
		Ticks:      8,
		Lang:       language.English,
	}
}

func (v *Parallel) Name() string { return ParallelName }

// HoverRow returns working set row index if it is drawn as a line,
// that is if every axis can place it.
func (v *Parallel) HoverRow(ctx *Context, index int) (models.Row, error) {
	r, err := workingRow(ctx, index)
	if err != nil {
		return models.Row{}, err
	}
	_, ys, err := v.Projectors(ctx)
	if err != nil {
		return models.Row{}, err
	}
	for _, y := range ys {
		if _, err := y.Project(r); err != nil {
			return models.Row{}, fmt.Errorf("row %d: %w: %w", index, ErrNoMark, err)
		}
	}
	return r, nil
}

// Projectors returns the horizontal dimension projector and one
// vertical projector per dimension. A categorical dimension without
// enumerated values takes its domain from the whole dataset, so its
// axis does not reorder as the selection changes.
func (v *Parallel) Projectors(ctx *Context) (scale.Band, []scale.Projector, error) {
	names := make([]string, len(v.Dimensions))
	for i, d := range v.Dimensions {
		names[i] = string(d.Field)
	}
	x := scale.NewPoint(dimensionField, names, scale.Range{From: 0, To: ctx.Size.Width}, v.Padding)

	ys := make([]scale.Projector, len(v.Dimensions))
	for i, d := range v.Dimensions {
		values := d.Values
		if len(values) == 0 && d.Kind != scale.Numerical {
			values = ctx.Dataset.Distinct(d.Field)
		}
		p, err := scale.Project(scale.FieldSpec{
			Field:   d.Field,
			Kind:    d.Kind,
			Values:  values,
			Padding: v.Padding,
		}, ctx.WorkingSet, scale.Range{From: ctx.Size.Height, To: 0})
		if err != nil {
			return x, nil, fmt.Errorf("axis %s: %w", d.Field, err)
		}
		ys[i] = p
	}
	return x, ys, nil
}

func (v *Parallel) Render(ctx *Context) (Frame, error) {
	x, ys, err := v.Projectors(ctx)
	if err != nil {
		return nil, err
	}

	f := &ParallelFrame{
		View:      v.Name(),
		Size:      ctx.Size,
		Lines:     make([]Line, 0, len(ctx.WorkingSet)),
		Highlight: ctx.Highlight,
	}

	xs := make([]float64, len(v.Dimensions))
	for i, d := range v.Dimensions {
		xs[i], _ = x.Map(string(d.Field))
		axis := Axis{Field: d.Field, Label: d.Label, Kind: d.Kind, X: xs[i]}
		switch y := ys[i].(type) {
		case scale.Band:
			axis.Values = y.Domain()
			for j, val := range axis.Values {
				pos, _ := y.Map(val)
				axis.Ticks = append(axis.Ticks, Tick{Value: float64(j), Label: val, Pos: pos})
			}
		case scale.Linear:
			var format func(float64) string
			switch d.Field {
			case models.SalaryInUSD:
				format = dollarsK
			case models.RemoteRatio:
				format = percent
			}
			if len(ctx.WorkingSet) > 0 {
				axis.Ticks = yTicks(y, v.Ticks, format)
			}
		}
		f.Axes = append(f.Axes, axis)
	}

rows:
	for i, r := range ctx.WorkingSet {
		pts := make([][2]float64, len(ys))
		for j, y := range ys {
			py, err := y.Project(r)
			if err != nil {
				var ood *scale.OutOfDomainError
				if errors.As(err, &ood) {
					f.Skipped++
					continue rows
				}
				return nil, err
			}
			pts[j] = [2]float64{xs[j], py}
		}
		f.Lines = append(f.Lines, Line{Index: i, Points: pts})
	}
	if f.Skipped > 0 {
		ctx.logger().Warn("rows outside a categorical domain skipped", "view", v.Name(), "skipped", f.Skipped)
	}

	f.Caption = message.NewPrinter(v.Lang).Sprintf("Showing %d jobs", len(ctx.WorkingSet))
	return f, nil
}
