package view

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"salaryviz/internal/engine"
	"salaryviz/internal/models"
	"salaryviz/internal/scale"
)

type recorder struct {
	frames map[string]Frame
	draws  map[string]int
}

func newRecorder() *recorder {
	return &recorder{frames: map[string]Frame{}, draws: map[string]int{}}
}

func (r *recorder) Draw(f Frame) error {
	r.frames[f.ViewName()] = f
	r.draws[f.ViewName()]++
	return nil
}

func rows(title string, n int, salary float64) []models.Row {
	out := make([]models.Row, n)
	for i := range out {
		out[i] = models.Row{
			JobTitle:        title,
			ExperienceLevel: models.ExperienceLevels[i%4],
			EmploymentType:  engine.FullTime,
			CompanySize:     models.CompanySizes[i%3],
			RemoteRatio:     (i % 3) * 50,
			SalaryInUSD:     salary,
			CompanyLocation: "US",
		}
	}
	return out
}

// scenario is 12 Data Scientists at 120k and 8 Analysts at 70k.
func scenario() *engine.Dataset {
	return engine.NewDataset(append(rows("Data Scientist", 12, 120000), rows("Analyst", 8, 70000)...))
}

// Container 1120x500 leaves a 1000x400 drawable area with the default margin.
func newTestCoordinator(ds *engine.Dataset) (*Coordinator, *recorder) {
	rec := newRecorder()
	c := NewCoordinator(ds, rec, Config{
		Employment:  engine.FullTime,
		Margin:      DefaultMargin,
		DefaultSize: models.Size{Width: 1120, Height: 500},
	},
		NewOverview(engine.DefaultAggregateOptions()),
		NewScatter(DefaultZoomMin, DefaultZoomMax),
		NewParallel(),
	)
	return c, rec
}

func TestOverviewScenario(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	f := rec.frames[OverviewName].(*OverviewFrame)
	if len(f.Bars) != 1 {
		t.Fatalf("Expected 1 bar, got %d", len(f.Bars))
	}
	bar := f.Bars[0]
	if bar.Key != "Data Scientist" || bar.Mean != 120000 || bar.Count != 12 {
		t.Errorf("bar = %+v", bar)
	}
	// One band over 1000px with 0.2 padding spans [1000/6, 5000/6].
	if !near(bar.X, 1000.0/6) || !near(bar.X+bar.Width, 5000.0/6) {
		t.Errorf("bar spans [%g, %g]", bar.X, bar.X+bar.Width)
	}
	if bar.Y < 0 || bar.Height <= 0 || !near(bar.Y+bar.Height, 400) {
		t.Errorf("bar vertical extent: y=%g h=%g", bar.Y, bar.Height)
	}
}

func TestBrushFiltersDependentViews(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	overviewDraws := rec.draws[OverviewName]

	res, err := c.Brush(OverviewName, 100, 900)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 12 || len(res.Keys) != 1 || res.Keys[0] != "Data Scientist" {
		t.Errorf("result = %+v", res)
	}
	for _, r := range c.WorkingSet() {
		if r.JobTitle != "Data Scientist" || r.EmploymentType != engine.FullTime {
			t.Errorf("unexpected working set row %+v", r)
		}
	}
	if got := len(rec.frames[ScatterName].(*ScatterFrame).Points); got != 12 {
		t.Errorf("scatter got %d points, want 12", got)
	}
	if got := len(rec.frames[ParallelName].(*ParallelFrame).Lines); got != 12 {
		t.Errorf("parallel got %d lines, want 12", got)
	}
	if rec.draws[OverviewName] != overviewDraws {
		t.Error("brushing re-rendered the originating view")
	}
	if got := rec.frames[ParallelName].(*ParallelFrame).Caption; got != "Showing 12 jobs" {
		t.Errorf("caption = %q", got)
	}
}

func TestOverviewFrameAfterBrush(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	before := rec.frames[OverviewName]

	if _, err := c.Brush(OverviewName, 100, 900); err != nil {
		t.Fatal(err)
	}
	if got := c.Selection(); got.Rows != 12 || len(got.Keys) != 1 || got.Keys[0] != "Data Scientist" {
		t.Errorf("selection = %+v", got)
	}
	if !reflect.DeepEqual(before, rec.frames[OverviewName]) {
		t.Error("overview frame changed by its own brush")
	}

	// A redraw with no size change yields the same frame: the served
	// overview never depends on event history.
	if err := c.Resize(nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, rec.frames[OverviewName]) {
		t.Error("overview frame differs after a no-op resize")
	}

	if _, err := c.ClearBrush(OverviewName); err != nil {
		t.Fatal(err)
	}
	if got := c.Selection(); got.Rows != 20 || got.Keys != nil {
		t.Errorf("selection after clear = %+v", got)
	}
}

func TestBrushPartialOverlapFallsBack(t *testing.T) {
	c, _ := newTestCoordinator(scenario())
	all := engine.WorkingSet(scenario(), engine.FullTime, engine.PassAll())

	// Covers only part of the single bar.
	res, err := c.Brush(OverviewName, 300, 900)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Predicate().IsPassAll() {
		t.Error("empty brush should leave the predicate pass-all")
	}
	if res.Rows != len(all) || len(c.WorkingSet()) != len(all) {
		t.Errorf("working set has %d rows, want %d", res.Rows, len(all))
	}
}

func TestBrushClear(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if _, err := c.Brush(OverviewName, 0, 1000); err != nil {
		t.Fatal(err)
	}
	if len(c.WorkingSet()) != 12 {
		t.Fatalf("brush did not filter: %d rows", len(c.WorkingSet()))
	}
	if _, err := c.ClearBrush(OverviewName); err != nil {
		t.Fatal(err)
	}
	if len(c.WorkingSet()) != 20 || !c.Predicate().IsPassAll() {
		t.Errorf("clear left %d rows", len(c.WorkingSet()))
	}
	if got := len(rec.frames[ScatterName].(*ScatterFrame).Points); got != 20 {
		t.Errorf("scatter got %d points after clear", got)
	}

	// A zero-width gesture is a clear too.
	c.Brush(OverviewName, 0, 1000)
	if _, err := c.Brush(OverviewName, 500, 500); err != nil {
		t.Fatal(err)
	}
	if !c.Predicate().IsPassAll() {
		t.Error("zero-width brush should clear the selection")
	}
}

func TestBrushErrors(t *testing.T) {
	c, _ := newTestCoordinator(scenario())
	if _, err := c.Brush(ScatterName, 0, 10); !errors.Is(err, ErrNotBrushable) {
		t.Errorf("Expected ErrNotBrushable, got %v", err)
	}
	if _, err := c.Brush("nope", 0, 10); !errors.Is(err, ErrUnknownView) {
		t.Errorf("Expected ErrUnknownView, got %v", err)
	}
}

func TestFilterChangeIdempotent(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	p := engine.Allow(models.JobTitle, "Analyst")

	if _, err := c.FilterChange(OverviewName, p); err != nil {
		t.Fatal(err)
	}
	first := c.WorkingSet()
	frame := rec.frames[ParallelName]

	draws := rec.draws[ParallelName]

	if _, err := c.FilterChange(OverviewName, p); err != nil {
		t.Fatal(err)
	}
	if rec.draws[ParallelName] != draws {
		t.Error("an unchanged predicate re-rendered the views")
	}
	if !reflect.DeepEqual(first, c.WorkingSet()) {
		t.Error("working set changed on repeated filter")
	}
	if !reflect.DeepEqual(frame, rec.frames[ParallelName]) {
		t.Error("frame changed on repeated filter")
	}
}

func TestRenderIdempotent(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	before := map[string]Frame{}
	for k, v := range rec.frames {
		before[k] = v
	}
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	for k, f := range before {
		if !reflect.DeepEqual(f, rec.frames[k]) {
			t.Errorf("%s frame differs between renders", k)
		}
	}
}

func TestResizeKeepsPredicate(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if _, err := c.Brush(OverviewName, 0, 1000); err != nil {
		t.Fatal(err)
	}
	err := c.Resize(map[string]models.Size{
		OverviewName: {Width: 620, Height: 300},
		ScatterName:  {Width: 520, Height: 300},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Predicate().IsPassAll() || len(c.WorkingSet()) != 12 {
		t.Error("resize reset the selection")
	}
	if got := rec.frames[OverviewName].(*OverviewFrame).Size; got != (models.Size{Width: 500, Height: 200}) {
		t.Errorf("overview size = %+v", got)
	}
	if got := c.Selection(); got.Rows != 12 || len(got.Keys) != 1 {
		t.Errorf("selection after resize = %+v", got)
	}
	if got := len(rec.frames[ScatterName].(*ScatterFrame).Points); got != 12 {
		t.Errorf("scatter after resize has %d points", got)
	}
	if err := c.Resize(map[string]models.Size{"nope": {}}); !errors.Is(err, ErrUnknownView) {
		t.Errorf("Expected ErrUnknownView, got %v", err)
	}
}

func TestZoomGesture(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	base := rec.frames[ScatterName].(*ScatterFrame)
	if !base.Gridlines || base.Transform != scale.Identity() {
		t.Fatalf("initial scatter frame: gridlines=%v transform=%+v", base.Gridlines, base.Transform)
	}
	ws := c.WorkingSet()

	tr, err := c.Zoom(ScatterName, scale.Transform{K: 20, X: -50, Y: -10}, true)
	if err != nil {
		t.Fatal(err)
	}
	if tr.K != DefaultZoomMax {
		t.Errorf("zoom not clamped: %+v", tr)
	}
	f := rec.frames[ScatterName].(*ScatterFrame)
	if f.Gridlines {
		t.Error("gridlines drawn during a gesture")
	}
	for i, p := range f.Points {
		b := base.Points[i]
		if !near(p.CX, tr.ApplyX(b.CX)) || !near(p.CY, tr.ApplyY(b.CY)) {
			t.Errorf("point %d at (%g,%g), want (%g,%g)", i, p.CX, p.CY, tr.ApplyX(b.CX), tr.ApplyY(b.CY))
		}
	}
	if !reflect.DeepEqual(ws, c.WorkingSet()) {
		t.Error("zoom changed the working set")
	}

	if _, err := c.Zoom(ScatterName, tr, false); err != nil {
		t.Fatal(err)
	}
	if !rec.frames[ScatterName].(*ScatterFrame).Gridlines {
		t.Error("gridlines not restored after the gesture")
	}

	if tr, _ := c.ResetZoom(ScatterName); tr != scale.Identity() {
		t.Errorf("reset transform = %+v", tr)
	}
	if _, err := c.Zoom(OverviewName, scale.Identity(), false); !errors.Is(err, ErrNotZoomable) {
		t.Errorf("Expected ErrNotZoomable, got %v", err)
	}
}

func TestHover(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	r, err := c.HoverEnter(ParallelName, 3)
	if err != nil {
		t.Fatal(err)
	}
	if r != c.WorkingSet()[3] {
		t.Errorf("hover payload = %+v", r)
	}
	if got := rec.frames[ParallelName].(*ParallelFrame).Highlight; got != 3 {
		t.Errorf("highlight = %d", got)
	}
	if err := c.HoverExit(ParallelName); err != nil {
		t.Fatal(err)
	}
	if got := rec.frames[ParallelName].(*ParallelFrame).Highlight; got != NoHighlight {
		t.Errorf("highlight after exit = %d", got)
	}

	if _, err := c.HoverEnter(OverviewName, 0); !errors.Is(err, ErrNotHoverable) {
		t.Errorf("Expected ErrNotHoverable, got %v", err)
	}
	if _, err := c.HoverEnter(ScatterName, 99); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestOutOfDomainRowsSkipped(t *testing.T) {
	rs := rows("Data Scientist", 12, 100000)
	rs[5].ExperienceLevel = "XX"
	rs[6].CompanySize = "XL"
	c, rec := newTestCoordinator(engine.NewDataset(rs))
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	sf := rec.frames[ScatterName].(*ScatterFrame)
	if sf.Skipped != 1 || len(sf.Points) != 11 {
		t.Errorf("scatter skipped=%d points=%d", sf.Skipped, len(sf.Points))
	}
	pf := rec.frames[ParallelName].(*ParallelFrame)
	if pf.Skipped != 2 || len(pf.Lines) != 10 {
		t.Errorf("parallel skipped=%d lines=%d", pf.Skipped, len(pf.Lines))
	}
	// The caption counts the working set, drawn or not.
	if pf.Caption != "Showing 12 jobs" {
		t.Errorf("caption = %q", pf.Caption)
	}

	// Skipped rows have no mark to hover.
	if _, err := c.HoverEnter(ScatterName, 5); !errors.Is(err, ErrNoMark) {
		t.Errorf("scatter hover on skipped row: expected ErrNoMark, got %v", err)
	}
	if _, err := c.HoverEnter(ParallelName, 6); !errors.Is(err, ErrNoMark) {
		t.Errorf("parallel hover on skipped row: expected ErrNoMark, got %v", err)
	}
	if _, err := c.HoverEnter(ParallelName, 5); !errors.Is(err, ErrNoMark) {
		t.Errorf("parallel hover on row outside the experience axis: expected ErrNoMark, got %v", err)
	}
	if r, err := c.HoverEnter(ScatterName, 6); err != nil || r.CompanySize != "XL" {
		t.Errorf("scatter hover on row 6 = %+v, %v", r, err)
	}
}

func TestZoomLargeTranslation(t *testing.T) {
	c, rec := newTestCoordinator(scenario())
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}

	tr, err := c.Zoom(ScatterName, scale.Transform{K: 1, X: 1e308, Y: 1e308}, false)
	if err != nil {
		t.Fatal(err)
	}
	if tr.X != MaxTranslate || tr.Y != MaxTranslate {
		t.Errorf("translation not bounded: %+v", tr)
	}
	f := rec.frames[ScatterName].(*ScatterFrame)
	for _, v := range append(f.XDomain[:], f.YDomain[:]...) {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("domain not finite: x=%v y=%v", f.XDomain, f.YDomain)
		}
	}
	if f.YDomain[0] == f.YDomain[1] {
		t.Errorf("degenerate y domain %v", f.YDomain)
	}
	// Everything is panned far off the 1000x400 area.
	for _, p := range f.Points {
		if p.CX < 1000 || p.CY < 400 {
			t.Errorf("point %d at (%g, %g) still on screen", p.Index, p.CX, p.CY)
			break
		}
	}
	if _, err := json.Marshal(f); err != nil {
		t.Errorf("frame does not encode: %v", err)
	}

	if _, err := c.Zoom(ScatterName, scale.Transform{K: 1, X: math.Inf(1)}, false); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("Expected ErrInvalidTransform, got %v", err)
	}
	if got := rec.frames[ScatterName].(*ScatterFrame).Transform; got != tr {
		t.Errorf("rejected zoom changed the transform to %+v", got)
	}
}

func TestZoomWheelAndPan(t *testing.T) {
	c, rec := newTestCoordinator(scenario())

	tr, err := c.ZoomBy(ScatterName, 2, 100, 50, true)
	if err != nil {
		t.Fatal(err)
	}
	if tr != (scale.Transform{K: 2, X: -100, Y: -50}) {
		t.Errorf("wheel zoom = %+v", tr)
	}
	if rec.frames[ScatterName].(*ScatterFrame).Gridlines {
		t.Error("gridlines drawn during a wheel gesture")
	}

	tr, err = c.Pan(ScatterName, 30, -20, false)
	if err != nil {
		t.Fatal(err)
	}
	if tr != (scale.Transform{K: 2, X: -70, Y: -70}) {
		t.Errorf("pan = %+v", tr)
	}
	if !rec.frames[ScatterName].(*ScatterFrame).Gridlines {
		t.Error("gridlines not restored after the drag")
	}

	if tr, _ := c.ZoomBy(ScatterName, 100, 0, 0, false); tr.K != DefaultZoomMax {
		t.Errorf("wheel zoom not clamped: %+v", tr)
	}
	if _, err := c.ZoomBy(ScatterName, 0, 0, 0, false); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("zero factor: expected ErrInvalidTransform, got %v", err)
	}
	if _, err := c.Pan(ScatterName, math.NaN(), 0, false); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("NaN pan: expected ErrInvalidTransform, got %v", err)
	}
	if _, err := c.Pan(OverviewName, 1, 1, false); !errors.Is(err, ErrNotZoomable) {
		t.Errorf("Expected ErrNotZoomable, got %v", err)
	}
}

func TestEmptyDataset(t *testing.T) {
	c, rec := newTestCoordinator(engine.NewDataset(nil))
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.frames[OverviewName].(*OverviewFrame).Bars); n != 0 {
		t.Errorf("overview has %d bars", n)
	}
	if n := len(rec.frames[ScatterName].(*ScatterFrame).Points); n != 0 {
		t.Errorf("scatter has %d points", n)
	}
	if n := len(rec.frames[ParallelName].(*ParallelFrame).Lines); n != 0 {
		t.Errorf("parallel has %d lines", n)
	}
	if _, err := c.Brush(OverviewName, 0, 1000); err != nil {
		t.Errorf("brush on empty dataset: %v", err)
	}
}

func TestParallelCategoricalDomainFromDataset(t *testing.T) {
	rs := append(rows("Data Scientist", 12, 120000), rows("Analyst", 8, 70000)...)
	for i := 12; i < len(rs); i++ {
		rs[i].CompanyLocation = "DE"
	}
	ds := engine.NewDataset(rs)
	p := &Parallel{
		Dimensions: []Dimension{
			{Field: models.CompanyLocation, Label: "Company Location", Kind: scale.Categorical},
			{Field: models.SalaryInUSD, Label: "Salary (USD)", Kind: scale.Numerical},
		},
		Padding: 0.1,
		Ticks:   8,
	}
	ctx := &Context{
		Dataset:    ds,
		WorkingSet: engine.WorkingSet(ds, engine.FullTime, engine.Allow(models.JobTitle, "Data Scientist")),
		Size:       models.Size{Width: 100, Height: 100},
	}

	_, ys, err := p.Projectors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Only US rows are selected, yet the axis keeps every location.
	if got := ys[0].(scale.Band).Domain(); !reflect.DeepEqual(got, []string{"US", "DE"}) {
		t.Errorf("location domain = %v", got)
	}
}

func TestParallelAxesRescale(t *testing.T) {
	ds := engine.NewDataset(append(rows("A", 10, 100), rows("B", 10, 60)...))
	c, rec := newTestCoordinator(ds)
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	salaryMax := func() float64 {
		_, ys, err := NewParallel().Projectors(&Context{WorkingSet: c.WorkingSet(), Size: models.Size{Width: 100, Height: 100}})
		if err != nil {
			t.Fatal(err)
		}
		_, max := ys[3].(scale.Linear).Domain()
		return max
	}
	if got := salaryMax(); got != 100 {
		t.Errorf("salary axis max = %g, want 100", got)
	}
	if _, err := c.FilterChange(OverviewName, engine.Allow(models.JobTitle, "B")); err != nil {
		t.Fatal(err)
	}
	if got := salaryMax(); got != 60 {
		t.Errorf("salary axis max after filter = %g, want 60", got)
	}
	if len(rec.frames[ParallelName].(*ParallelFrame).Axes) != 4 {
		t.Error("expected 4 axes")
	}
}
