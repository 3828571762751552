package scale

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"salaryviz/internal/models"
)

// Remote-ratio anchors: fully on-site, hybrid, fully remote.
var (
	RemoteStops   = []float64{0, 50, 100}
	RemoteAnchors = []color.RGBA{
		{0xe4, 0x1a, 0x1c, 0xff},
		{0x37, 0x7e, 0xb8, 0xff},
		{0x4d, 0xaf, 0x4a, 0xff},
	}
)

// Color interpolates linearly, channel by channel in sRGB, between
// anchor colors placed at increasing stops. Values outside the stops
// take the nearest anchor.
type Color struct {
	field   models.Field
	stops   []float64
	anchors []color.RGBA
}

// NewColor returns a piecewise-linear color projector.
func NewColor(field models.Field, stops []float64, anchors []color.RGBA) (Color, error) {
	if len(stops) < 2 || len(stops) != len(anchors) {
		return Color{}, fmt.Errorf("color scale needs matching stops and anchors, got %d and %d", len(stops), len(anchors))
	}
	if !sort.Float64sAreSorted(stops) {
		return Color{}, errors.New("color stops must be increasing")
	}
	return Color{
		field:   field,
		stops:   append([]float64(nil), stops...),
		anchors: append([]color.RGBA(nil), anchors...),
	}, nil
}

// RemoteColor returns the remote-ratio color projector.
func RemoteColor() Color {
	c, err := NewColor(models.RemoteRatio, RemoteStops, RemoteAnchors)
	if err != nil {
		panic(err)
	}
	return c
}

// Map returns the color for v.
func (c Color) Map(v float64) color.RGBA {
	n := len(c.stops)
	if v <= c.stops[0] {
		return c.anchors[0]
	}
	if v >= c.stops[n-1] {
		return c.anchors[n-1]
	}
	// First stop strictly above v; v lies in [stops[i-1], stops[i]).
	i := sort.Search(n, func(i int) bool { return c.stops[i] > v })
	s0, s1 := c.stops[i-1], c.stops[i]
	t := (v - s0) / (s1 - s0)
	return lerpRGBA(c.anchors[i-1], c.anchors[i], t)
}

// Project returns the color of the row's value.
func (c Color) Project(r models.Row) (color.RGBA, error) {
	v, ok := r.Number(c.field)
	if !ok {
		return color.RGBA{}, ErrNotNumeric
	}
	return c.Map(v), nil
}

func (c Color) Field() models.Field { return c.field }

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	ch := func(a, b uint8) uint8 {
		v := math.Round(float64(a) + (float64(b)-float64(a))*t)
		return uint8(math.Min(255, math.Max(0, v)))
	}
	return color.RGBA{ch(a.R, b.R), ch(a.G, b.G), ch(a.B, b.B), ch(a.A, b.A)}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb.
func ParseHex(s string) (color.RGBA, error) {
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("bad color %q", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("bad color %q: %w", s, err)
	}
	c.A = 0xff
	return c, nil
}
