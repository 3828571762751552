package scale

import "math"

// Transform is a zoom/pan state: a point at pixel p is drawn at
// K*p + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform of an unzoomed view.
func Identity() Transform { return Transform{K: 1} }

// Clamp bounds the scale factor to [min, max]. A non-positive or NaN
// scale becomes min. The translation is left alone.
func (t Transform) Clamp(min, max float64) Transform {
	if math.IsNaN(t.K) || t.K <= 0 {
		t.K = min
	}
	t.K = math.Min(max, math.Max(min, t.K))
	return t
}

// Finite reports whether every component of t is a finite number.
func (t Transform) Finite() bool {
	for _, v := range [...]float64{t.K, t.X, t.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Bound limits the translation to [-limit, limit] on both axes. A NaN
// translation becomes 0.
func (t Transform) Bound(limit float64) Transform {
	bound := func(v float64) float64 {
		if math.IsNaN(v) {
			return 0
		}
		return math.Min(limit, math.Max(-limit, v))
	}
	t.X, t.Y = bound(t.X), bound(t.Y)
	return t
}

// ApplyX returns the transformed x pixel.
func (t Transform) ApplyX(px float64) float64 { return px*t.K + t.X }

// ApplyY returns the transformed y pixel.
func (t Transform) ApplyY(py float64) float64 { return py*t.K + t.Y }

// InvertX returns the untransformed x pixel.
func (t Transform) InvertX(px float64) float64 { return (px - t.X) / t.K }

// InvertY returns the untransformed y pixel.
func (t Transform) InvertY(py float64) float64 { return (py - t.Y) / t.K }

// ZoomAt multiplies the scale by factor, keeping pixel (px, py) fixed,
// and clamps the result to [min, max].
func (t Transform) ZoomAt(factor, px, py, min, max float64) Transform {
	k := Transform{K: t.K * factor}.Clamp(min, max).K
	return Transform{
		K: k,
		X: px - (px-t.X)*k/t.K,
		Y: py - (py-t.Y)*k/t.K,
	}
}

// Translate pans by (dx, dy) pixels.
func (t Transform) Translate(dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// RescaleX returns a projector that draws base under t's horizontal
// component: for values in base's domain the result maps v to
// K*base.Map(v) + X. The returned projector covers the visible part of
// the domain and does not clamp.
func (t Transform) RescaleX(base Linear) Linear {
	return rescale(base, t.InvertX)
}

// RescaleY is RescaleX for the vertical component.
func (t Transform) RescaleY(base Linear) Linear {
	return rescale(base, t.InvertY)
}

// RescaleOrdinalX rescales an ordinal projector's rank axis.
func (t Transform) RescaleOrdinalX(base Ordinal) Ordinal {
	base.lin = t.RescaleX(base.lin)
	return base
}

func rescale(base Linear, invert func(float64) float64) Linear {
	r := base.rng
	out := base
	out.s.Min = base.Invert(invert(r.From))
	out.s.Max = base.Invert(invert(r.To))
	out.clamp = false
	return out
}
