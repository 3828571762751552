package view

import "salaryviz/internal/scale"

// Default zoom bounds of the scatter view.
const (
	DefaultZoomMin = 1
	DefaultZoomMax = 8
)

// MaxTranslate bounds the pan offset in pixels on each axis. Far past
// any screen, it keeps rescaled domains finite.
const MaxTranslate = 1e6

// TransformState is the zoom/pan state of one view. Like Brush it is a
// value; each gesture step returns the next state.
type TransformState struct {
	min, max  float64
	transform scale.Transform
	active    bool
}

// NewTransformState returns the identity state with scale bounded to
// [min, max].
func NewTransformState(min, max float64) TransformState {
	if min <= 0 {
		min = DefaultZoomMin
	}
	if max < min {
		max = min
	}
	return TransformState{min: min, max: max, transform: scale.Identity().Clamp(min, max)}
}

// Transform returns the current transform.
func (s TransformState) Transform() scale.Transform { return s.transform }

// Active reports whether a zoom or pan gesture is in progress.
func (s TransformState) Active() bool { return s.active }

// Bounds returns the allowed scale range.
func (s TransformState) Bounds() (min, max float64) { return s.min, s.max }

// Begin marks the start of a gesture.
func (s TransformState) Begin() TransformState {
	s.active = true
	return s
}

// Set replaces the transform, clamping its scale and bounding its
// translation by MaxTranslate.
func (s TransformState) Set(t scale.Transform) TransformState {
	s.transform = t.Clamp(s.min, s.max).Bound(MaxTranslate)
	return s
}

// ZoomAt zooms by factor around pixel (px, py).
func (s TransformState) ZoomAt(factor, px, py float64) TransformState {
	s.transform = s.transform.ZoomAt(factor, px, py, s.min, s.max).Bound(MaxTranslate)
	return s
}

// Pan translates by (dx, dy) pixels.
func (s TransformState) Pan(dx, dy float64) TransformState {
	s.transform = s.transform.Translate(dx, dy).Bound(MaxTranslate)
	return s
}

// End marks the end of a gesture.
func (s TransformState) End() TransformState {
	s.active = false
	return s
}

// Reset returns to the identity transform.
func (s TransformState) Reset() TransformState {
	return NewTransformState(s.min, s.max)
}
