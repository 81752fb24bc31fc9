package geom

import "math"

// Point is a position in canvas space.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Rect is an axis-aligned box in canvas space.
type Rect struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// FromPoints returns the minimal axis-aligned box containing all points.
// An empty input yields the zero Rect, which callers must treat as
// "not committable" rather than an error.
func FromPoints(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// FromCorners returns the normalized box spanned by two opposite corners,
// so a reversed drag produces the same Rect as a forward one.
func FromCorners(a, b Point) Rect {
	r := Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Intersects reports whether the two boxes overlap. Boxes that merely
// touch along an edge do not count.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height && r.Y+r.Height > o.Y
}

// Contains reports whether p lies inside the box, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Pad grows the box by amount on every side.
func (r Rect) Pad(amount float32) Rect {
	return Rect{
		X:      r.X - amount,
		Y:      r.Y - amount,
		Width:  r.Width + 2*amount,
		Height: r.Height + 2*amount,
	}
}

// Empty reports whether the box has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float32 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return float32(math.Hypot(dx, dy))
}

// Lerp interpolates from a toward b by t.
func Lerp(a, b Point, t float32) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Finite reports whether both coordinates are finite numbers. Pointer
// events projected through an unmeasured viewport can yield NaN; such
// points must be dropped before they reach the store.
func (p Point) Finite() bool {
	return !math.IsNaN(float64(p.X)) && !math.IsNaN(float64(p.Y)) &&
		!math.IsInf(float64(p.X), 0) && !math.IsInf(float64(p.Y), 0)
}
