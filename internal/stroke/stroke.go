// Package stroke turns raw freehand pointer samples into a closed SVG
// outline path suitable for filled rendering. The outline is
// variable-width: implied pointer velocity thins the stroke, so fast
// flicks taper the way ink does.
package stroke

import (
	"fmt"
	"strings"

	"inkboard/internal/geom"
)

// Options tunes outline generation. Size is the nominal stroke width;
// the remaining knobs are in [0, 1].
type Options struct {
	Size       float32
	Thinning   float32
	Smoothing  float32
	Streamline float32
}

// DefaultOptions returns the tuning used for all committed strokes.
func DefaultOptions(size float32) Options {
	return Options{
		Size:       size,
		Thinning:   0.5,
		Smoothing:  0.5,
		Streamline: 0.5,
	}
}

// Outline converts raw input samples into a closed outline polygon:
// the left edge of the stroke followed by the right edge in reverse.
// Fewer than two distinct samples produce no outline.
func Outline(points []geom.Point, o Options) []geom.Point {
	pts := streamline(points, o.Streamline)
	if len(pts) < 2 {
		return nil
	}
	if o.Size <= 0 {
		o.Size = 1
	}

	rs := radii(pts, o)

	left := make([]geom.Point, 0, len(pts))
	right := make([]geom.Point, 0, len(pts))
	for i, p := range pts {
		// Perpendicular of the local direction; the last point reuses
		// the direction of its predecessor.
		var a, b geom.Point
		if i < len(pts)-1 {
			a, b = p, pts[i+1]
		} else {
			a, b = pts[i-1], p
		}
		dx, dy := b.X-a.X, b.Y-a.Y
		length := geom.Dist(a, b)
		if length == 0 {
			continue
		}
		px, py := -dy/length, dx/length

		r := rs[i]
		left = append(left, geom.Point{X: p.X + px*r, Y: p.Y + py*r})
		right = append(right, geom.Point{X: p.X - px*r, Y: p.Y - py*r})
	}

	outline := make([]geom.Point, 0, len(left)+len(right))
	outline = append(outline, left...)
	for i := len(right) - 1; i >= 0; i-- {
		outline = append(outline, right[i])
	}
	return outline
}

// PathData runs the full pipeline and renders the outline as a closed
// SVG path of quadratic segments: each outline vertex is a control
// point, each segment ends at the midpoint of that vertex and the next.
// Degenerate strokes (outline under 4 points) yield "", which callers
// treat as "not renderable", not as an error.
func PathData(points []geom.Point, width float32) string {
	outline := Outline(points, DefaultOptions(width))
	if len(outline) < 4 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %.2f %.2f", outline[0].X, outline[0].Y)
	for i := range outline {
		ctrl := outline[i]
		next := outline[(i+1)%len(outline)]
		fmt.Fprintf(&b, " Q %.2f %.2f %.2f %.2f",
			ctrl.X, ctrl.Y, (ctrl.X+next.X)/2, (ctrl.Y+next.Y)/2)
	}
	b.WriteString(" Z")
	return b.String()
}

// streamline pulls each sample toward its predecessor, damping pointer
// jitter. Duplicate consecutive samples are collapsed.
func streamline(points []geom.Point, amount float32) []geom.Point {
	if len(points) == 0 {
		return nil
	}
	t := 0.15 + (1-amount)*0.85
	out := make([]geom.Point, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		prev := out[len(out)-1]
		next := geom.Lerp(prev, p, t)
		if next == prev {
			continue
		}
		out = append(out, next)
	}
	return out
}

// radii computes the half-width at each point. Pressure is simulated
// from velocity: the faster the pointer moved into a point, the lighter
// the implied pressure and the thinner the outline there.
func radii(pts []geom.Point, o Options) []float32 {
	out := make([]float32, len(pts))
	pressure := float32(0.5)
	for i := range pts {
		if i > 0 {
			d := geom.Dist(pts[i-1], pts[i])
			speed := d / o.Size
			if speed > 1 {
				speed = 1
			}
			target := 1 - speed
			pressure = pressure + (target-pressure)*0.5
		}
		r := o.Size / 2 * (1 - o.Thinning*(1-pressure))
		if r < 0.5 {
			r = 0.5
		}
		out[i] = r
	}
	return out
}
