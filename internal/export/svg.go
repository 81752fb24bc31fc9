package export

import (
	"fmt"
	"html"
	"io"
	"math"

	"inkboard/internal/geom"
	"inkboard/internal/state"
)

// WriteSVG renders the annotations as a standalone SVG document.
// Freehand strokes reuse their smoothed outline path, so the exported
// ink matches what was on screen.
func WriteSVG(w io.Writer, annotations []state.Annotation) error {
	viewBox := contentBounds(annotations).Pad(20)
	if _, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f">`+"\n",
		viewBox.X, viewBox.Y, viewBox.Width, viewBox.Height); err != nil {
		return err
	}

	for _, a := range annotations {
		var err error
		switch a.Kind {
		case state.KindStroke:
			// The outline is a closed polygon; filling it with the
			// stroke color reproduces the variable-width ink.
			_, err = fmt.Fprintf(w, `  <path d="%s" fill="%s"/>`+"\n", a.Path, a.StrokeColor)
		case state.KindShape:
			err = writeShapeSVG(w, a)
		case state.KindText:
			_, err = fmt.Fprintf(w,
				`  <text x="%.1f" y="%.1f" font-size="%.1f" font-family="%s" fill="%s">%s</text>`+"\n",
				a.Bounds.X, a.Bounds.Y+a.FontSize, a.FontSize,
				html.EscapeString(a.FontFamily), a.TextColor, html.EscapeString(a.Text))
		}
		if err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</svg>\n")
	return err
}

func writeShapeSVG(w io.Writer, a state.Annotation) error {
	fill := "none"
	if a.Filled {
		fill = a.FillColor
	}
	b := a.Bounds

	switch a.Shape {
	case state.ShapeRectangle:
		_, err := fmt.Fprintf(w,
			`  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			b.X, b.Y, b.Width, b.Height, fill, a.StrokeColor, a.StrokeWidth)
		return err
	case state.ShapeCircle:
		_, err := fmt.Fprintf(w,
			`  <ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			b.X+b.Width/2, b.Y+b.Height/2, b.Width/2, b.Height/2, fill, a.StrokeColor, a.StrokeWidth)
		return err
	case state.ShapeLine:
		_, err := fmt.Fprintf(w,
			`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
			b.X, b.Y, b.X+b.Width, b.Y+b.Height, a.StrokeColor, a.StrokeWidth)
		return err
	case state.ShapeArrow:
		return writeArrowSVG(w, a)
	}
	return nil
}

func writeArrowSVG(w io.Writer, a state.Annotation) error {
	s, e := a.ArrowStart, a.ArrowEnd
	if _, err := fmt.Fprintf(w,
		`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
		s.X, s.Y, e.X, e.Y, a.StrokeColor, a.StrokeWidth); err != nil {
		return err
	}

	angle := math.Atan2(float64(e.Y-s.Y), float64(e.X-s.X))
	const headLen = 12.0
	const headSpread = math.Pi / 6
	for _, side := range []float64{headSpread, -headSpread} {
		tx := e.X - float32(headLen*math.Cos(angle-side))
		ty := e.Y - float32(headLen*math.Sin(angle-side))
		if _, err := fmt.Fprintf(w,
			`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
			e.X, e.Y, tx, ty, a.StrokeColor, a.StrokeWidth); err != nil {
			return err
		}
	}
	return nil
}

func contentBounds(annotations []state.Annotation) geom.Rect {
	if len(annotations) == 0 {
		return geom.Rect{Width: 800, Height: 600}
	}
	corners := make([]geom.Point, 0, len(annotations)*2)
	for _, a := range annotations {
		corners = append(corners,
			geom.Point{X: a.Bounds.X, Y: a.Bounds.Y},
			geom.Point{X: a.Bounds.X + a.Bounds.Width, Y: a.Bounds.Y + a.Bounds.Height},
		)
	}
	return geom.FromPoints(corners)
}
