// Package export renders committed annotations into portable documents.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"inkboard/internal/state"
)

// pdfScale maps canvas units to millimetres on an A4 page.
const pdfScale = 1.0 / 4.0

// WritePDF renders the annotations to a PDF document.
func WritePDF(w io.Writer, annotations []state.Annotation) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.AddPage()
	p.SetFont("Helvetica", "", 12)

	for _, a := range annotations {
		switch a.Kind {
		case state.KindStroke:
			drawStrokePDF(p, a)
		case state.KindShape:
			drawShapePDF(p, a)
		case state.KindText:
			drawTextPDF(p, a)
		}
	}
	return p.Output(w)
}

func drawStrokePDF(p *gofpdf.Fpdf, a state.Annotation) {
	r, g, b := hexRGB(a.StrokeColor)
	p.SetDrawColor(r, g, b)
	p.SetLineWidth(float64(a.StrokeWidth) * pdfScale)
	for i := 1; i < len(a.Points); i++ {
		p.Line(
			float64(a.Points[i-1].X)*pdfScale, float64(a.Points[i-1].Y)*pdfScale,
			float64(a.Points[i].X)*pdfScale, float64(a.Points[i].Y)*pdfScale,
		)
	}
}

func drawShapePDF(p *gofpdf.Fpdf, a state.Annotation) {
	r, g, b := hexRGB(a.StrokeColor)
	p.SetDrawColor(r, g, b)
	p.SetLineWidth(float64(a.StrokeWidth) * pdfScale)

	style := "D"
	if a.Filled {
		fr, fg, fb := hexRGB(a.FillColor)
		p.SetFillColor(fr, fg, fb)
		style = "FD"
	}

	x := float64(a.Bounds.X) * pdfScale
	y := float64(a.Bounds.Y) * pdfScale
	w := float64(a.Bounds.Width) * pdfScale
	h := float64(a.Bounds.Height) * pdfScale

	switch a.Shape {
	case state.ShapeRectangle:
		p.Rect(x, y, w, h, style)
	case state.ShapeCircle:
		p.Ellipse(x+w/2, y+h/2, w/2, h/2, 0, style)
	case state.ShapeLine:
		p.Line(x, y, x+w, y+h)
	case state.ShapeArrow:
		drawArrowPDF(p, a)
	}
}

func drawArrowPDF(p *gofpdf.Fpdf, a state.Annotation) {
	sx := float64(a.ArrowStart.X) * pdfScale
	sy := float64(a.ArrowStart.Y) * pdfScale
	ex := float64(a.ArrowEnd.X) * pdfScale
	ey := float64(a.ArrowEnd.Y) * pdfScale
	p.Line(sx, sy, ex, ey)

	angle := math.Atan2(ey-sy, ex-sx)
	const headLen = 3.0
	const headSpread = math.Pi / 6
	for _, side := range []float64{headSpread, -headSpread} {
		p.Line(ex, ey,
			ex-headLen*math.Cos(angle-side),
			ey-headLen*math.Sin(angle-side),
		)
	}
}

func drawTextPDF(p *gofpdf.Fpdf, a state.Annotation) {
	if a.Text == "" {
		return
	}
	r, g, b := hexRGB(a.TextColor)
	p.SetTextColor(r, g, b)
	p.SetFontSize(float64(a.FontSize) * pdfScale * 2.83) // canvas px to pt
	p.Text(
		float64(a.Bounds.X)*pdfScale,
		float64(a.Bounds.Y+a.FontSize)*pdfScale,
		a.Text,
	)
}

// hexRGB decodes "#rrggbb"; unparseable input falls back to black.
func hexRGB(s string) (int, int, int) {
	var r, g, b int
	if len(s) < 7 {
		return 0, 0, 0
	}
	if _, err := fmt.Sscanf(s[:7], "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
