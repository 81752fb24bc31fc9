package ui

import (
	"fmt"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"inkboard/internal/geom"
	"inkboard/internal/state"
)

var (
	boardBackground = color.NRGBA{R: 245, G: 246, B: 248, A: 255}
	marqueeFill     = color.NRGBA{R: 79, G: 134, B: 247, A: 40}
	marqueeStroke   = color.NRGBA{R: 79, G: 134, B: 247, A: 200}
	selectionGlow   = color.NRGBA{R: 79, G: 134, B: 247, A: 60}
	handleFill      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	previewAlpha    = color.NRGBA{R: 26, G: 26, B: 26, A: 120}
)

// boardRenderer is a pure projection of the store into Fyne canvas
// objects: the full object list is rebuilt on every refresh, in the
// same canvas-space transform the pointer controller uses, so
// annotations stay pinned under pan and zoom.
type boardRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func newBoardRenderer(b *BoardWidget) *boardRenderer {
	return &boardRenderer{
		board:      b,
		background: canvas.NewRectangle(boardBackground),
	}
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	_, _, zoom := r.board.Viewport()
	objects := []fyne.CanvasObject{r.background}

	for _, a := range r.board.store.Annotations() {
		if r.board.store.IsSelected(a.ID) {
			objects = append(objects, r.selectionHighlight(a, zoom))
		}
		switch a.Kind {
		case state.KindStroke:
			objects = append(objects, r.polyline(a.Points, parseHexColor(a.StrokeColor), a.StrokeWidth*zoom)...)
		case state.KindShape:
			objects = append(objects, r.shape(a, zoom)...)
		case state.KindText:
			objects = append(objects, r.text(a, zoom)...)
		}
	}

	objects = append(objects, r.preview(zoom)...)

	if box, ok := r.board.store.SelectionBox(); ok {
		marquee := canvas.NewRectangle(marqueeFill)
		marquee.StrokeColor = marqueeStroke
		marquee.StrokeWidth = 1
		r.place(marquee, box)
		objects = append(objects, marquee)
	}

	return objects
}

// preview renders at most one live gesture: the in-progress freehand
// stroke, or the in-progress shape with its dimension readout.
func (r *boardRenderer) preview(zoom float32) []fyne.CanvasObject {
	store := r.board.store

	if pts := store.CurrentPoints(); len(pts) > 1 {
		st := store.Style()
		return r.polyline(pts, parseHexColor(st.StrokeColor), st.StrokeWidth*zoom)
	}

	kind, box, start, end, active := store.CurrentShape()
	if !active {
		return nil
	}
	st := store.Style()
	ghost := state.Annotation{
		Kind:        state.KindShape,
		Shape:       kind,
		Bounds:      box,
		ArrowStart:  start,
		ArrowEnd:    end,
		StrokeColor: st.ShapeStrokeColor,
		StrokeWidth: st.ShapeStrokeWidth,
		FillColor:   st.ShapeFillColor,
		Filled:      st.ShapeFilled,
	}
	objects := r.shape(ghost, zoom)

	readout := canvas.NewText(fmt.Sprintf("%.0f x %.0f", box.Width, box.Height), previewAlpha)
	readout.TextSize = 12
	readout.Move(r.board.toScreen(geom.Point{X: box.X + box.Width + 6, Y: box.Y + box.Height + 6}))
	return append(objects, readout)
}

func (r *boardRenderer) polyline(pts []geom.Point, col color.Color, width float32) []fyne.CanvasObject {
	if len(pts) < 2 {
		return nil
	}
	objects := make([]fyne.CanvasObject, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		seg := canvas.NewLine(col)
		seg.StrokeWidth = width
		seg.Position1 = r.board.toScreen(pts[i])
		seg.Position2 = r.board.toScreen(pts[i+1])
		objects = append(objects, seg)
	}
	return objects
}

func (r *boardRenderer) shape(a state.Annotation, zoom float32) []fyne.CanvasObject {
	strokeCol := parseHexColor(a.StrokeColor)
	fillCol := color.Color(color.Transparent)
	if a.Filled {
		fillCol = parseHexColor(a.FillColor)
	}
	width := a.StrokeWidth * zoom

	switch a.Shape {
	case state.ShapeRectangle:
		rect := canvas.NewRectangle(fillCol)
		rect.StrokeColor = strokeCol
		rect.StrokeWidth = width
		r.place(rect, a.Bounds)
		return []fyne.CanvasObject{rect}

	case state.ShapeCircle:
		circle := canvas.NewCircle(fillCol)
		circle.StrokeColor = strokeCol
		circle.StrokeWidth = width
		circle.Position1 = r.board.toScreen(geom.Point{X: a.Bounds.X, Y: a.Bounds.Y})
		circle.Position2 = r.board.toScreen(geom.Point{X: a.Bounds.X + a.Bounds.Width, Y: a.Bounds.Y + a.Bounds.Height})
		return []fyne.CanvasObject{circle}

	case state.ShapeLine:
		line := canvas.NewLine(strokeCol)
		line.StrokeWidth = width
		line.Position1 = r.board.toScreen(geom.Point{X: a.Bounds.X, Y: a.Bounds.Y})
		line.Position2 = r.board.toScreen(geom.Point{X: a.Bounds.X + a.Bounds.Width, Y: a.Bounds.Y + a.Bounds.Height})
		return []fyne.CanvasObject{line}

	case state.ShapeArrow:
		return r.arrow(a, strokeCol, width)
	}
	return nil
}

// arrow draws the shaft between the exact stored endpoints plus two
// head segments; direction comes from the endpoints, never the box.
func (r *boardRenderer) arrow(a state.Annotation, col color.Color, width float32) []fyne.CanvasObject {
	shaft := canvas.NewLine(col)
	shaft.StrokeWidth = width
	shaft.Position1 = r.board.toScreen(a.ArrowStart)
	shaft.Position2 = r.board.toScreen(a.ArrowEnd)

	angle := math.Atan2(float64(a.ArrowEnd.Y-a.ArrowStart.Y), float64(a.ArrowEnd.X-a.ArrowStart.X))
	const headLen = 12.0
	const headSpread = math.Pi / 6

	objects := []fyne.CanvasObject{shaft}
	for _, side := range []float64{headSpread, -headSpread} {
		tip := geom.Point{
			X: a.ArrowEnd.X - float32(headLen*math.Cos(angle-side)),
			Y: a.ArrowEnd.Y - float32(headLen*math.Sin(angle-side)),
		}
		head := canvas.NewLine(col)
		head.StrokeWidth = width
		head.Position1 = r.board.toScreen(a.ArrowEnd)
		head.Position2 = r.board.toScreen(tip)
		objects = append(objects, head)
	}
	return objects
}

func (r *boardRenderer) text(a state.Annotation, zoom float32) []fyne.CanvasObject {
	box := canvas.NewRectangle(color.Transparent)
	box.StrokeColor = color.NRGBA{R: 180, G: 180, B: 180, A: 255}
	box.StrokeWidth = 1
	r.place(box, a.Bounds)

	label := canvas.NewText(a.Text, parseHexColor(a.TextColor))
	label.TextSize = a.FontSize * zoom
	if r.board.store.EditingID() == a.ID && a.Text == "" {
		label.Text = "..."
	}
	label.Move(r.board.toScreen(geom.Point{X: a.Bounds.X + 4, Y: a.Bounds.Y + 4}))

	objects := []fyne.CanvasObject{box, label}
	if r.board.store.IsSelected(a.ID) {
		objects = append(objects, r.handles(a.Bounds, zoom)...)
	}
	return objects
}

// handles draws the four corner resize grips of a selected text box.
func (r *boardRenderer) handles(b geom.Rect, zoom float32) []fyne.CanvasObject {
	const size float32 = 8
	corners := []geom.Point{
		{X: b.X, Y: b.Y},
		{X: b.X + b.Width, Y: b.Y},
		{X: b.X, Y: b.Y + b.Height},
		{X: b.X + b.Width, Y: b.Y + b.Height},
	}
	objects := make([]fyne.CanvasObject, 0, len(corners))
	for _, c := range corners {
		grip := canvas.NewRectangle(handleFill)
		grip.StrokeColor = marqueeStroke
		grip.StrokeWidth = 1
		pos := r.board.toScreen(c)
		grip.Move(fyne.NewPos(pos.X-size/2, pos.Y-size/2))
		grip.Resize(fyne.NewSize(size, size))
		objects = append(objects, grip)
	}
	return objects
}

func (r *boardRenderer) selectionHighlight(a state.Annotation, zoom float32) fyne.CanvasObject {
	glow := canvas.NewRectangle(selectionGlow)
	glow.StrokeColor = marqueeStroke
	glow.StrokeWidth = 1.5
	r.place(glow, a.Bounds.Pad(4))
	return glow
}

// place positions a rectangle-like object over a canvas-space box.
func (r *boardRenderer) place(obj fyne.CanvasObject, box geom.Rect) {
	_, _, zoom := r.board.Viewport()
	obj.Move(r.board.toScreen(geom.Point{X: box.X, Y: box.Y}))
	obj.Resize(fyne.NewSize(box.Width*zoom, box.Height*zoom))
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *boardRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Destroy() {}

// parseHexColor decodes "#rrggbb" or "#rrggbbaa"; anything else falls
// back to opaque black.
func parseHexColor(s string) color.Color {
	var c color.NRGBA
	c.A = 255
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return color.Black
		}
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return color.Black
		}
	default:
		return color.Black
	}
	return c
}
