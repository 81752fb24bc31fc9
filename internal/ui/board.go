package ui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"inkboard/internal/geom"
	"inkboard/internal/state"
)

// frameInterval rate-limits pointer-move flushes into the store so a
// fast drag does not trigger a refresh per raw sample.
const frameInterval = 16 * time.Millisecond

const (
	minZoom = 0.3
	maxZoom = 3.0
	// handleHitRadius is the screen-space hot zone around a resize
	// handle.
	handleHitRadius float32 = 10
)

// BoardWidget is the interactive annotation canvas. It owns the
// viewport transform (pan + zoom), projects pointer events into canvas
// space, and drives the store's gesture machine. When neither drawing
// nor selection mode is active it stays inert and the same gestures pan
// and zoom the viewport instead.
type BoardWidget struct {
	widget.BaseWidget
	store *state.Store
	log   zerolog.Logger

	mu         sync.Mutex
	panX, panY float32
	zoom       float32

	lastFlush time.Time
	pending   *geom.Point
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

// NewBoardWidget wires a canvas over the given store. The widget
// refreshes itself on every store change.
func NewBoardWidget(s *state.Store, log zerolog.Logger) *BoardWidget {
	b := &BoardWidget{
		store: s,
		log:   log,
		zoom:  1.0,
	}
	b.ExtendBaseWidget(b)
	s.OnChange = b.Refresh
	return b
}

// toCanvas projects a screen position into canvas space through the
// current pan/zoom transform.
func (b *BoardWidget) toCanvas(pos fyne.Position) geom.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return geom.Point{
		X: (pos.X - b.panX) / b.zoom,
		Y: (pos.Y - b.panY) / b.zoom,
	}
}

// toScreen is the inverse projection, used by the renderer.
func (b *BoardWidget) toScreen(p geom.Point) fyne.Position {
	return fyne.NewPos(p.X*b.zoom+b.panX, p.Y*b.zoom+b.panY)
}

// Viewport returns the current pan offset and zoom scale.
func (b *BoardWidget) Viewport() (panX, panY, zoom float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.panX, b.panY, b.zoom
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p := b.toCanvas(e.Position)
	if !p.Finite() {
		b.log.Debug().Msg("dropping pointer event with non-finite canvas position")
		return
	}

	switch {
	case b.store.DrawingMode():
		if b.store.DrawKind() == state.DrawText {
			b.store.AddTextAt(p)
			return
		}
		b.store.BeginDraw(p)
	case b.store.SelectMode():
		if id, h, ok := b.handleAt(p); ok {
			b.store.BeginResize(id, h)
			return
		}
		if id, ok := b.textAnnotationAt(p); ok {
			b.store.BeginDrag(id, p)
			return
		}
		b.store.BeginSelect(p)
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.finishGesture()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	p := b.toCanvas(e.Position)
	if !p.Finite() {
		b.log.Debug().Msg("dropping drag event with non-finite canvas position")
		return
	}

	switch b.store.Phase() {
	case state.PhaseDrawing:
		b.flushThrottled(p)
	case state.PhaseSelecting:
		b.store.UpdateSelect(p)
	case state.PhaseDragging:
		b.store.UpdateDrag(p)
	case state.PhaseResizing:
		b.store.UpdateResize(p)
	default:
		if !b.store.DrawingMode() && !b.store.SelectMode() {
			b.mu.Lock()
			b.panX += e.Dragged.DX
			b.panY += e.Dragged.DY
			b.mu.Unlock()
			b.Refresh()
		}
	}
}

func (b *BoardWidget) DragEnd() {
	b.finishGesture()
}

// flushThrottled coalesces pointer-move samples arriving within one
// frame into a single store update. The held-back sample is flushed by
// the next move or by gesture end, so no geometry is ever lost.
func (b *BoardWidget) flushThrottled(p geom.Point) {
	b.mu.Lock()
	now := time.Now()
	if now.Sub(b.lastFlush) < frameInterval {
		b.pending = &p
		b.mu.Unlock()
		return
	}
	b.lastFlush = now
	b.pending = nil
	b.mu.Unlock()
	b.store.ExtendDraw(p)
}

func (b *BoardWidget) finishGesture() {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()
	if pending != nil {
		b.store.ExtendDraw(*pending)
	}

	switch b.store.Phase() {
	case state.PhaseDrawing:
		b.store.EndDraw()
	case state.PhaseSelecting:
		b.store.EndSelect()
	case state.PhaseDragging:
		b.store.EndDrag()
	case state.PhaseResizing:
		b.store.EndResize()
	}
}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.mu.Lock()
	if e.Scrolled.DY > 0 {
		b.zoom *= 1.1
	} else if e.Scrolled.DY < 0 {
		b.zoom /= 1.1
	}
	if b.zoom > maxZoom {
		b.zoom = maxZoom
	}
	if b.zoom < minZoom {
		b.zoom = minZoom
	}
	b.mu.Unlock()
	b.Refresh()
}

// ResetView restores the identity viewport.
func (b *BoardWidget) ResetView() {
	b.mu.Lock()
	b.panX, b.panY = 0, 0
	b.zoom = 1.0
	b.mu.Unlock()
	b.Refresh()
}

// textAnnotationAt returns the topmost text annotation whose body
// contains p.
func (b *BoardWidget) textAnnotationAt(p geom.Point) (string, bool) {
	anns := b.store.Annotations()
	for i := len(anns) - 1; i >= 0; i-- {
		a := anns[i]
		if a.Kind == state.KindText && a.Bounds.Contains(p) {
			return a.ID, true
		}
	}
	return "", false
}

// handleAt returns the resize handle under p, if p falls on a corner
// handle of a selected text annotation.
func (b *BoardWidget) handleAt(p geom.Point) (string, state.Handle, bool) {
	b.mu.Lock()
	radius := handleHitRadius / b.zoom
	b.mu.Unlock()

	anns := b.store.Annotations()
	for i := len(anns) - 1; i >= 0; i-- {
		a := anns[i]
		if a.Kind != state.KindText || !b.store.IsSelected(a.ID) {
			continue
		}
		corners := []struct {
			h state.Handle
			p geom.Point
		}{
			{state.HandleNW, geom.Point{X: a.Bounds.X, Y: a.Bounds.Y}},
			{state.HandleNE, geom.Point{X: a.Bounds.X + a.Bounds.Width, Y: a.Bounds.Y}},
			{state.HandleSW, geom.Point{X: a.Bounds.X, Y: a.Bounds.Y + a.Bounds.Height}},
			{state.HandleSE, geom.Point{X: a.Bounds.X + a.Bounds.Width, Y: a.Bounds.Y + a.Bounds.Height}},
		}
		for _, c := range corners {
			if geom.Dist(p, c.p) <= radius {
				return a.ID, c.h, true
			}
		}
	}
	return "", "", false
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return newBoardRenderer(b)
}
