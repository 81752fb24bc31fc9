package ui

import (
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkboard/internal/geom"
	"inkboard/internal/state"
)

func newTestBoard(t *testing.T) (*BoardWidget, *state.Store) {
	t.Helper()
	test.NewApp()
	store := state.NewStore(zerolog.Nop())
	return NewBoardWidget(store, zerolog.Nop()), store
}

func mouseEvent(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func dragEvent(x, y, dx, dy float32) *fyne.DragEvent {
	return &fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Dragged:    fyne.Delta{DX: dx, DY: dy},
	}
}

func TestToCanvasAppliesViewportTransform(t *testing.T) {
	board, _ := newTestBoard(t)
	board.panX, board.panY = 100, 50
	board.zoom = 2

	p := board.toCanvas(fyne.NewPos(300, 250))
	assert.Equal(t, geom.Point{X: 100, Y: 100}, p)

	// And back again.
	assert.Equal(t, fyne.NewPos(300, 250), board.toScreen(p))
}

func TestNonFinitePointerEventDropped(t *testing.T) {
	board, store := newTestBoard(t)
	store.SetDrawingMode(true)
	store.SetDrawKind(state.DrawFreehand)

	board.MouseDown(mouseEvent(float32(math.NaN()), 10))

	assert.Equal(t, state.PhaseIdle, store.Phase())
	assert.Equal(t, 0, store.Len())
}

func TestFreehandGestureCommits(t *testing.T) {
	board, store := newTestBoard(t)
	store.SetDrawingMode(true)
	store.SetDrawKind(state.DrawFreehand)

	board.MouseDown(mouseEvent(0, 0))
	require.Equal(t, state.PhaseDrawing, store.Phase())

	board.Dragged(dragEvent(10, 15, 10, 15))
	board.Dragged(dragEvent(30, 40, 20, 25))
	board.MouseUp(mouseEvent(30, 40))

	require.Equal(t, state.PhaseIdle, store.Phase())
	require.Equal(t, 1, store.Len())

	a := store.Annotations()[0]
	assert.Equal(t, state.KindStroke, a.Kind)
	// The throttled final sample is flushed before commit.
	assert.Equal(t, geom.Point{X: 30, Y: 40}, a.Points[len(a.Points)-1])
}

func TestInertModePansInstead(t *testing.T) {
	board, store := newTestBoard(t)

	board.MouseDown(mouseEvent(10, 10))
	assert.Equal(t, state.PhaseIdle, store.Phase())

	board.Dragged(dragEvent(30, 25, 20, 15))
	panX, panY, _ := board.Viewport()
	assert.Equal(t, float32(20), panX)
	assert.Equal(t, float32(15), panY)
	assert.Equal(t, 0, store.Len())
}

func TestPanDoesNotMoveAnnotations(t *testing.T) {
	board, store := newTestBoard(t)
	id := store.AddTextAt(geom.Point{X: 50, Y: 50})
	store.StopEdit()

	board.Dragged(dragEvent(100, 100, 40, 40))

	a, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, float32(50), a.Bounds.X, "panning moves the viewport, not the content")
}

func TestScrollZoomClamped(t *testing.T) {
	board, _ := newTestBoard(t)

	for i := 0; i < 50; i++ {
		board.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 1}})
	}
	_, _, zoom := board.Viewport()
	assert.InDelta(t, maxZoom, zoom, 1e-3)

	for i := 0; i < 100; i++ {
		board.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -1}})
	}
	_, _, zoom = board.Viewport()
	assert.InDelta(t, minZoom, zoom, 1e-3)
}

func TestSelectModeMarquee(t *testing.T) {
	board, store := newTestBoard(t)
	id := store.AddTextAt(geom.Point{X: 10, Y: 10})
	store.StopEdit()
	store.UpdateBounds(id, geom.Rect{X: 10, Y: 10, Width: 50, Height: 30})
	store.SetSelectMode(true)

	board.MouseDown(mouseEvent(0, 0))
	require.Equal(t, state.PhaseSelecting, store.Phase())
	board.Dragged(dragEvent(100, 100, 100, 100))
	board.MouseUp(mouseEvent(100, 100))

	assert.True(t, store.IsSelected(id))
}

func TestHandleHitStartsResize(t *testing.T) {
	board, store := newTestBoard(t)
	id := store.AddTextAt(geom.Point{X: 100, Y: 100})
	store.StopEdit()
	store.UpdateBounds(id, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	store.SetSelectMode(true)

	// Select it first; handles only exist on selected text boxes.
	board.MouseDown(mouseEvent(50, 50))
	board.Dragged(dragEvent(350, 250, 300, 200))
	board.MouseUp(mouseEvent(350, 250))
	require.True(t, store.IsSelected(id))

	// Grab the se corner.
	board.MouseDown(mouseEvent(300, 200))
	assert.Equal(t, state.PhaseResizing, store.Phase())
	board.Dragged(dragEvent(400, 300, 100, 100))
	board.MouseUp(mouseEvent(400, 300))

	a, _ := store.Get(id)
	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200}, a.Bounds)
}

func TestBodyHitStartsDrag(t *testing.T) {
	board, store := newTestBoard(t)
	id := store.AddTextAt(geom.Point{X: 100, Y: 100})
	store.StopEdit()
	store.UpdateBounds(id, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	store.SetSelectMode(true)

	board.MouseDown(mouseEvent(150, 150))
	assert.Equal(t, state.PhaseDragging, store.Phase())

	board.Dragged(dragEvent(250, 150, 100, 0))
	board.MouseUp(mouseEvent(250, 150))

	a, _ := store.Get(id)
	assert.Equal(t, float32(200), a.Bounds.X)
	assert.Equal(t, float32(100), a.Bounds.Y)
}

func TestTextModePlacesAnnotation(t *testing.T) {
	board, store := newTestBoard(t)
	store.SetDrawingMode(true)
	store.SetDrawKind(state.DrawText)

	board.MouseDown(mouseEvent(40, 60))

	require.Equal(t, 1, store.Len())
	a := store.Annotations()[0]
	assert.Equal(t, state.KindText, a.Kind)
	assert.Equal(t, float32(40), a.Bounds.X)
	assert.Equal(t, a.ID, store.EditingID())
}
