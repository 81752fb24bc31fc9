package state

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkboard/internal/geom"
)

func newTestStore() *Store {
	return NewStore(zerolog.Nop())
}

func drawStroke(s *Store, points []geom.Point) {
	s.SetDrawingMode(true)
	s.SetDrawKind(DrawFreehand)
	s.BeginDraw(points[0])
	for _, p := range points[1:] {
		s.ExtendDraw(p)
	}
	s.EndDraw()
}

func drawShape(s *Store, kind ShapeKind, start, end geom.Point) {
	s.SetDrawingMode(true)
	s.SetDrawKind(DrawShape)
	s.SetShapeKind(kind)
	s.BeginDraw(start)
	s.ExtendDraw(end)
	s.EndDraw()
}

// addTextWithBounds plants a text annotation with exact bounds, for
// selection and gesture tests.
func addTextWithBounds(s *Store, bounds geom.Rect) string {
	id := s.AddTextAt(geom.Point{X: bounds.X, Y: bounds.Y})
	s.StopEdit()
	s.UpdateBounds(id, bounds)
	return id
}

func TestStrokeCommitBoundsMatchPoints(t *testing.T) {
	s := newTestStore()
	points := []geom.Point{
		{X: 0, Y: 0}, {X: 10, Y: 5}, {X: 25, Y: 15}, {X: 40, Y: 30}, {X: 55, Y: 50},
	}
	drawStroke(s, points)

	require.Equal(t, 1, s.Len())
	a := s.Annotations()[0]
	assert.Equal(t, KindStroke, a.Kind)
	assert.Equal(t, geom.FromPoints(points), a.Bounds)
	assert.NotEmpty(t, a.Path)
	assert.Equal(t, points, a.Points)
}

func TestStrokeCommitDiscardsDegenerate(t *testing.T) {
	s := newTestStore()

	// Single click: zero-area bounds.
	s.SetDrawingMode(true)
	s.SetDrawKind(DrawFreehand)
	s.BeginDraw(geom.Point{X: 5, Y: 5})
	s.EndDraw()
	assert.Equal(t, 0, s.Len())

	// Horizontal scribble: bounds exist but have zero height.
	drawStroke(s, []geom.Point{{X: 0, Y: 10}, {X: 20, Y: 10}, {X: 40, Y: 10}})
	assert.Equal(t, 0, s.Len())
}

func TestShapeCommitReversedDragIdentical(t *testing.T) {
	a := newTestStore()
	drawShape(a, ShapeRectangle, geom.Point{X: 0, Y: 0}, geom.Point{X: 100, Y: 80})

	b := newTestStore()
	drawShape(b, ShapeRectangle, geom.Point{X: 100, Y: 80}, geom.Point{X: 0, Y: 0})

	require.Equal(t, 1, a.Len())
	require.Equal(t, 1, b.Len())
	want := geom.Rect{X: 0, Y: 0, Width: 100, Height: 80}
	assert.Equal(t, want, a.Annotations()[0].Bounds)
	assert.Equal(t, want, b.Annotations()[0].Bounds)
}

func TestShapeCommitMinimumSize(t *testing.T) {
	s := newTestStore()
	drawShape(s, ShapeRectangle, geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10})
	assert.Equal(t, 0, s.Len(), "10x10 shape is below the 20x20 floor")

	drawShape(s, ShapeRectangle, geom.Point{X: 0, Y: 0}, geom.Point{X: 25, Y: 25})
	assert.Equal(t, 1, s.Len())
}

func TestShapeCommitClampsSingleSmallDimension(t *testing.T) {
	s := newTestStore()
	drawShape(s, ShapeRectangle, geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 60})

	require.Equal(t, 1, s.Len())
	box := s.Annotations()[0].Bounds
	assert.Equal(t, MinShapeSize, box.Width)
	assert.Equal(t, float32(60), box.Height)
}

func TestArrowDirectionPreserved(t *testing.T) {
	right := newTestStore()
	drawShape(right, ShapeArrow, geom.Point{X: 0, Y: 0}, geom.Point{X: 100, Y: 0})

	left := newTestStore()
	drawShape(left, ShapeArrow, geom.Point{X: 100, Y: 0}, geom.Point{X: 0, Y: 0})

	require.Equal(t, 1, right.Len())
	require.Equal(t, 1, left.Len())

	r := right.Annotations()[0]
	l := left.Annotations()[0]
	assert.Equal(t, float32(0), r.ArrowStart.X)
	assert.Equal(t, float32(100), r.ArrowEnd.X)
	assert.Equal(t, float32(100), l.ArrowStart.X)
	assert.Equal(t, float32(0), l.ArrowEnd.X)

	// Same normalized, padded box either way.
	assert.Equal(t, r.Bounds, l.Bounds)
	assert.Equal(t, geom.Rect{X: -ArrowBoundsPad, Y: -ArrowBoundsPad, Width: 100 + 2*ArrowBoundsPad, Height: 2 * ArrowBoundsPad}, r.Bounds)
}

func TestArrowMinimumLength(t *testing.T) {
	s := newTestStore()
	drawShape(s, ShapeArrow, geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10})
	assert.Equal(t, 0, s.Len(), "arrow shorter than 20 units is discarded")

	drawShape(s, ShapeArrow, geom.Point{X: 0, Y: 0}, geom.Point{X: 30, Y: 0})
	assert.Equal(t, 1, s.Len())
}

func TestMarqueeSelection(t *testing.T) {
	s := newTestStore()
	first := addTextWithBounds(s, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	second := addTextWithBounds(s, geom.Rect{X: 100, Y: 100, Width: 10, Height: 10})
	s.SetDrawingMode(false)
	s.SetSelectMode(true)

	marquee := func(a, b geom.Point) []string {
		s.BeginSelect(a)
		s.UpdateSelect(b)
		s.EndSelect()
		return s.Selected()
	}

	got := marquee(geom.Point{X: 0, Y: 0}, geom.Point{X: 20, Y: 20})
	assert.ElementsMatch(t, []string{first}, got)

	got = marquee(geom.Point{X: -5, Y: -5}, geom.Point{X: 245, Y: 245})
	assert.ElementsMatch(t, []string{first, second}, got)

	got = marquee(geom.Point{X: 50, Y: 50}, geom.Point{X: 55, Y: 55})
	assert.Empty(t, got)
}

func TestMarqueeReplacesSelection(t *testing.T) {
	s := newTestStore()
	first := addTextWithBounds(s, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	second := addTextWithBounds(s, geom.Rect{X: 100, Y: 100, Width: 10, Height: 10})
	s.SetSelectMode(true)

	s.BeginSelect(geom.Point{X: 0, Y: 0})
	s.UpdateSelect(geom.Point{X: 20, Y: 20})
	s.EndSelect()
	require.ElementsMatch(t, []string{first}, s.Selected())

	s.BeginSelect(geom.Point{X: 95, Y: 95})
	s.UpdateSelect(geom.Point{X: 120, Y: 120})
	s.EndSelect()
	assert.ElementsMatch(t, []string{second}, s.Selected())
}

func TestDragMovesWithoutResizing(t *testing.T) {
	s := newTestStore()
	id := addTextWithBounds(s, geom.Rect{X: 10, Y: 10, Width: 200, Height: 50})

	s.BeginDrag(id, geom.Point{X: 15, Y: 15}) // grab 5,5 inside the box
	s.UpdateDrag(geom.Point{X: 50, Y: 60})
	s.EndDrag()

	a, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 45, Y: 55, Width: 200, Height: 50}, a.Bounds)
}

func TestDragTranslatesArrowEndpoints(t *testing.T) {
	s := newTestStore()
	drawShape(s, ShapeArrow, geom.Point{X: 0, Y: 0}, geom.Point{X: 100, Y: 0})
	id := s.Annotations()[0].ID

	s.BeginDrag(id, geom.Point{X: 0, Y: 0})
	s.UpdateDrag(geom.Point{X: 10, Y: 20})
	s.EndDrag()

	a, _ := s.Get(id)
	assert.Equal(t, geom.Point{X: 10, Y: 20}, a.ArrowStart)
	assert.Equal(t, geom.Point{X: 110, Y: 20}, a.ArrowEnd)
}

func TestResizeHandleSemantics(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}

	tests := []struct {
		name    string
		handle  Handle
		pointer geom.Point
		want    geom.Rect
	}{
		{
			name:    "se grows from fixed nw corner",
			handle:  HandleSE,
			pointer: geom.Point{X: 400, Y: 300},
			want:    geom.Rect{X: 100, Y: 100, Width: 300, Height: 200},
		},
		{
			name:    "nw moves origin, fixed se corner",
			handle:  HandleNW,
			pointer: geom.Point{X: 50, Y: 50},
			want:    geom.Rect{X: 50, Y: 50, Width: 250, Height: 150},
		},
		{
			name:    "ne keeps left and bottom edges",
			handle:  HandleNE,
			pointer: geom.Point{X: 400, Y: 50},
			want:    geom.Rect{X: 100, Y: 50, Width: 300, Height: 150},
		},
		{
			name:    "sw keeps right and top edges",
			handle:  HandleSW,
			pointer: geom.Point{X: 50, Y: 300},
			want:    geom.Rect{X: 50, Y: 100, Width: 250, Height: 200},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			id := addTextWithBounds(s, start)
			s.BeginResize(id, tt.handle)
			s.UpdateResize(tt.pointer)
			s.EndResize()

			a, ok := s.Get(id)
			require.True(t, ok)
			assert.Equal(t, tt.want, a.Bounds)
		})
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	s := newTestStore()
	id := addTextWithBounds(s, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})

	// Drag the se handle all the way past the anchor corner.
	s.BeginResize(id, HandleSE)
	s.UpdateResize(geom.Point{X: 0, Y: 0})
	s.EndResize()

	a, _ := s.Get(id)
	assert.Equal(t, MinResizeWidth, a.Bounds.Width)
	assert.Equal(t, MinResizeHeight, a.Bounds.Height)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s := newTestStore()
	id := addTextWithBounds(s, geom.Rect{X: 0, Y: 0, Width: 100, Height: 50})
	s.UpdateText(id, "hello")
	before := s.Annotations()

	s.Delete("no-such-id")
	s.UpdateText("no-such-id", "zap")
	s.UpdateBounds("no-such-id", geom.Rect{Width: 1, Height: 1})
	s.StartEdit("no-such-id")
	s.BeginDrag("no-such-id", geom.Point{})
	s.BeginResize("no-such-id", HandleSE)

	assert.Equal(t, before, s.Annotations())
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Equal(t, "", s.EditingID())
}

func TestDeleteRemovesFromSelection(t *testing.T) {
	s := newTestStore()
	id := addTextWithBounds(s, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	s.SetSelectMode(true)
	s.BeginSelect(geom.Point{X: -1, Y: -1})
	s.UpdateSelect(geom.Point{X: 20, Y: 20})
	s.EndSelect()
	require.True(t, s.IsSelected(id))

	s.Delete(id)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Selected())
}

func TestDeleteSelected(t *testing.T) {
	s := newTestStore()
	addTextWithBounds(s, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	keep := addTextWithBounds(s, geom.Rect{X: 100, Y: 100, Width: 10, Height: 10})
	s.SetSelectMode(true)
	s.BeginSelect(geom.Point{X: -1, Y: -1})
	s.UpdateSelect(geom.Point{X: 20, Y: 20})
	s.EndSelect()

	s.DeleteSelected()
	require.Equal(t, 1, s.Len())
	assert.Equal(t, keep, s.Annotations()[0].ID)
}

func TestClearResetsEverything(t *testing.T) {
	s := newTestStore()
	addTextWithBounds(s, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	drawShape(s, ShapeRectangle, geom.Point{X: 0, Y: 0}, geom.Point{X: 50, Y: 50})
	s.SetSelectMode(true)
	s.BeginSelect(geom.Point{X: -1, Y: -1})
	s.UpdateSelect(geom.Point{X: 200, Y: 200})
	s.EndSelect()

	s.Clear()

	assert.Empty(t, s.Annotations())
	assert.Empty(t, s.Selected())
	assert.Equal(t, "", s.CurrentPath())
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Equal(t, "", s.EditingID())
}

func TestSingleTextEditor(t *testing.T) {
	s := newTestStore()
	first := s.AddTextAt(geom.Point{X: 0, Y: 0})
	assert.Equal(t, first, s.EditingID())

	second := s.AddTextAt(geom.Point{X: 100, Y: 100})
	assert.Equal(t, second, s.EditingID())

	s.StopEdit()
	assert.Equal(t, "", s.EditingID())
}

func TestModeToggleResetsPendingGesture(t *testing.T) {
	s := newTestStore()
	s.SetDrawingMode(true)
	s.SetDrawKind(DrawFreehand)
	s.BeginDraw(geom.Point{X: 0, Y: 0})
	s.ExtendDraw(geom.Point{X: 50, Y: 50})
	require.Equal(t, PhaseDrawing, s.Phase())

	s.SetDrawingMode(false)
	assert.Equal(t, PhaseIdle, s.Phase())

	// The abandoned buffer must not leak into a later commit.
	drawStroke(s, []geom.Point{{X: 200, Y: 200}, {X: 210, Y: 215}, {X: 225, Y: 230}, {X: 240, Y: 250}})
	require.Equal(t, 1, s.Len())
	a := s.Annotations()[0]
	assert.Equal(t, float32(200), a.Bounds.X)
}

func TestLocalOpsEmitted(t *testing.T) {
	s := newTestStore()
	var ops []Op
	s.OnLocalOp = func(op Op) { ops = append(ops, op) }

	id := s.AddTextAt(geom.Point{X: 0, Y: 0})
	s.Delete(id)
	s.Clear()

	require.Len(t, ops, 3)
	assert.Equal(t, OpInsert, ops[0].Type)
	assert.Equal(t, id, ops[0].Annotation.ID)
	assert.Equal(t, OpDelete, ops[1].Type)
	assert.Equal(t, id, ops[1].Target)
	assert.Equal(t, OpClear, ops[2].Type)

	// Lamport timestamps increase and carry the site ID.
	assert.Less(t, ops[0].Lamport, ops[1].Lamport)
	assert.Less(t, ops[1].Lamport, ops[2].Lamport)
	for _, op := range ops {
		assert.Equal(t, s.SiteID(), op.Site)
	}
}
