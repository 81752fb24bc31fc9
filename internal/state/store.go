package state

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inkboard/internal/geom"
	"inkboard/internal/stroke"
)

// Store is the authoritative owner of all annotations and of the single
// active gesture. Every mutation goes through its methods; the UI layer
// only reads. Operations taking an annotation ID are total: an unknown
// ID is a silent no-op, matching what a user expects of idempotent
// drawing-tool actions.
type Store struct {
	mu  sync.RWMutex
	log zerolog.Logger

	annotations []*Annotation
	index       map[string]*Annotation

	// Mode and style, set from the toolbar.
	drawingMode bool
	selectMode  bool
	drawKind    DrawKind
	shapeKind   ShapeKind
	style       Style

	// Active gesture.
	phase          Phase
	points         []geom.Point // freehand buffer
	start, current geom.Point   // shape / marquee anchor and free corner

	selection map[string]struct{}
	editingID string

	dragID     string
	dragOffset geom.Point

	resizeID     string
	resizeHandle Handle
	resizeStart  geom.Rect

	clock  clock
	siteID string

	// OnChange fires after every observable state change; the render
	// layer hangs its refresh off it.
	OnChange func()
	// OnLocalOp receives ops for locally committed mutations, stamped
	// with this site's clock, for broadcast to peers.
	OnLocalOp func(Op)
}

// NewStore returns an empty store with default style.
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		log:       log,
		index:     make(map[string]*Annotation),
		selection: make(map[string]struct{}),
		drawKind:  DrawFreehand,
		shapeKind: ShapeRectangle,
		style:     DefaultStyle(),
		siteID:    uuid.NewString(),
	}
}

func (s *Store) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Store) emit(op Op) {
	if s.OnLocalOp == nil {
		return
	}
	op.Lamport = s.clock.tick()
	op.Site = s.siteID
	s.OnLocalOp(op)
}

// --- mode and style ---

// SetDrawingMode toggles drawing mode. Toggling either way discards any
// in-progress gesture so a stale partial stroke can never commit.
func (s *Store) SetDrawingMode(on bool) {
	s.mu.Lock()
	s.drawingMode = on
	s.resetGestureLocked()
	s.mu.Unlock()
	s.notify()
}

// SetSelectMode toggles marquee selection mode.
func (s *Store) SetSelectMode(on bool) {
	s.mu.Lock()
	s.selectMode = on
	s.resetGestureLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) SetDrawKind(k DrawKind) {
	s.mu.Lock()
	s.drawKind = k
	s.resetGestureLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) SetShapeKind(k ShapeKind) {
	s.mu.Lock()
	s.shapeKind = k
	s.mu.Unlock()
	s.notify()
}

func (s *Store) SetStyle(st Style) {
	s.mu.Lock()
	s.style = st
	s.mu.Unlock()
	s.notify()
}

func (s *Store) DrawingMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawingMode
}

func (s *Store) SelectMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectMode
}

func (s *Store) DrawKind() DrawKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawKind
}

func (s *Store) ShapeKind() ShapeKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shapeKind
}

func (s *Store) Style() Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

func (s *Store) resetGestureLocked() {
	s.phase = PhaseIdle
	s.points = nil
	s.dragID = ""
	s.resizeID = ""
}

// --- drawing gesture ---

// BeginDraw starts a freehand stroke or shape drag at p. Ignored when
// drawing mode is off or another gesture is active.
func (s *Store) BeginDraw(p geom.Point) {
	s.mu.Lock()
	if !s.drawingMode || s.phase != PhaseIdle {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseDrawing
	s.start = p
	s.current = p
	if s.drawKind == DrawFreehand {
		s.points = s.points[:0]
		s.points = append(s.points, p)
	}
	s.mu.Unlock()
	s.notify()
}

// ExtendDraw advances the active stroke or shape preview to p.
func (s *Store) ExtendDraw(p geom.Point) {
	s.mu.Lock()
	if s.phase != PhaseDrawing {
		s.mu.Unlock()
		return
	}
	s.current = p
	if s.drawKind == DrawFreehand {
		s.points = append(s.points, p)
	}
	s.mu.Unlock()
	s.notify()
}

// EndDraw commits the active gesture, discarding degenerate geometry:
// strokes with an empty smoothed path or zero-area bounds, shapes under
// the 20-unit floor in both dimensions, arrows shorter than 20 units.
func (s *Store) EndDraw() {
	s.mu.Lock()
	if s.phase != PhaseDrawing {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseIdle

	var committed *Annotation
	switch s.drawKind {
	case DrawFreehand:
		committed = s.commitStrokeLocked()
	case DrawShape:
		committed = s.commitShapeLocked()
	}
	s.points = nil
	s.mu.Unlock()

	if committed != nil {
		s.emit(Op{Type: OpInsert, Annotation: committed})
	}
	s.notify()
}

func (s *Store) commitStrokeLocked() *Annotation {
	path := stroke.PathData(s.points, s.style.StrokeWidth)
	bounds := geom.FromPoints(s.points)
	if path == "" || bounds.Empty() {
		s.log.Debug().Int("points", len(s.points)).Msg("discarding degenerate stroke")
		return nil
	}
	a := &Annotation{
		ID:          uuid.NewString(),
		Kind:        KindStroke,
		Bounds:      bounds,
		Points:      append([]geom.Point(nil), s.points...),
		Path:        path,
		StrokeColor: s.style.StrokeColor,
		StrokeWidth: s.style.StrokeWidth,
	}
	s.addLocked(a)
	return a
}

func (s *Store) commitShapeLocked() *Annotation {
	a := &Annotation{
		ID:          uuid.NewString(),
		Kind:        KindShape,
		Shape:       s.shapeKind,
		StrokeColor: s.style.ShapeStrokeColor,
		StrokeWidth: s.style.ShapeStrokeWidth,
		FillColor:   s.style.ShapeFillColor,
		Filled:      s.style.ShapeFilled,
	}

	if s.shapeKind == ShapeArrow {
		if geom.Dist(s.start, s.current) < MinArrowLength {
			s.log.Debug().Msg("discarding arrow below minimum length")
			return nil
		}
		// Endpoints are kept verbatim; the padded box exists only for
		// selection and render culling.
		a.ArrowStart = s.start
		a.ArrowEnd = s.current
		a.Bounds = geom.FromPoints([]geom.Point{s.start, s.current}).Pad(ArrowBoundsPad)
		s.addLocked(a)
		return a
	}

	box := geom.FromCorners(s.start, s.current)
	if box.Width < MinShapeSize && box.Height < MinShapeSize {
		s.log.Debug().Msg("discarding shape below minimum size")
		return nil
	}
	if box.Width < MinShapeSize {
		box.Width = MinShapeSize
	}
	if box.Height < MinShapeSize {
		box.Height = MinShapeSize
	}
	a.Bounds = box
	s.addLocked(a)
	return a
}

func (s *Store) addLocked(a *Annotation) {
	s.annotations = append(s.annotations, a)
	s.index[a.ID] = a
}

// --- marquee selection ---

// BeginSelect anchors a selection marquee at p.
func (s *Store) BeginSelect(p geom.Point) {
	s.mu.Lock()
	if !s.selectMode || s.phase != PhaseIdle {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseSelecting
	s.start = p
	s.current = p
	s.mu.Unlock()
	s.notify()
}

// UpdateSelect moves the marquee's free corner to p.
func (s *Store) UpdateSelect(p geom.Point) {
	s.mu.Lock()
	if s.phase != PhaseSelecting {
		s.mu.Unlock()
		return
	}
	s.current = p
	s.mu.Unlock()
	s.notify()
}

// EndSelect replaces the selection with every annotation whose bounds
// intersect the marquee.
func (s *Store) EndSelect() {
	s.mu.Lock()
	if s.phase != PhaseSelecting {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseIdle
	box := geom.FromCorners(s.start, s.current)
	s.selection = make(map[string]struct{})
	for _, a := range s.annotations {
		if a.Bounds.Intersects(box) {
			s.selection[a.ID] = struct{}{}
		}
	}
	n := len(s.selection)
	s.mu.Unlock()
	s.log.Debug().Int("selected", n).Msg("marquee selection")
	s.notify()
}

// --- drag ---

// BeginDrag starts moving an annotation, capturing the pointer's offset
// from its origin so the grab point stays under the cursor.
func (s *Store) BeginDrag(id string, pointer geom.Point) {
	s.mu.Lock()
	a, ok := s.index[id]
	if !ok || s.phase != PhaseIdle {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseDragging
	s.dragID = id
	s.dragOffset = geom.Point{X: pointer.X - a.Bounds.X, Y: pointer.Y - a.Bounds.Y}
	s.mu.Unlock()
	s.notify()
}

// UpdateDrag repositions the dragged annotation; size is untouched.
func (s *Store) UpdateDrag(pointer geom.Point) {
	s.mu.Lock()
	if s.phase != PhaseDragging {
		s.mu.Unlock()
		return
	}
	a, ok := s.index[s.dragID]
	if !ok {
		s.phase = PhaseIdle
		s.mu.Unlock()
		return
	}
	newX := pointer.X - s.dragOffset.X
	newY := pointer.Y - s.dragOffset.Y
	dx, dy := newX-a.Bounds.X, newY-a.Bounds.Y
	a.Bounds.X = newX
	a.Bounds.Y = newY
	if a.Kind == KindShape && a.Shape == ShapeArrow {
		a.ArrowStart.X += dx
		a.ArrowStart.Y += dy
		a.ArrowEnd.X += dx
		a.ArrowEnd.Y += dy
	}
	s.mu.Unlock()
	s.notify()
}

// EndDrag finishes the move.
func (s *Store) EndDrag() {
	s.mu.Lock()
	if s.phase != PhaseDragging {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseIdle
	s.dragID = ""
	s.mu.Unlock()
	s.notify()
}

// --- resize ---

// BeginResize starts resizing via one of the four corner handles,
// capturing the box at gesture start as the anchor geometry.
func (s *Store) BeginResize(id string, h Handle) {
	s.mu.Lock()
	a, ok := s.index[id]
	if !ok || s.phase != PhaseIdle {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseResizing
	s.resizeID = id
	s.resizeHandle = h
	s.resizeStart = a.Bounds
	s.mu.Unlock()
	s.notify()
}

// UpdateResize recomputes the box for the pointer position. The corner
// opposite the handle is fixed; width and height never drop below the
// 50x30 text floor.
func (s *Store) UpdateResize(pointer geom.Point) {
	s.mu.Lock()
	if s.phase != PhaseResizing {
		s.mu.Unlock()
		return
	}
	a, ok := s.index[s.resizeID]
	if !ok {
		s.phase = PhaseIdle
		s.mu.Unlock()
		return
	}

	start := s.resizeStart
	right := start.X + start.Width
	bottom := start.Y + start.Height
	box := start

	switch s.resizeHandle {
	case HandleSE:
		box.Width = clampMin(pointer.X-start.X, MinResizeWidth)
		box.Height = clampMin(pointer.Y-start.Y, MinResizeHeight)
	case HandleSW:
		box.Width = clampMin(right-pointer.X, MinResizeWidth)
		box.X = right - box.Width
		box.Height = clampMin(pointer.Y-start.Y, MinResizeHeight)
	case HandleNE:
		box.Width = clampMin(pointer.X-start.X, MinResizeWidth)
		box.Height = clampMin(bottom-pointer.Y, MinResizeHeight)
		box.Y = bottom - box.Height
	case HandleNW:
		box.Width = clampMin(right-pointer.X, MinResizeWidth)
		box.X = right - box.Width
		box.Height = clampMin(bottom-pointer.Y, MinResizeHeight)
		box.Y = bottom - box.Height
	}

	a.Bounds = box
	s.mu.Unlock()
	s.notify()
}

// EndResize finishes the resize.
func (s *Store) EndResize() {
	s.mu.Lock()
	if s.phase != PhaseResizing {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseIdle
	s.resizeID = ""
	s.mu.Unlock()
	s.notify()
}

func clampMin(v, min float32) float32 {
	if v < min {
		return min
	}
	return v
}

// --- text annotations ---

// AddTextAt creates an empty text annotation at p and immediately opens
// it for editing. Only one annotation is editable at a time.
func (s *Store) AddTextAt(p geom.Point) string {
	s.mu.Lock()
	a := &Annotation{
		ID:         uuid.NewString(),
		Kind:       KindText,
		Bounds:     geom.Rect{X: p.X, Y: p.Y, Width: 200, Height: 50},
		TextColor:  s.style.TextColor,
		FontSize:   s.style.FontSize,
		FontFamily: s.style.FontFamily,
	}
	s.addLocked(a)
	s.editingID = a.ID
	s.mu.Unlock()

	s.emit(Op{Type: OpInsert, Annotation: a})
	s.notify()
	return a.ID
}

// UpdateText replaces an annotation's text content. Unknown IDs no-op.
func (s *Store) UpdateText(id, text string) {
	s.mu.Lock()
	a, ok := s.index[id]
	if ok {
		a.Text = text
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// StartEdit opens an annotation for text editing, closing any other
// editor. Unknown IDs no-op.
func (s *Store) StartEdit(id string) {
	s.mu.Lock()
	_, ok := s.index[id]
	if ok {
		s.editingID = id
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// StopEdit closes the active text editor, if any.
func (s *Store) StopEdit() {
	s.mu.Lock()
	s.editingID = ""
	s.mu.Unlock()
	s.notify()
}

// EditingID returns the annotation currently open for editing, or "".
func (s *Store) EditingID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editingID
}

// --- deletion and geometry updates ---

// Delete removes one annotation and drops it from the selection.
// Unknown IDs no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	ok := s.removeLocked(id)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.emit(Op{Type: OpDelete, Target: id})
	s.notify()
}

// DeleteSelected removes every selected annotation.
func (s *Store) DeleteSelected() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		if s.removeLocked(id) {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.emit(Op{Type: OpDelete, Target: id})
	}
	if len(ids) > 0 {
		s.notify()
	}
}

// Clear removes all annotations and resets every piece of transient
// state, including any in-flight gesture.
func (s *Store) Clear() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	s.emit(Op{Type: OpClear})
	s.notify()
}

func (s *Store) clearLocked() {
	s.annotations = nil
	s.index = make(map[string]*Annotation)
	s.selection = make(map[string]struct{})
	s.editingID = ""
	s.resetGestureLocked()
}

func (s *Store) removeLocked(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	delete(s.selection, id)
	if s.editingID == id {
		s.editingID = ""
	}
	for i, a := range s.annotations {
		if a.ID == id {
			s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
			break
		}
	}
	return true
}

// UpdateBounds replaces an annotation's box. Unknown IDs no-op.
func (s *Store) UpdateBounds(id string, bounds geom.Rect) {
	s.mu.Lock()
	a, ok := s.index[id]
	if ok {
		a.Bounds = bounds
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// --- read access ---

// Annotations returns a snapshot of all committed annotations in
// z-order.
func (s *Store) Annotations() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, 0, len(s.annotations))
	for _, a := range s.annotations {
		out = append(out, *a)
	}
	return out
}

// Get returns a copy of one annotation by ID.
func (s *Store) Get(id string) (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.index[id]
	if !ok {
		return Annotation{}, false
	}
	return *a, true
}

// Len returns the number of committed annotations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.annotations)
}

// Phase returns the active gesture phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// CurrentPath returns the live preview path of the stroke being drawn,
// or "" when it is not yet renderable.
func (s *Store) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseDrawing || s.drawKind != DrawFreehand {
		return ""
	}
	return stroke.PathData(s.points, s.style.StrokeWidth)
}

// CurrentPoints returns a snapshot of the raw points of the stroke
// being drawn, for live preview rendering.
func (s *Store) CurrentPoints() []geom.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseDrawing || s.drawKind != DrawFreehand {
		return nil
	}
	return append([]geom.Point(nil), s.points...)
}

// CurrentShape returns the live shape preview box and endpoints while a
// shape drag is active.
func (s *Store) CurrentShape() (kind ShapeKind, box geom.Rect, start, end geom.Point, active bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseDrawing || s.drawKind != DrawShape {
		return "", geom.Rect{}, geom.Point{}, geom.Point{}, false
	}
	return s.shapeKind, geom.FromCorners(s.start, s.current), s.start, s.current, true
}

// SelectionBox returns the live marquee box while a selection drag is
// active.
func (s *Store) SelectionBox() (geom.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseSelecting {
		return geom.Rect{}, false
	}
	return geom.FromCorners(s.start, s.current), true
}

// Selected returns the IDs of all selected annotations.
func (s *Store) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	return out
}

// IsSelected reports whether one annotation is selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selection[id]
	return ok
}

// SiteID identifies this store instance in the op log.
func (s *Store) SiteID() string {
	return s.siteID
}
