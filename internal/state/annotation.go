package state

import (
	"inkboard/internal/geom"
)

// Kind discriminates the annotation variants.
type Kind string

const (
	KindStroke Kind = "stroke"
	KindText   Kind = "text"
	KindShape  Kind = "shape"
)

// ShapeKind selects the shape primitive for KindShape annotations.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeLine      ShapeKind = "line"
	ShapeArrow     ShapeKind = "arrow"
)

// Commit and interaction thresholds, in canvas units. The shape-commit
// floor and the text-resize floor are deliberately distinct values.
const (
	// MinShapeSize is the smallest committable shape dimension; drags
	// below it in both dimensions are treated as accidental clicks.
	MinShapeSize float32 = 20
	// MinArrowLength is the smallest committable arrow, measured as the
	// distance between its endpoints rather than its box.
	MinArrowLength float32 = 20
	// ArrowBoundsPad grows an arrow's selection box around its endpoints.
	ArrowBoundsPad float32 = 10
	// MinResizeWidth and MinResizeHeight floor text-annotation resize,
	// keeping the box large enough to stay readable.
	MinResizeWidth  float32 = 50
	MinResizeHeight float32 = 30
)

// Annotation is a committed drawing object. Kind selects which fields
// are meaningful; the flat layout keeps the wire encoding simple.
type Annotation struct {
	ID     string    `json:"id"`
	Kind   Kind      `json:"kind"`
	Bounds geom.Rect `json:"bounds"`

	// Freehand stroke.
	Points      []geom.Point `json:"points,omitempty"`
	Path        string       `json:"path,omitempty"`
	StrokeColor string       `json:"strokeColor,omitempty"`
	StrokeWidth float32      `json:"strokeWidth,omitempty"`

	// Text.
	Text       string  `json:"text,omitempty"`
	TextColor  string  `json:"textColor,omitempty"`
	FontSize   float32 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`

	// Shape. Arrows keep their exact endpoints: the padded bounds
	// cannot reproduce direction once normalized.
	Shape      ShapeKind  `json:"shape,omitempty"`
	FillColor  string     `json:"fillColor,omitempty"`
	Filled     bool       `json:"filled,omitempty"`
	ArrowStart geom.Point `json:"arrowStart,omitempty"`
	ArrowEnd   geom.Point `json:"arrowEnd,omitempty"`
}

// Style bundles the live drawing parameters applied to new annotations.
type Style struct {
	StrokeColor string
	StrokeWidth float32

	TextColor  string
	FontSize   float32
	FontFamily string

	ShapeStrokeColor string
	ShapeStrokeWidth float32
	ShapeFillColor   string
	ShapeFilled      bool
}

// DefaultStyle is the palette used before any preference is loaded.
func DefaultStyle() Style {
	return Style{
		StrokeColor:      "#1a1a1a",
		StrokeWidth:      4,
		TextColor:        "#1a1a1a",
		FontSize:         16,
		FontFamily:       "sans-serif",
		ShapeStrokeColor: "#1a1a1a",
		ShapeStrokeWidth: 2,
		ShapeFillColor:   "#4f86f7",
		ShapeFilled:      false,
	}
}

// DrawKind selects what a pointer-down begins while drawing mode is on.
type DrawKind string

const (
	DrawFreehand DrawKind = "freehand"
	DrawText     DrawKind = "text"
	DrawShape    DrawKind = "shape"
)

// Handle names a resize corner. Each handle moves its two adjacent
// edges; the opposite corner stays fixed.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleNE Handle = "ne"
	HandleSW Handle = "sw"
	HandleSE Handle = "se"
)

// Phase is the current gesture. A single gesture is active at a time.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
	PhaseSelecting
	PhaseDragging
	PhaseResizing
)
