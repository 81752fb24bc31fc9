package state

import (
	"sync"

	"fyne.io/fyne/v2"
)

// Prefs persists the user's style settings between sessions and lets
// the toolbar observe changes made elsewhere. Implementations decide
// the storage mechanism; the store and UI only see this contract.
type Prefs interface {
	Load() Style
	Save(Style)
	Subscribe(func(Style))
}

const (
	prefStrokeColor      = "style.stroke.color"
	prefStrokeWidth      = "style.stroke.width"
	prefTextColor        = "style.text.color"
	prefFontSize         = "style.text.size"
	prefFontFamily       = "style.text.family"
	prefShapeStrokeColor = "style.shape.strokeColor"
	prefShapeStrokeWidth = "style.shape.strokeWidth"
	prefShapeFillColor   = "style.shape.fillColor"
	prefShapeFilled      = "style.shape.filled"
)

// FynePrefs stores the style in the Fyne application preferences.
type FynePrefs struct {
	p fyne.Preferences

	mu   sync.Mutex
	subs []func(Style)
}

// NewFynePrefs wraps the app's preference store.
func NewFynePrefs(p fyne.Preferences) *FynePrefs {
	return &FynePrefs{p: p}
}

func (f *FynePrefs) Load() Style {
	def := DefaultStyle()
	return Style{
		StrokeColor:      f.p.StringWithFallback(prefStrokeColor, def.StrokeColor),
		StrokeWidth:      float32(f.p.FloatWithFallback(prefStrokeWidth, float64(def.StrokeWidth))),
		TextColor:        f.p.StringWithFallback(prefTextColor, def.TextColor),
		FontSize:         float32(f.p.FloatWithFallback(prefFontSize, float64(def.FontSize))),
		FontFamily:       f.p.StringWithFallback(prefFontFamily, def.FontFamily),
		ShapeStrokeColor: f.p.StringWithFallback(prefShapeStrokeColor, def.ShapeStrokeColor),
		ShapeStrokeWidth: float32(f.p.FloatWithFallback(prefShapeStrokeWidth, float64(def.ShapeStrokeWidth))),
		ShapeFillColor:   f.p.StringWithFallback(prefShapeFillColor, def.ShapeFillColor),
		ShapeFilled:      f.p.BoolWithFallback(prefShapeFilled, def.ShapeFilled),
	}
}

func (f *FynePrefs) Save(st Style) {
	f.p.SetString(prefStrokeColor, st.StrokeColor)
	f.p.SetFloat(prefStrokeWidth, float64(st.StrokeWidth))
	f.p.SetString(prefTextColor, st.TextColor)
	f.p.SetFloat(prefFontSize, float64(st.FontSize))
	f.p.SetString(prefFontFamily, st.FontFamily)
	f.p.SetString(prefShapeStrokeColor, st.ShapeStrokeColor)
	f.p.SetFloat(prefShapeStrokeWidth, float64(st.ShapeStrokeWidth))
	f.p.SetString(prefShapeFillColor, st.ShapeFillColor)
	f.p.SetBool(prefShapeFilled, st.ShapeFilled)
	f.broadcast(st)
}

func (f *FynePrefs) Subscribe(fn func(Style)) {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
}

func (f *FynePrefs) broadcast(st Style) {
	f.mu.Lock()
	subs := append(([]func(Style))(nil), f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

// MemoryPrefs is an in-memory Prefs for tests and headless use.
type MemoryPrefs struct {
	mu    sync.Mutex
	style Style
	set   bool
	subs  []func(Style)
}

func NewMemoryPrefs() *MemoryPrefs {
	return &MemoryPrefs{}
}

func (m *MemoryPrefs) Load() Style {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return DefaultStyle()
	}
	return m.style
}

func (m *MemoryPrefs) Save(st Style) {
	m.mu.Lock()
	m.style = st
	m.set = true
	subs := append(([]func(Style))(nil), m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (m *MemoryPrefs) Subscribe(fn func(Style)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}
