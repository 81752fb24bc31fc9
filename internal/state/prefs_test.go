package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryPrefsDefaults(t *testing.T) {
	p := NewMemoryPrefs()
	assert.Equal(t, DefaultStyle(), p.Load())
}

func TestMemoryPrefsRoundTrip(t *testing.T) {
	p := NewMemoryPrefs()
	st := DefaultStyle()
	st.StrokeColor = "#e5484d"
	st.StrokeWidth = 9
	st.ShapeFilled = true

	p.Save(st)
	assert.Equal(t, st, p.Load())
}

func TestMemoryPrefsSubscribe(t *testing.T) {
	p := NewMemoryPrefs()
	var seen []Style
	p.Subscribe(func(st Style) { seen = append(seen, st) })

	st := DefaultStyle()
	st.FontSize = 24
	p.Save(st)

	assert.Len(t, seen, 1)
	assert.Equal(t, float32(24), seen[0].FontSize)
}
