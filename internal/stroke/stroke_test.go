package stroke

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkboard/internal/geom"
)

func samplePoints() []geom.Point {
	return []geom.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 4},
		{X: 25, Y: 12},
		{X: 40, Y: 25},
		{X: 52, Y: 40},
		{X: 60, Y: 58},
	}
}

func TestPathDataDegenerateInputs(t *testing.T) {
	assert.Equal(t, "", PathData(nil, 4))
	assert.Equal(t, "", PathData([]geom.Point{{X: 5, Y: 5}}, 4))
	// Identical samples collapse during streamlining.
	assert.Equal(t, "", PathData([]geom.Point{{X: 5, Y: 5}, {X: 5, Y: 5}}, 4))
}

func TestPathDataShape(t *testing.T) {
	path := PathData(samplePoints(), 4)
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(path, "M "))
	assert.True(t, strings.HasSuffix(path, " Z"))
	assert.Contains(t, path, " Q ")
}

func TestPathDataDeterministic(t *testing.T) {
	a := PathData(samplePoints(), 4)
	b := PathData(samplePoints(), 4)
	assert.Equal(t, a, b)
}

func TestOutlineClosedPolygon(t *testing.T) {
	outline := Outline(samplePoints(), DefaultOptions(4))
	require.GreaterOrEqual(t, len(outline), 4)

	// Left and right edges contribute one vertex pair per input point,
	// so the outline has an even count.
	assert.Equal(t, 0, len(outline)%2)

	for _, p := range outline {
		assert.True(t, p.Finite())
	}
}

func TestOutlineStaysNearInput(t *testing.T) {
	opts := DefaultOptions(4)
	pts := samplePoints()
	outline := Outline(pts, opts)
	require.NotEmpty(t, outline)

	// No outline vertex strays farther from the input's bounds than
	// the stroke half-width allows.
	bounds := geom.FromPoints(pts).Pad(opts.Size)
	for _, p := range outline {
		assert.True(t, bounds.Contains(p), "outline vertex %+v outside %+v", p, bounds)
	}
}

func TestOutlineEmptyForTooFewPoints(t *testing.T) {
	assert.Nil(t, Outline(nil, DefaultOptions(4)))
	assert.Nil(t, Outline([]geom.Point{{X: 1, Y: 1}}, DefaultOptions(4)))
}

func TestThinningNarrowsFastSegments(t *testing.T) {
	// A slow stroke (tiny steps) should be wider than a fast one
	// (large steps) with identical settings.
	slow := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}
	fast := []geom.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 80, Y: 0}, {X: 120, Y: 0}}

	slowBounds := geom.FromPoints(Outline(slow, DefaultOptions(8)))
	fastBounds := geom.FromPoints(Outline(fast, DefaultOptions(8)))

	// Strokes run along the x-axis, so height measures stroke width.
	assert.Greater(t, slowBounds.Height, fastBounds.Height)
}
