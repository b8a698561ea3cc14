package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoPrintBuild(t *testing.T) {
	d := DefaultDemoPrint()
	data, err := d.Build()
	require.NoError(t, err)

	numbers := data.LayerNumbers()
	require.Len(t, numbers, d.Layers)
	assert.Equal(t, 0, numbers[0])

	// travel (1 line) + wall (4) + infill (8), two index entries per line
	for _, n := range numbers {
		assert.Equal(t, 26, data.ElementCounts()[n], "layer %d", n)
	}
	assert.Equal(t, 26*d.Layers, data.TotalElements())
}

func TestDemoPrintPolygonsAreContinuous(t *testing.T) {
	data, err := DefaultDemoPrint().Build()
	require.NoError(t, err)

	for _, n := range data.LayerNumbers() {
		l, ok := data.Layer(n)
		require.True(t, ok)
		for i := 1; i < len(l.Polygons); i++ {
			prev := l.Polygons[i-1].Points
			assert.Equal(t, prev[len(prev)-1], l.Polygons[i].Points[0], "layer %d polygon %d", n, i)
		}
	}
}

func TestDemoPrintLayerHeights(t *testing.T) {
	d := DefaultDemoPrint()
	data, err := d.Build()
	require.NoError(t, err)

	l, _ := data.Layer(4)
	wall := l.Polygons[1]
	for _, p := range wall.Points {
		assert.InDelta(t, 1.0, p.Y, 1e-5)
	}
	assert.InDelta(t, 4.0, d.Center().Y, 1e-5)
}
