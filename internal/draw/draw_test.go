package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOnlyEmitsChangedCells(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	var out bytes.Buffer

	c.Set(0, 0, ColorBot)
	c.Render(&out)
	first := out.String()
	assert.Contains(t, first, string(BlockUpperHalf))
	assert.Equal(t, 8, strings.Count(first, "H"), "initial render paints every cell")

	out.Reset()
	c.Render(&out)
	assert.Empty(t, out.String())

	c.Set(0, 1, ColorBot)
	c.Render(&out)
	assert.Equal(t, 1, strings.Count(out.String(), "H"))
	assert.Contains(t, out.String(), string(BlockFull))

	out.Reset()
	c.ForceRedraw()
	c.Render(&out)
	assert.Equal(t, 8, strings.Count(out.String(), "H"))
}

func TestMarkTextDirtyRepaintsCells(t *testing.T) {
	c := NewScaledCanvas(10, 3, 10, 6)
	var out bytes.Buffer
	c.Render(&out)

	out.Reset()
	c.MarkTextDirty(3, 2, 4)
	c.Render(&out)
	assert.Equal(t, 4, strings.Count(out.String(), "H"))
	assert.Contains(t, out.String(), "\033[2;3H")

	// Out of range marks are ignored.
	c.MarkTextDirty(1, 9, 3)
	out.Reset()
	c.Render(&out)
	assert.Empty(t, out.String())
}

func TestFillRectCoversAtLeastOnePixel(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.FillRect(Point{2.2, 3.1}, Point{2.4, 3.3}, ColorProjectile)
	assert.Equal(t, ColorProjectile, c.pixels[3*10+2])

	c.Clear()
	c.FillRect(Point{-5, -5}, Point{20, 20}, ColorRoad)
	for _, p := range c.pixels {
		require.Equal(t, ColorRoad, p)
	}
}

func TestDrawPolygonFills(t *testing.T) {
	c := NewScaledCanvas(20, 10, 20, 20)
	c.DrawPolygon([]Point{{2, 2}, {12, 2}, {12, 12}, {2, 12}}, true, ColorSelf)
	assert.Equal(t, ColorSelf, c.pixels[7*20+7])
	assert.Equal(t, ColorNone, c.pixels[15*20+15])
}

func TestChunkWriterAppliesOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 3)
	cw.WriteAt(1, 1, "hi")
	cw.WriteCentered(10, 2, "abcd")
	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[4;3Hhi\033[5;10Habcd", out.String())
	assert.Zero(t, cw.Len())
}

func TestChunkWriterFlushesLargeFrames(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	big := strings.Repeat("x", 3*maxChunkSize+17)
	cw.WriteString(big)
	require.NoError(t, cw.Flush())
	assert.Equal(t, big, out.String())
}

func TestFitArea(t *testing.T) {
	w, h, col, row := FitArea(200, 60, 160, 50)
	assert.Equal(t, []int{160, 50, 20, 5}, []int{w, h, col, row})

	w, h, col, row = FitArea(80, 24, 160, 50)
	assert.Equal(t, []int{80, 24, 0, 0}, []int{w, h, col, row})
}
