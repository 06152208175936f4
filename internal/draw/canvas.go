// Package draw renders a top-down view into a terminal using half-block
// characters: every terminal cell holds two vertically stacked pixels, each
// with its own palette color.
package draw

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Point is a 2D coordinate in logical canvas space.
type Point struct {
	X, Y float64
}

// Color is a palette index. ColorNone leaves a pixel empty.
type Color uint8

const (
	ColorNone Color = iota
	ColorGround
	ColorTerrain
	ColorRoad
	ColorBuilding
	ColorTower
	ColorBot
	ColorProjectile
	ColorPeer
	ColorSelf
	ColorEffect
	ColorFaded
	colorCount
)

// palette maps colors to xterm-256 indexes.
var palette = [colorCount]int{
	ColorGround:     234,
	ColorTerrain:    58,
	ColorRoad:       240,
	ColorBuilding:   67,
	ColorTower:      110,
	ColorBot:        160,
	ColorProjectile: 226,
	ColorPeer:       45,
	ColorSelf:       51,
	ColorEffect:     208,
	ColorFaded:      94,
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// cell is what one terminal cell shows. stale marks cells that must be
// rewritten on the next Render.
type cell struct {
	top, bottom Color
	stale       bool
}

// Canvas is a drawing buffer with 2x vertical resolution.
// It scales from logical coordinates to terminal pixels and only emits the
// cells that changed since the previous Render.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int
	pixels         []Color // [y * termWidth + x]
	shown          []cell  // what the terminal currently displays
	force          bool

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	// 0-based terminal offsets of the render area.
	offsetCol int
	offsetRow int

	renderBuf       strings.Builder
	numBuf          [20]byte
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewScaledCanvas creates a canvas that maps logicalWidth x logicalHeight
// onto a termWidth x termHeight character area.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	c.force = true
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping the
// logical size. A size change forces a full redraw.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 0)
	termHeight = max(termHeight, 0)
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
		c.shown = make([]cell, termHeight*termWidth)
		c.force = true
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row where the render area starts.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.force = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// Clear resets all pixels. The terminal is not touched until Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render rewrite every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.force = true
}

// MarkTextDirty flags width cells starting at the 1-based terminal position
// as overwritten by text so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, width int) {
	row--
	if row < 0 || row >= c.termHeight {
		return
	}
	for x := max(col-1, 0); x < min(col-1+width, c.termWidth); x++ {
		c.shown[row*c.termWidth+x].stale = true
	}
}

func (c *Canvas) setPixel(x, y int, color Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = color
	}
}

// Set colors the pixel at logical coordinates.
func (c *Canvas) Set(x, y float64, color Color) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)), color)
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point, color Color) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		c.setPixel(x1, y1, color)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// FillRect fills the axis-aligned rectangle spanned by two logical corners.
// Rectangles smaller than a pixel still cover at least one.
func (c *Canvas) FillRect(a, b Point, color Color) {
	x0 := int(math.Floor(math.Min(a.X, b.X) * c.scaleX))
	x1 := int(math.Ceil(math.Max(a.X, b.X)*c.scaleX)) - 1
	y0 := int(math.Floor(math.Min(a.Y, b.Y) * c.scaleY))
	y1 := int(math.Ceil(math.Max(a.Y, b.Y)*c.scaleY)) - 1
	x0 = max(x0, 0)
	y0 = max(y0, 0)
	x1 = min(max(x1, x0), c.termWidth-1)
	y1 = min(max(y1, y0), c.subPixelHeight-1)
	for y := y0; y <= y1; y++ {
		row := c.pixels[y*c.termWidth : (y+1)*c.termWidth]
		for x := x0; x <= x1; x++ {
			row[x] = color
		}
	}
}

// DrawPolygon draws a polygon outline, filling the interior when filled is set.
func (c *Canvas) DrawPolygon(points []Point, filled bool, color Color) {
	if len(points) < 3 {
		return
	}
	if filled {
		c.fillPolygon(points, color)
	}
	n := len(points)
	for i := range n {
		c.DrawLine(points[i], points[(i+1)%n], color)
	}
}

// fillPolygon is a scanline fill in pixel space.
func (c *Canvas) fillPolygon(points []Point, color Color) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]
		n := len(scaled)
		for i := range n {
			p1, p2 := scaled[i], scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections
		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			for x := int(math.Ceil(intersections[i])); x <= int(math.Floor(intersections[i+1])); x++ {
				c.setPixel(x, y, color)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for smooth SSH flow.
const maxChunkSize = 1400

// Render writes the cells that changed since the last Render.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.termHeight; row++ {
		top := c.pixels[row*2*c.termWidth:]
		bottom := c.pixels[(row*2+1)*c.termWidth:]
		shown := c.shown[row*c.termWidth:]
		for col := 0; col < c.termWidth; col++ {
			next := cell{top: top[col], bottom: bottom[col]}
			if !c.force && shown[col] == next {
				continue
			}
			shown[col] = next
			c.moveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			c.writeCell(next)
		}
	}
	c.force = false

	if c.renderBuf.Len() > 0 {
		c.renderBuf.WriteString(ColorReset)
	}
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) sgr(kind string, color Color) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.WriteString(kind)
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(palette[color]), 10))
	c.renderBuf.WriteByte('m')
}

func (c *Canvas) writeCell(v cell) {
	c.renderBuf.WriteString(ColorReset)
	switch {
	case v.top == ColorNone && v.bottom == ColorNone:
		c.renderBuf.WriteByte(' ')
	case v.top == v.bottom:
		c.sgr("38;5;", v.top)
		c.renderBuf.WriteRune(BlockFull)
	case v.bottom == ColorNone:
		c.sgr("38;5;", v.top)
		c.renderBuf.WriteRune(BlockUpperHalf)
	case v.top == ColorNone:
		c.sgr("38;5;", v.bottom)
		c.renderBuf.WriteRune(BlockLowerHalf)
	default:
		c.sgr("38;5;", v.top)
		c.sgr("48;5;", v.bottom)
		c.renderBuf.WriteRune(BlockUpperHalf)
	}
}

// RenderBorder draws a box around the render area when the terminal is
// larger than the maximum render resolution.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1
	if !hasH && !hasV {
		return
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	if hasV {
		if hasH {
			buf.WriteString("\033[" + strconv.Itoa(top) + ";" + strconv.Itoa(left) + "H┌" + line + "┐")
			buf.WriteString("\033[" + strconv.Itoa(bottom) + ";" + strconv.Itoa(left) + "H└" + line + "┘")
		} else {
			buf.WriteString("\033[" + strconv.Itoa(top) + ";" + strconv.Itoa(left+1) + "H" + line)
			buf.WriteString("\033[" + strconv.Itoa(bottom) + ";" + strconv.Itoa(left+1) + "H" + line)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row < bottom; row++ {
			r := strconv.Itoa(row)
			buf.WriteString("\033[" + r + ";" + strconv.Itoa(left) + "H│\033[" + r + ";" + strconv.Itoa(right) + "H│")
		}
	}
	io.WriteString(w, buf.String())
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 { return c.logicalWidth }

// LogicalHeight returns the logical height in sub-pixels.
func (c *Canvas) LogicalHeight() float64 { return c.logicalHeight }

// TerminalWidth returns the render area's column count.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the render area's row count.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// LogicalToTerminal converts logical coordinates to a 1-based terminal
// position inside the render area, for placing text over drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

// BorrowPoints returns a reusable slice of n points, valid until the next call.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
