package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// ANSI text attributes for overlays.
const (
	ColorReset      = "\033[0m"
	ColorBold       = "\033[1m"
	ColorDim        = "\033[2m"
	ColorRed        = "\033[91m"
	ColorYellow     = "\033[93m"
	ColorBrightCyan = "\033[96m"
)

// ChunkWriter accumulates a frame of terminal output and writes it in chunks
// sized for smooth network flow (e.g. over SSH). It implements io.Writer so
// Canvas.Render can write into it.
type ChunkWriter struct {
	buf    strings.Builder
	bufw   *bufio.Writer
	numBuf [20]byte
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter that writes to w. offsetCol and
// offsetRow are added to every cursor position.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		bufw:   bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the cursor offset after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// MoveCursor appends a cursor position sequence for 1-based canvas coordinates.
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(row+cw.offRow), 10))
	cw.buf.WriteByte(';')
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(col+cw.offCol), 10))
	cw.buf.WriteByte('H')
}

// Write implements io.Writer.
func (cw *ChunkWriter) Write(p []byte) (n int, err error) {
	return cw.buf.Write(p)
}

// WriteString appends a string to the frame.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf.WriteString(s)
}

// WriteAt writes s at 1-based canvas coordinates.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.buf.WriteString(s)
}

// WriteStyled writes s at 1-based canvas coordinates wrapped in an ANSI
// attribute and a reset.
func (cw *ChunkWriter) WriteStyled(col, row int, style, s string) {
	cw.MoveCursor(col, row)
	cw.buf.WriteString(style)
	cw.buf.WriteString(s)
	cw.buf.WriteString(ColorReset)
}

// WriteCentered writes s centered on column centerCol and returns the
// starting column.
func (cw *ChunkWriter) WriteCentered(centerCol, row int, s string) int {
	col := centerCol - utf8.RuneCountInString(s)/2
	cw.WriteAt(col, row, s)
	return col
}

// WriteRune appends a rune to the frame.
func (cw *ChunkWriter) WriteRune(r rune) {
	cw.buf.WriteRune(r)
}

// Len returns the number of pending bytes.
func (cw *ChunkWriter) Len() int {
	return cw.buf.Len()
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush writes the pending frame in chunks and resets the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := cw.bufw.WriteString(chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return cw.bufw.Flush()
}

// TermSizeFunc returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns the size of the terminal attached to stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen clears the terminal and moves the cursor to the top-left.
func ClearScreen(w io.Writer) {
	io.WriteString(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	io.WriteString(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	io.WriteString(w, "\033[?25h")
}

// FitArea clamps a terminal size to the maximum render area and returns the
// area size with the offsets that center it.
func FitArea(termWidth, termHeight, maxWidth, maxHeight int) (width, height, offsetCol, offsetRow int) {
	width = min(termWidth, maxWidth)
	height = min(termHeight, maxHeight)
	offsetCol = (termWidth - width) / 2
	offsetRow = (termHeight - height) / 2
	return
}
