package gallery

import (
	"math"

	"fyne.io/fyne/v2"
)

// autoFillLayout places square cells in as many columns of at least
// minCell as fit the width, stretching the cells to use the full row.
type autoFillLayout struct {
	minCell float32
	gap     float32
	// width is the last width laid out, MinSize needs it to count rows.
	width float32
}

func newAutoFillLayout(minCell, gap float32) *autoFillLayout {
	return &autoFillLayout{minCell: minCell, gap: gap}
}

func (l *autoFillLayout) columns(width float32) int {
	cols := int((width + l.gap) / (l.minCell + l.gap))
	if cols < 1 {
		return 1
	}
	return cols
}

func (l *autoFillLayout) cellSize(width float32) float32 {
	cols := l.columns(width)
	cell := (width - l.gap*float32(cols-1)) / float32(cols)
	if cell < 0 {
		return 0
	}
	return cell
}

func (l *autoFillLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	l.width = size.Width
	cols := l.columns(size.Width)
	cell := l.cellSize(size.Width)
	step := cell + l.gap

	i := 0
	for _, o := range objects {
		if !o.Visible() {
			continue
		}
		row, col := i/cols, i%cols
		o.Move(fyne.NewPos(float32(col)*step, float32(row)*step))
		o.Resize(fyne.NewSquareSize(cell))
		i++
	}
}

func (l *autoFillLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	n := 0
	for _, o := range objects {
		if o.Visible() {
			n++
		}
	}
	if n == 0 {
		return fyne.NewSize(l.minCell, 0)
	}

	width := l.width
	if width < l.minCell {
		width = l.minCell
	}
	cols := l.columns(width)
	rows := int(math.Ceil(float64(n) / float64(cols)))
	cell := l.cellSize(width)
	return fyne.NewSize(l.minCell, float32(rows)*cell+float32(rows-1)*l.gap)
}
