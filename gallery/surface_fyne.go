package gallery

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const sentinelHeight = 10

var sortKeys = []SortKey{SortByMtime, SortByRating, SortByFilename}

// FyneSurface is a floating panel widget that draws the gallery. Place it
// in a container without layout above the host canvas, the overlay moves
// and resizes it itself.
type FyneSurface struct {
	widget.BaseWidget
	theme  Theme
	loader *imageLoader

	bg       *canvas.Rectangle
	message  *canvas.Text
	scroll   *container.Scroll
	grid     *fyne.Container
	layout   *autoFillLayout
	sentinel *canvas.Rectangle

	sortSelect *widget.Select
	direction  *widget.Button
	controls   *fyne.Container

	mode  DisplayMode
	rect  Rect
	items map[string]*galleryItem

	sort     SortSpec
	onSort   func(SortSpec)
	updating bool

	watchMargin float64
	watch       func()
	checking    bool
}

// NewFyneSurface builds a hidden surface that loads its images from svc.
func NewFyneSurface(svc Service, th Theme) *FyneSurface {
	s := &FyneSurface{
		theme:    th,
		loader:   newImageLoader(svc),
		bg:       canvas.NewRectangle(th.Background),
		message:  canvas.NewText("", th.MessageText),
		sentinel: canvas.NewRectangle(color.Transparent),
		layout:   newAutoFillLayout(float32(th.MinColumnWidth), th.Gap),
		mode:     ModeMessage,
		items:    make(map[string]*galleryItem),
	}
	s.bg.StrokeColor = th.Border
	s.bg.StrokeWidth = 1
	s.bg.CornerRadius = th.Padding
	s.message.Alignment = fyne.TextAlignCenter
	s.sentinel.SetMinSize(fyne.NewSize(1, sentinelHeight))

	labels := make([]string, len(sortKeys))
	for i, k := range sortKeys {
		labels[i] = k.String()
	}
	s.sortSelect = widget.NewSelect(labels, s.sortKeyChanged)
	s.direction = widget.NewButton("", s.toggleDirection)
	s.controls = container.NewBorder(nil, nil, nil, s.direction, s.sortSelect)
	s.controls.Hide()

	s.grid = container.New(s.layout)
	s.scroll = container.NewVScroll(container.NewVBox(s.controls, s.grid, s.sentinel))
	s.scroll.OnScrolled = func(fyne.Position) { s.checkSentinel() }
	s.scroll.Hide()

	s.ExtendBaseWidget(s)
	s.Hide()
	return s
}

func (s *FyneSurface) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceRenderer{s: s}
}

// Close stops the image workers, the surface can not load images afterwards.
func (s *FyneSurface) Close() {
	s.loader.Close()
}

func (s *FyneSurface) SetVisible(visible bool) {
	if visible {
		s.Show()
		s.checkSentinel()
		return
	}
	s.Hide()
}

func (s *FyneSurface) SetRect(r Rect) {
	s.rect = r
	s.layout.width = float32(r.Width) - 2*s.theme.Padding
	s.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	s.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
	s.checkSentinel()
}

func (s *FyneSurface) SetMode(mode DisplayMode) {
	if s.mode == mode {
		return
	}
	s.mode = mode
	if mode == ModeGrid {
		s.message.Hide()
		s.scroll.Show()
	} else {
		s.scroll.Hide()
		s.message.Show()
	}
	s.Refresh()
	s.checkSentinel()
}

func (s *FyneSurface) SetColumnWidth(width float64) {
	cell := float32(width)
	if cell == s.layout.minCell {
		return
	}
	s.layout.minCell = cell
	s.grid.Refresh()
	s.checkSentinel()
}

func (s *FyneSurface) SetMessage(text string) {
	s.message.Text = text
	s.message.Refresh()
}

func (s *FyneSurface) SetControls(spec SortSpec, onSort func(SortSpec)) {
	s.updating = true
	defer func() { s.updating = false }()

	s.sort = spec
	s.onSort = onSort
	s.sortSelect.SetSelected(spec.Key.String())
	if spec.Ascending {
		s.direction.SetText("↑")
	} else {
		s.direction.SetText("↓")
	}
	s.controls.Show()
}

func (s *FyneSurface) sortKeyChanged(label string) {
	if s.updating || s.onSort == nil {
		return
	}
	for _, k := range sortKeys {
		if k.String() == label && k != s.sort.Key {
			s.onSort(SortSpec{Key: k, Ascending: s.sort.Ascending})
			return
		}
	}
}

func (s *FyneSurface) toggleDirection() {
	if s.onSort == nil {
		return
	}
	s.onSort(SortSpec{Key: s.sort.Key, Ascending: !s.sort.Ascending})
}

func (s *FyneSurface) Clear() {
	s.loader.Reset()
	s.items = make(map[string]*galleryItem)
	s.grid.Objects = nil
	s.grid.Refresh()
	s.scroll.ScrollToTop()
}

func (s *FyneSurface) Append(items []Item) {
	for _, it := range items {
		gi := newGalleryItem(it, s.theme)
		s.items[it.Filename] = gi
		s.grid.Objects = append(s.grid.Objects, gi)
		s.loader.Load(it.Image, func(img image.Image) {
			fyne.Do(func() { gi.setImage(img) })
		})
	}
	s.grid.Refresh()
	s.scroll.Refresh()
}

func (s *FyneSurface) SetSelected(filename string, selected bool) {
	if gi, ok := s.items[filename]; ok {
		gi.setSelected(selected)
	}
}

func (s *FyneSurface) WatchSentinel(margin float64, fn func()) {
	s.watchMargin = margin
	s.watch = fn
	s.checkSentinel()
}

// checkSentinel keeps calling the watcher while the sentinel is within
// the margin and the watcher still adds items.
func (s *FyneSurface) checkSentinel() {
	if s.checking || s.mode != ModeGrid || !s.Visible() {
		return
	}
	s.checking = true
	defer func() { s.checking = false }()

	for s.watch != nil && s.sentinelNear() {
		before := len(s.grid.Objects)
		s.watch()
		if len(s.grid.Objects) == before {
			return
		}
	}
}

func (s *FyneSurface) sentinelNear() bool {
	view := s.scroll.Size().Height
	if view <= 0 {
		view = float32(s.rect.Height) - 2*s.theme.Padding
	}
	if view <= 0 {
		return false
	}
	top := s.scroll.Content.MinSize().Height - sentinelHeight
	return float64(top) <= float64(s.scroll.Offset.Y+view)+s.watchMargin
}

type surfaceRenderer struct {
	s *FyneSurface
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	pad := r.s.theme.Padding
	r.s.bg.Resize(size)

	inner := fyne.NewSize(size.Width-2*pad, size.Height-2*pad)
	r.s.scroll.Move(fyne.NewPos(pad, pad))
	r.s.scroll.Resize(inner)

	msg := r.s.message.MinSize()
	r.s.message.Move(fyne.NewPos(pad, (size.Height-msg.Height)/2))
	r.s.message.Resize(fyne.NewSize(inner.Width, msg.Height))
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

func (r *surfaceRenderer) Refresh() {
	r.Layout(r.s.Size())
	r.s.bg.Refresh()
	r.s.message.Refresh()
	r.s.scroll.Refresh()
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.s.bg, r.s.scroll, r.s.message}
}

func (r *surfaceRenderer) Destroy() {}
