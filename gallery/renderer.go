package gallery

import (
	"fmt"
	"math"
)

// Renderer materializes the store's entries into the surface in fixed
// size batches, growing the rendered prefix as the user scrolls toward
// the sentinel.
type Renderer struct {
	store     *ListStore
	surface   Surface
	resolver  *ConfigResolver
	selection *SelectionController

	batchSize  int
	margin     float64
	fullImages bool
	noDirText  string

	// thumbnailSize reports the last polled thumbnail size.
	thumbnailSize func() int

	rendered int
	dir      string
	mode     DisplayMode

	// OnModeChanged is called when the renderer switches between grid and message.
	OnModeChanged func(DisplayMode)
}

func newRenderer(store *ListStore, surface Surface, resolver *ConfigResolver, selection *SelectionController, opts Options) *Renderer {
	noDir := opts.Theme.NoDirectoryText
	if opts.Variant == VariantCompact {
		noDir = opts.Theme.NoProviderText
	}
	return &Renderer{
		store:         store,
		surface:       surface,
		resolver:      resolver,
		selection:     selection,
		batchSize:     opts.BatchSize,
		margin:        opts.SentinelMargin,
		fullImages:    opts.FullImages,
		noDirText:     noDir,
		thumbnailSize: func() int { return defaultThumbnailSize },
		mode:          ModeMessage,
	}
}

// Render discards everything on the surface and renders the first batch.
func (r *Renderer) Render() {
	r.surface.WatchSentinel(0, nil)
	r.surface.Clear()
	r.rendered = 0

	dir, ok := r.resolver.Directory()
	if !ok {
		r.dir = ""
		r.surface.SetMessage(r.noDirText)
		r.setMode(ModeMessage)
		return
	}

	r.dir = dir
	r.surface.SetMessage("")
	r.surface.SetControls(r.store.Sort(), r.store.SetSort)
	r.setMode(ModeGrid)

	r.appendBatch()
	if r.rendered < r.store.Len() {
		r.surface.WatchSentinel(r.margin, r.LoadMore)
	}
}

// LoadMore appends the next batch. It is the sentinel proximity callback.
func (r *Renderer) LoadMore() {
	if r.mode != ModeGrid {
		return
	}
	if r.rendered < r.store.Len() {
		r.appendBatch()
	}
	if r.rendered >= r.store.Len() {
		r.surface.WatchSentinel(0, nil)
	}
}

// ShowError replaces the content with text, leaving the collection untouched.
func (r *Renderer) ShowError(text string) {
	r.surface.WatchSentinel(0, nil)
	r.surface.Clear()
	r.rendered = 0
	r.surface.SetMessage(text)
	r.setMode(ModeMessage)
}

func (r *Renderer) RenderedCount() int {
	return r.rendered
}

func (r *Renderer) Mode() DisplayMode {
	return r.mode
}

// Directory is the directory the current content was rendered from.
func (r *Renderer) Directory() string {
	return r.dir
}

func (r *Renderer) setMode(mode DisplayMode) {
	if r.mode == mode {
		return
	}
	r.mode = mode
	if r.OnModeChanged != nil {
		r.OnModeChanged(mode)
	}
}

func (r *Renderer) appendBatch() {
	limit := min(r.rendered+r.batchSize, r.store.Len())
	if limit <= r.rendered {
		return
	}

	size := 0
	if !r.fullImages {
		size = int(math.Ceil(float64(r.thumbnailSize()) * requestScale))
	}

	items := make([]Item, 0, limit-r.rendered)
	for i := r.rendered; i < limit; i++ {
		e := r.store.At(i)
		items = append(items, r.item(e, size))
	}
	r.surface.Append(items)
	r.rendered = limit
}

func (r *Renderer) item(e Entry, size int) Item {
	filename := e.Filename
	it := Item{
		Filename: filename,
		Image:    ImageRef{Directory: r.dir, Filename: filename, Size: size},
		Selected: r.selection.IsSelected(filename),
		OnTap:    func() { r.selection.Select(filename) },
	}
	if e.Rating > 0 {
		it.Badge = ratingBadge(e.Rating)
	}
	return it
}

func ratingBadge(rating float64) string {
	return fmt.Sprintf("★ %.1f", rating)
}
