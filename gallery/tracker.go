package gallery

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

// Change thresholds below which a new snapshot counts as unchanged.
const (
	scaleEpsilon    = 0.001
	offsetEpsilon   = 0.1
	geometryEpsilon = 1

	minVisibleScale = 0.1
)

// Snapshot is the state one tick of the tracker observed.
type Snapshot struct {
	Scale   float64
	OffsetX float64
	OffsetY float64

	NodeX      float64
	NodeY      float64
	NodeWidth  float64
	NodeHeight float64

	Collapsed  bool
	Hidden     bool
	TabVisible bool

	ThumbnailSize int
}

// changed reports whether s differs from prev by more than the thresholds.
func (s Snapshot) changed(prev Snapshot) bool {
	return math.Abs(s.Scale-prev.Scale) > scaleEpsilon ||
		math.Abs(s.OffsetX-prev.OffsetX) > offsetEpsilon ||
		math.Abs(s.OffsetY-prev.OffsetY) > offsetEpsilon ||
		math.Abs(s.NodeX-prev.NodeX) > geometryEpsilon ||
		math.Abs(s.NodeY-prev.NodeY) > geometryEpsilon ||
		math.Abs(s.NodeWidth-prev.NodeWidth) > geometryEpsilon ||
		math.Abs(s.NodeHeight-prev.NodeHeight) > geometryEpsilon ||
		s.Collapsed != prev.Collapsed ||
		s.Hidden != prev.Hidden ||
		s.TabVisible != prev.TabVisible ||
		s.ThumbnailSize != prev.ThumbnailSize
}

// screenBounds maps the node's canvas rectangle to the screen.
func (s Snapshot) screenBounds() Rect {
	return Rect{
		X:      (s.NodeX + s.OffsetX) * s.Scale,
		Y:      (s.NodeY + s.OffsetY) * s.Scale,
		Width:  s.NodeWidth * s.Scale,
		Height: s.NodeHeight * s.Scale,
	}
}

// visibility holds every condition that hides the overlay.
type visibility struct {
	TabVisible    bool
	InActiveGraph bool
	Collapsed     bool
	Hidden        bool
	OffScreen     bool
	Scale         float64
}

func (v visibility) visible() bool {
	return v.TabVisible &&
		v.InActiveGraph &&
		!v.Collapsed &&
		!v.Hidden &&
		!v.OffScreen &&
		v.Scale >= minVisibleScale
}

// offScreen reports whether r misses the [0,0]x[width,height] viewport.
func offScreen(r Rect, width, height float64) bool {
	return r.X+r.Width < 0 ||
		r.Y+r.Height < 0 ||
		r.X > width ||
		r.Y > height
}

// galleryRect cuts the gallery area out of the node's screen rectangle.
// It returns false when the result is too small to draw.
func galleryRect(node Rect, scale float64, variant Variant) (Rect, bool) {
	top := variant.ContentOffset() * scale
	r := Rect{
		X:      node.X + sideMargin*scale,
		Y:      node.Y + top,
		Width:  math.Max(0, node.Width-2*sideMargin*scale),
		Height: math.Max(0, node.Height-top-bottomMargin*scale),
	}
	if r.Width < minOverlayEdge || r.Height < minOverlayEdge {
		return Rect{}, false
	}
	return r, true
}

// Tracker is the per frame driver of an overlay. It polls the host, and
// recomputes the overlay only when something observable changed.
type Tracker struct {
	host       Host
	node       Node
	resolver   *ConfigResolver
	positioner *Positioner
	variant    Variant
	mode       func() DisplayMode

	interval time.Duration
	sizePoll time.Duration
	schedule Scheduler

	alive atomic.Bool

	last      Snapshot
	hasLast   bool
	thumbSize int
	lastPoll  time.Time
	directory string

	// OnDirectoryChanged is called from the slow poll when the resolved directory changed.
	OnDirectoryChanged func(dir string)
}

func newTracker(host Host, node Node, resolver *ConfigResolver, positioner *Positioner, mode func() DisplayMode, opts Options) *Tracker {
	t := &Tracker{
		host:       host,
		node:       node,
		resolver:   resolver,
		positioner: positioner,
		variant:    opts.Variant,
		mode:       mode,
		interval:   opts.TickInterval,
		sizePoll:   opts.SizePollInterval,
		schedule:   opts.Scheduler,
		thumbSize:  defaultThumbnailSize,
	}
	t.directory, _ = resolver.Directory()
	t.alive.Store(true)
	return t
}

// Run schedules a tick every interval until ctx is done or Stop is called.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !t.alive.Load() {
				return
			}
			t.schedule(func() {
				t.Tick(now)
			})
		}
	}
}

// Stop ends the tracker for good.
func (t *Tracker) Stop() {
	t.alive.Store(false)
}

func (t *Tracker) Alive() bool {
	return t.alive.Load()
}

// Invalidate forces the next tick to recompute.
func (t *Tracker) Invalidate() {
	t.hasLast = false
}

// PollConfigNow makes the next tick re-read the configuration.
func (t *Tracker) PollConfigNow() {
	t.lastPoll = time.Time{}
}

// ThumbnailSize is the last polled thumbnail size.
func (t *Tracker) ThumbnailSize() int {
	return t.thumbSize
}

// Tick runs one frame. It reports whether the overlay was recomputed.
func (t *Tracker) Tick(now time.Time) bool {
	if !t.alive.Load() {
		return false
	}

	tab := t.host.TabVisible()
	inGraph := t.node.InActiveGraph()
	if tab && !inGraph {
		t.positioner.Hide()
		t.hasLast = false
		return false
	}

	if t.lastPoll.IsZero() || now.Sub(t.lastPoll) >= t.sizePoll {
		t.lastPoll = now
		t.pollConfig()
	}

	cam := t.host.Camera()
	x, y, w, h := t.node.Bounds()
	flags := t.node.Flags()

	snap := Snapshot{
		Scale:         cam.Scale,
		OffsetX:       cam.OffsetX,
		OffsetY:       cam.OffsetY,
		NodeX:         x,
		NodeY:         y,
		NodeWidth:     w,
		NodeHeight:    h,
		Collapsed:     flags.Collapsed,
		Hidden:        flags.Hidden,
		TabVisible:    tab,
		ThumbnailSize: t.thumbSize,
	}
	if t.hasLast && !snap.changed(t.last) {
		return false
	}
	t.last = snap
	t.hasLast = true

	t.layout(snap, inGraph)
	return true
}

func (t *Tracker) layout(snap Snapshot, inGraph bool) {
	screen := snap.screenBounds()
	vw, vh := t.host.ViewportSize()

	v := visibility{
		TabVisible:    snap.TabVisible,
		InActiveGraph: inGraph,
		Collapsed:     snap.Collapsed,
		Hidden:        snap.Hidden,
		OffScreen:     offScreen(screen, vw, vh),
		Scale:         snap.Scale,
	}
	if !v.visible() {
		t.positioner.Hide()
		return
	}

	rect, ok := galleryRect(screen, snap.Scale, t.variant)
	if !ok {
		t.positioner.Hide()
		return
	}
	t.positioner.Apply(rect, true, t.mode(), float64(snap.ThumbnailSize)*snap.Scale)
}

func (t *Tracker) pollConfig() {
	t.thumbSize = t.resolver.ThumbnailSize()

	dir, _ := t.resolver.Directory()
	if dir == t.directory {
		return
	}
	t.directory = dir
	if t.OnDirectoryChanged != nil {
		t.OnDirectoryChanged(dir)
	}
}
