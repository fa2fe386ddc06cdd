package gallery

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Overlay is a thumbnail picker that floats over one node of a host
// canvas and follows it as the canvas is panned and zoomed.
type Overlay struct {
	opts    Options
	host    Host
	node    Node
	service Service
	value   BoundValue
	surface Surface
	linked  *LinkedSource

	resolver   *ConfigResolver
	store      *ListStore
	selection  *SelectionController
	renderer   *Renderer
	positioner *Positioner
	tracker    *Tracker

	alive      atomic.Bool
	generation atomic.Uint64

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	log *logrus.Entry
}

// New builds an overlay for node. A compact variant reads its
// configuration from the node linked to its config slot, a full one from
// the node itself.
func New(host Host, node Node, svc Service, surface Surface, value BoundValue, opts ...Option) (*Overlay, error) {
	o := &Overlay{
		opts:    defaultOptions(),
		host:    host,
		node:    node,
		service: svc,
		value:   value,
		surface: surface,
		log:     logrus.WithField("node", node.ID()),
	}
	for _, opt := range opts {
		opt(&o.opts)
	}
	if err := o.opts.validate(); err != nil {
		return nil, err
	}

	var src ConfigSource
	if o.opts.Variant == VariantCompact {
		o.linked = NewLinkedSource(host, node, o.opts.ConfigSlot)
		src = o.linked
	} else {
		src = NewLocalSource(node)
	}

	o.resolver = NewConfigResolver(src)
	o.store = NewListStore()
	o.selection = NewSelectionController(value, surface)
	o.positioner = NewPositioner(surface, o.opts.Theme.MinColumnWidth)
	o.renderer = newRenderer(o.store, surface, o.resolver, o.selection, o.opts)
	o.tracker = newTracker(host, node, o.resolver, o.positioner, o.renderer.Mode, o.opts)

	o.renderer.thumbnailSize = o.tracker.ThumbnailSize
	o.renderer.OnModeChanged = func(DisplayMode) { o.tracker.Invalidate() }
	o.store.OnChanged = o.renderer.Render
	o.tracker.OnDirectoryChanged = o.directoryChanged

	o.ctx, o.cancel = context.Background(), func() {}
	o.alive.Store(true)
	return o, nil
}

// Start runs the per frame tracker until ctx is done or the overlay is
// closed, and fetches the first listing shortly after.
func (o *Overlay) Start(ctx context.Context) {
	o.ctx, o.cancel = context.WithCancel(ctx)
	context.AfterFunc(o.ctx, func() {
		o.opts.Scheduler(o.Close)
	})

	o.renderer.Render()
	go o.tracker.Run(o.ctx)

	time.AfterFunc(o.opts.InitialRefreshDelay, func() {
		o.opts.Scheduler(func() {
			if _, ok := o.resolver.Directory(); ok {
				o.Refresh()
			}
		})
	})
}

// Attach subscribes the overlay to host lifecycle events.
func (o *Overlay) Attach(l *Lifecycle) {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
	o.unsubscribe = l.Subscribe(o)
}

// Refresh fetches the listing of the configured directory. The result
// replaces the collection when it arrives, unless a newer refresh was
// issued in the meantime or the overlay was closed.
func (o *Overlay) Refresh() {
	if !o.alive.Load() {
		return
	}
	dir, ok := o.resolver.Directory()
	if !ok {
		return
	}

	gen := o.generation.Add(1)
	ctx := o.ctx
	log := o.log.WithField("directory", dir)
	log.Debug("refreshing gallery listing")

	go func() {
		listing, err := o.service.List(ctx, dir)
		o.opts.Scheduler(func() {
			o.applyListing(gen, log, listing, err)
		})
	}()
}

func (o *Overlay) applyListing(gen uint64, log *logrus.Entry, listing Listing, err error) {
	if !o.alive.Load() {
		return
	}
	if gen != o.generation.Load() {
		log.Debug("dropping stale listing")
		return
	}
	if err != nil {
		log.WithError(err).Error("fetching gallery listing failed")
		o.renderer.ShowError(o.opts.Theme.ErrorText)
		return
	}
	if listing.Error != "" {
		log.WithField("reason", listing.Error).Warn("listing service reported a problem")
	}
	if listing.Files == nil {
		log.Debug("listing carried no file list, keeping current files")
		return
	}

	if o.value != nil {
		names := make([]string, len(listing.Files))
		for i, f := range listing.Files {
			names[i] = f.Filename
		}
		o.value.SetOptions(names)
	}
	o.store.SetEntries(listing.Files)
	log.WithField("files", len(listing.Files)).Debug("gallery listing applied")
}

func (o *Overlay) directoryChanged(dir string) {
	o.log.WithField("directory", dir).Debug("gallery directory changed")
	// a listing still in flight for the old directory must not land
	o.generation.Add(1)
	o.store.SetEntries(nil)
	if dir != "" {
		o.Refresh()
	}
}

// Close stops the overlay for good and hides its surface.
func (o *Overlay) Close() {
	if !o.alive.CompareAndSwap(true, false) {
		return
	}
	o.tracker.Stop()
	o.cancel()
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
	o.surface.WatchSentinel(0, nil)
	o.positioner.Hide()
	o.log.Debug("gallery overlay closed")
}

func (o *Overlay) Alive() bool {
	return o.alive.Load()
}

// NodeRemoved closes the overlay when its node is torn down.
func (o *Overlay) NodeRemoved(id NodeID) {
	if id == o.node.ID() {
		o.Close()
	}
}

// FieldChanged makes the next frame re-read the configuration when one of
// the fields it depends on changed.
func (o *Overlay) FieldChanged(id NodeID, field string) {
	if !o.alive.Load() || !o.dependsOn(id, field) {
		return
	}
	o.tracker.PollConfigNow()
	o.tracker.Invalidate()
}

func (o *Overlay) dependsOn(id NodeID, field string) bool {
	if field != KeyDirectory && field != KeyThumbnailSize {
		return id == o.node.ID() && field == o.opts.ConfigSlot
	}
	if o.linked == nil {
		return id == o.node.ID()
	}
	provider, ok := o.linked.provider()
	return ok && provider == id
}

func (o *Overlay) Store() *ListStore {
	return o.store
}

func (o *Overlay) Selection() *SelectionController {
	return o.selection
}

func (o *Overlay) Renderer() *Renderer {
	return o.renderer
}

func (o *Overlay) Tracker() *Tracker {
	return o.tracker
}

func (o *Overlay) Resolver() *ConfigResolver {
	return o.resolver
}
