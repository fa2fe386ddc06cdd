package gallery

// Variant selects between the full gallery node and the compact one that
// takes its configuration from a linked provider node.
type Variant int

const (
	// VariantFull reads its configuration from the node's own fields
	VariantFull Variant = iota
	// VariantCompact reads its configuration from the node linked to its config slot
	VariantCompact
)

// DisplayMode is what the overlay currently shows.
type DisplayMode int

const (
	// ModeGrid shows the thumbnail grid
	ModeGrid DisplayMode = iota
	// ModeMessage shows a centered placeholder or error text
	ModeMessage
)

const (
	// KeyDirectory is the config field holding the source directory.
	KeyDirectory = "directory"
	// KeyThumbnailSize is the config field holding the thumbnail edge in pixels.
	KeyThumbnailSize = "thumbnail_size"
	// DefaultConfigSlot is the input slot a compact gallery follows to its provider.
	DefaultConfigSlot = "gallery_config"

	defaultThumbnailSize = 100
	defaultBatchSize     = 50
	defaultSentinelGap   = 200

	// Screen units below which the overlay is hidden rather than drawn.
	minOverlayEdge = 10
	// Margin inside the node, in canvas units, on the sides and bottom.
	sideMargin   = 10
	bottomMargin = 10
	// Thumbnails are requested larger than shown for high density displays.
	requestScale = 1.5
)

// ContentOffset is how far below the node's top edge the gallery starts,
// in canvas units. The compact node has fewer widgets above the gallery.
func (v Variant) ContentOffset() float64 {
	if v == VariantCompact {
		return 120
	}
	return 240
}

// DefaultSize is the node size a host should give a freshly created gallery node.
func (v Variant) DefaultSize() (width, height float64) {
	if v == VariantCompact {
		return 300, 400
	}
	return 400, 600
}

// NodeID identifies a node within the host graph.
type NodeID string

// Camera is the host canvas pan/zoom transform.
type Camera struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NodeFlags are the display flags of a node.
type NodeFlags struct {
	Collapsed bool
	Hidden    bool
}

// Rect is an axis aligned rectangle in screen units.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Host is the graph canvas the overlay is drawn on top of.
type Host interface {
	Camera() Camera
	ViewportSize() (width, height float64)
	TabVisible() bool
	NodeByID(id NodeID) (Node, bool)
}

// Node is a node of the host graph.
type Node interface {
	ID() NodeID
	Bounds() (x, y, width, height float64)
	Flags() NodeFlags
	// InActiveGraph reports whether the node belongs to the graph currently shown.
	InActiveGraph() bool
	// Field returns the current value of one of the node's own fields.
	Field(name string) (any, bool)
	// InputLink returns the node connected to the named input slot.
	InputLink(slot string) (NodeID, bool)
}

// BoundValue is the external "selected image" value the gallery writes to.
type BoundValue interface {
	Value() string
	SetValue(filename string)
	// Callback is invoked after a selection, it may be nil.
	Callback() func(filename string)
	// SetOptions replaces the list of selectable values.
	SetOptions(values []string)
}

// ImageRef points at one image of a directory. Size is the requested edge
// in pixels, zero asks for the unscaled image.
type ImageRef struct {
	Directory string
	Filename  string
	Size      int
}

// Item is one visual unit of the grid.
type Item struct {
	Filename string
	Image    ImageRef
	// Badge is the rating text, empty when the entry has no rating.
	Badge    string
	Selected bool
	OnTap    func()
}

// Surface is the floating panel the overlay draws into.
type Surface interface {
	SetVisible(visible bool)
	SetRect(r Rect)
	SetMode(mode DisplayMode)
	SetColumnWidth(width float64)
	SetMessage(text string)
	// SetControls shows the sort controls for spec, onSort is called on user changes.
	SetControls(spec SortSpec, onSort func(SortSpec))
	// Clear removes every item.
	Clear()
	// Append adds items before the sentinel, which stays the last child.
	Append(items []Item)
	SetSelected(filename string, selected bool)
	// WatchSentinel calls fn whenever the sentinel comes within margin of
	// the visible region. A nil fn stops watching.
	WatchSentinel(margin float64, fn func())
}

// Scheduler runs fn on the goroutine that owns the overlay state.
type Scheduler func(fn func())

func immediate(fn func()) {
	fn()
}
