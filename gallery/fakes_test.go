package gallery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeSurface struct {
	visible      bool
	visibleCalls int
	rect         Rect
	rectCalls    int
	mode         DisplayMode
	modeCalls    int
	column       float64
	columnCalls  int
	message      string
	controls     SortSpec
	onSort       func(SortSpec)
	items        []Item
	selected     map[string]bool
	clears       int
	watchMargin  float64
	watch        func()
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{selected: make(map[string]bool)}
}

func (s *fakeSurface) SetVisible(v bool) {
	s.visible = v
	s.visibleCalls++
}

func (s *fakeSurface) SetRect(r Rect) {
	s.rect = r
	s.rectCalls++
}

func (s *fakeSurface) SetMode(m DisplayMode) {
	s.mode = m
	s.modeCalls++
}

func (s *fakeSurface) SetColumnWidth(w float64) {
	s.column = w
	s.columnCalls++
}

func (s *fakeSurface) SetMessage(text string) { s.message = text }

func (s *fakeSurface) SetControls(spec SortSpec, onSort func(SortSpec)) {
	s.controls = spec
	s.onSort = onSort
}

func (s *fakeSurface) Clear() {
	s.items = nil
	s.clears++
}

func (s *fakeSurface) Append(items []Item) {
	s.items = append(s.items, items...)
	for _, it := range items {
		s.selected[it.Filename] = it.Selected
	}
}

func (s *fakeSurface) SetSelected(filename string, selected bool) {
	s.selected[filename] = selected
}

func (s *fakeSurface) WatchSentinel(margin float64, fn func()) {
	s.watchMargin = margin
	s.watch = fn
}

// scrollToSentinel behaves like the user scrolling the sentinel into view once.
func (s *fakeSurface) scrollToSentinel() {
	if s.watch != nil {
		s.watch()
	}
}

func (s *fakeSurface) names() []string {
	names := make([]string, len(s.items))
	for i, it := range s.items {
		names[i] = it.Filename
	}
	return names
}

func (s *fakeSurface) selectedNames() []string {
	var names []string
	for _, it := range s.items {
		if s.selected[it.Filename] {
			names = append(names, it.Filename)
		}
	}
	return names
}

type fakeNode struct {
	mu      sync.Mutex
	id      NodeID
	x, y    float64
	w, h    float64
	flags   NodeFlags
	inGraph bool
	fields  map[string]any
	links   map[string]NodeID
}

func newFakeNode(id NodeID) *fakeNode {
	return &fakeNode{
		id:      id,
		w:       400,
		h:       600,
		inGraph: true,
		fields:  make(map[string]any),
		links:   make(map[string]NodeID),
	}
}

func (n *fakeNode) ID() NodeID { return n.id }

func (n *fakeNode) Bounds() (float64, float64, float64, float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.x, n.y, n.w, n.h
}

func (n *fakeNode) Flags() NodeFlags     { return n.flags }
func (n *fakeNode) InActiveGraph() bool { return n.inGraph }

func (n *fakeNode) Field(name string) (any, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.fields[name]
	return v, ok
}

func (n *fakeNode) setField(name string, v any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fields[name] = v
}

func (n *fakeNode) InputLink(slot string) (NodeID, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, ok := n.links[slot]
	return id, ok
}

func (n *fakeNode) link(slot string, id NodeID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links[slot] = id
}

func (n *fakeNode) unlink(slot string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.links, slot)
}

type fakeHost struct {
	camera Camera
	vw, vh float64
	tab    bool
	nodes  map[NodeID]Node
}

func newFakeHost(nodes ...Node) *fakeHost {
	h := &fakeHost{
		camera: Camera{Scale: 1},
		vw:     1920,
		vh:     1080,
		tab:    true,
		nodes:  make(map[NodeID]Node),
	}
	for _, n := range nodes {
		h.nodes[n.ID()] = n
	}
	return h
}

func (h *fakeHost) Camera() Camera                  { return h.camera }
func (h *fakeHost) ViewportSize() (float64, float64) { return h.vw, h.vh }
func (h *fakeHost) TabVisible() bool                { return h.tab }

func (h *fakeHost) NodeByID(id NodeID) (Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

type fakeValue struct {
	value     string
	options   []string
	callbacks []string
}

func (v *fakeValue) Value() string         { return v.value }
func (v *fakeValue) SetValue(name string)  { v.value = name }
func (v *fakeValue) SetOptions(o []string) { v.options = o }

func (v *fakeValue) Callback() func(string) {
	return func(name string) { v.callbacks = append(v.callbacks, name) }
}

// fakeService answers listings from a map keyed by directory. A directory
// with a gate blocks until the gate is closed.
type fakeService struct {
	mu       sync.Mutex
	listings map[string]Listing
	errs     map[string]error
	gates    map[string]chan struct{}
	calls    []string
	images   map[string][]byte
	delay    time.Duration
}

func newFakeService() *fakeService {
	return &fakeService{
		listings: make(map[string]Listing),
		errs:     make(map[string]error),
		gates:    make(map[string]chan struct{}),
		images:   make(map[string][]byte),
	}
}

func (s *fakeService) List(ctx context.Context, dir string) (Listing, error) {
	s.mu.Lock()
	s.calls = append(s.calls, dir)
	gate := s.gates[dir]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Listing{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[dir]; err != nil {
		return Listing{}, err
	}
	return s.listings[dir], nil
}

func (s *fakeService) Thumbnail(_ context.Context, dir, name string, size int) ([]byte, error) {
	return s.image(dir, name)
}

func (s *fakeService) FullImage(_ context.Context, dir, name string) ([]byte, error) {
	return s.image(dir, name)
}

func (s *fakeService) image(dir, name string) ([]byte, error) {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.images[dir+"/"+name]
	if !ok {
		return nil, fmt.Errorf("no image %s/%s", dir, name)
	}
	return data, nil
}

func (s *fakeService) listCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// queueScheduler collects scheduled work until the test runs it.
type queueScheduler struct {
	ch chan func()
}

func newQueueScheduler() *queueScheduler {
	return &queueScheduler{ch: make(chan func(), 64)}
}

func (q *queueScheduler) schedule(fn func()) {
	q.ch <- fn
}

// runNext waits for one piece of scheduled work and runs it.
func (q *queueScheduler) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q.ch:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scheduled work")
	}
}

func entries(names ...string) []Entry {
	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = Entry{Filename: n, Mtime: float64(i)}
	}
	return out
}

func numbered(n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{Filename: fmt.Sprintf("img%03d.png", i), Mtime: float64(i)}
	}
	return out
}
