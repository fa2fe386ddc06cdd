package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overlayFixture struct {
	host    *fakeHost
	node    *fakeNode
	svc     *fakeService
	surface *fakeSurface
	value   *fakeValue
	sched   *queueScheduler
	overlay *Overlay
}

func newOverlayFixture(t *testing.T, opts ...Option) *overlayFixture {
	t.Helper()
	f := &overlayFixture{
		node:    newFakeNode("gallery"),
		svc:     newFakeService(),
		surface: newFakeSurface(),
		value:   &fakeValue{},
		sched:   newQueueScheduler(),
	}
	f.host = newFakeHost(f.node)
	f.node.setField(KeyDirectory, "/a")

	opts = append([]Option{WithScheduler(f.sched.schedule)}, opts...)
	o, err := New(f.host, f.node, f.svc, f.surface, f.value, opts...)
	require.NoError(t, err)
	f.overlay = o
	return f
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	node := newFakeNode("gallery")
	_, err := New(newFakeHost(node), node, newFakeService(), newFakeSurface(), nil, WithBatchSize(0))
	assert.Error(t, err)
}

func TestOverlay_RefreshAppliesListing(t *testing.T) {
	f := newOverlayFixture(t)
	f.svc.listings["/a"] = Listing{Files: []Entry{
		{Filename: "old.png", Mtime: 1},
		{Filename: "new.png", Mtime: 2, Rating: 5},
	}}

	f.overlay.Refresh()
	f.sched.runNext(t)

	assert.Equal(t, []string{"new.png", "old.png"}, f.overlay.Store().Filenames())
	assert.Equal(t, []string{"new.png", "old.png"}, f.surface.names())
	assert.Equal(t, []string{"old.png", "new.png"}, f.value.options)
	assert.Equal(t, ModeGrid, f.overlay.Renderer().Mode())
}

func TestOverlay_LatestRefreshWins(t *testing.T) {
	f := newOverlayFixture(t)
	gate := make(chan struct{})
	f.svc.gates["/a"] = gate
	f.svc.listings["/a"] = Listing{Files: entries("from-a.png")}
	f.svc.listings["/b"] = Listing{Files: entries("from-b.png")}

	f.overlay.Refresh()
	f.node.setField(KeyDirectory, "/b")
	f.overlay.Refresh()

	f.sched.runNext(t)
	require.Equal(t, []string{"from-b.png"}, f.overlay.Store().Filenames())

	close(gate)
	f.sched.runNext(t)
	assert.Equal(t, []string{"from-b.png"}, f.overlay.Store().Filenames(), "stale listing must be dropped")
	assert.ElementsMatch(t, []string{"/a", "/b"}, f.svc.listCalls())
}

func TestOverlay_FetchErrorKeepsCollection(t *testing.T) {
	f := newOverlayFixture(t)
	f.svc.listings["/a"] = Listing{Files: entries("a.png", "b.png")}
	f.overlay.Refresh()
	f.sched.runNext(t)

	f.svc.errs["/a"] = errors.New("connection refused")
	f.overlay.Refresh()
	f.sched.runNext(t)

	assert.Equal(t, 2, f.overlay.Store().Len())
	assert.Equal(t, ModeMessage, f.overlay.Renderer().Mode())
	assert.Equal(t, "Error loading files", f.surface.message)
	assert.True(t, f.overlay.Alive())
}

func TestOverlay_ListingWithoutFilesIsIgnored(t *testing.T) {
	f := newOverlayFixture(t)
	f.svc.listings["/a"] = Listing{Files: entries("a.png")}
	f.overlay.Refresh()
	f.sched.runNext(t)

	f.svc.listings["/a"] = Listing{Error: "Directory not found"}
	f.overlay.Refresh()
	f.sched.runNext(t)

	assert.Equal(t, []string{"a.png"}, f.overlay.Store().Filenames())
	assert.Equal(t, []string{"a.png"}, f.value.options)
}

func TestOverlay_ListingWithoutFilesLogsAtDebug(t *testing.T) {
	hook := logtest.NewGlobal()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.SetLevel(level)
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})

	f := newOverlayFixture(t)
	f.svc.listings["/a"] = Listing{}
	f.overlay.Refresh()
	f.sched.runNext(t)

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "listing carried no file list, keeping current files" {
			found = true
			assert.Equal(t, logrus.DebugLevel, e.Level)
		}
		assert.NotEqual(t, logrus.WarnLevel, e.Level, e.Message)
	}
	assert.True(t, found)
}

func TestOverlay_EmptyListingClears(t *testing.T) {
	f := newOverlayFixture(t)
	f.svc.listings["/a"] = Listing{Files: entries("a.png")}
	f.overlay.Refresh()
	f.sched.runNext(t)

	f.svc.listings["/a"] = Listing{Files: []Entry{}, Error: "Directory not found"}
	f.overlay.Refresh()
	f.sched.runNext(t)

	assert.Equal(t, 0, f.overlay.Store().Len())
	assert.Empty(t, f.surface.items)
}

func TestOverlay_RefreshWithoutDirectory(t *testing.T) {
	f := newOverlayFixture(t)
	f.node.setField(KeyDirectory, "")

	f.overlay.Refresh()
	assert.Empty(t, f.svc.listCalls())
}

func TestOverlay_NodeRemovedCloses(t *testing.T) {
	f := newOverlayFixture(t)
	l := NewLifecycle()
	f.overlay.Attach(l)

	l.NodeRemoved("other")
	assert.True(t, f.overlay.Alive())

	l.NodeRemoved(f.node.ID())
	assert.False(t, f.overlay.Alive())
	assert.False(t, f.overlay.Tracker().Alive())
	assert.False(t, f.surface.visible)
	assert.False(t, f.overlay.Tracker().Tick(time.Now()))

	// Closing twice is harmless.
	f.overlay.Close()
}

func TestOverlay_ResultAfterCloseIsDropped(t *testing.T) {
	f := newOverlayFixture(t)
	gate := make(chan struct{})
	f.svc.gates["/a"] = gate
	f.svc.listings["/a"] = Listing{Files: entries("a.png")}

	f.overlay.Refresh()
	f.overlay.Close()
	close(gate)
	f.sched.runNext(t)

	assert.Equal(t, 0, f.overlay.Store().Len())
	assert.Empty(t, f.surface.items)
}

func TestOverlay_DirectoryChangeRefreshes(t *testing.T) {
	f := newOverlayFixture(t)
	f.svc.listings["/a"] = Listing{Files: entries("a.png")}
	f.svc.listings["/b"] = Listing{Files: entries("b1.png", "b2.png")}
	f.overlay.Refresh()
	f.sched.runNext(t)

	now := time.Now()
	f.overlay.Tracker().Tick(now)

	f.node.setField(KeyDirectory, "/b")
	f.overlay.FieldChanged(f.node.ID(), KeyDirectory)
	f.overlay.Tracker().Tick(now.Add(16 * time.Millisecond))

	assert.Equal(t, 0, f.overlay.Store().Len(), "old files are dropped right away")
	f.sched.runNext(t)
	assert.ElementsMatch(t, []string{"b1.png", "b2.png"}, f.overlay.Store().Filenames())
	assert.Equal(t, "/b", f.overlay.Renderer().Directory())
}

func TestOverlay_ClearedDirectoryDropsInFlightListing(t *testing.T) {
	f := newOverlayFixture(t)
	gate := make(chan struct{})
	f.svc.gates["/a"] = gate
	f.svc.listings["/a"] = Listing{Files: entries("a.png")}

	now := time.Now()
	f.overlay.Refresh()
	f.overlay.Tracker().Tick(now)

	f.node.setField(KeyDirectory, "")
	f.overlay.FieldChanged(f.node.ID(), KeyDirectory)
	f.overlay.Tracker().Tick(now.Add(16 * time.Millisecond))

	close(gate)
	f.sched.runNext(t)
	assert.Equal(t, 0, f.overlay.Store().Len())
	assert.Nil(t, f.value.options)
	assert.Equal(t, ModeMessage, f.overlay.Renderer().Mode())
}

func TestOverlay_SelectionWritesBoundValue(t *testing.T) {
	f := newOverlayFixture(t)
	f.svc.listings["/a"] = Listing{Files: entries("a.png", "b.png")}
	f.overlay.Refresh()
	f.sched.runNext(t)

	f.surface.items[0].OnTap()
	assert.Equal(t, f.surface.items[0].Filename, f.value.value)
	assert.Equal(t, []string{f.surface.items[0].Filename}, f.value.callbacks)
}

func TestOverlay_CompactDependsOnProvider(t *testing.T) {
	mini := newFakeNode("mini")
	provider := newFakeNode("provider")
	other := newFakeNode("other")
	provider.setField(KeyDirectory, "/p")
	mini.link(DefaultConfigSlot, provider.ID())
	host := newFakeHost(mini, provider, other)

	o, err := New(host, mini, newFakeService(), newFakeSurface(), nil, WithVariant(VariantCompact))
	require.NoError(t, err)

	dir, ok := o.Resolver().Directory()
	require.True(t, ok)
	assert.Equal(t, "/p", dir)

	assert.True(t, o.dependsOn(provider.ID(), KeyDirectory))
	assert.True(t, o.dependsOn(provider.ID(), KeyThumbnailSize))
	assert.False(t, o.dependsOn(other.ID(), KeyDirectory))
	assert.False(t, o.dependsOn(mini.ID(), KeyDirectory))
	assert.True(t, o.dependsOn(mini.ID(), DefaultConfigSlot))

	mini.link(DefaultConfigSlot, other.ID())
	assert.True(t, o.dependsOn(other.ID(), KeyDirectory))
}

func TestOverlay_CompactWithoutProvider(t *testing.T) {
	mini := newFakeNode("mini")
	surface := newFakeSurface()
	o, err := New(newFakeHost(mini), mini, newFakeService(), surface, nil, WithVariant(VariantCompact))
	require.NoError(t, err)

	o.Renderer().Render()
	assert.Equal(t, "Connect Config Node", surface.message)
	assert.Equal(t, ModeMessage, o.Renderer().Mode())
}

func TestOverlay_StartAndCancel(t *testing.T) {
	f := newOverlayFixture(t,
		WithTickInterval(time.Hour),
		WithInitialRefreshDelay(time.Millisecond),
	)
	f.svc.listings["/a"] = Listing{Files: entries("a.png")}

	ctx, cancel := context.WithCancel(context.Background())
	f.overlay.Start(ctx)

	// Initial refresh, then its result.
	f.sched.runNext(t)
	f.sched.runNext(t)
	assert.Equal(t, []string{"a.png"}, f.overlay.Store().Filenames())

	cancel()
	f.sched.runNext(t)
	assert.False(t, f.overlay.Alive())
	assert.False(t, f.overlay.Tracker().Alive())
}
