package reconcile

import (
	"context"
	"sync"

	"github.com/cbodonnell/skirmish/client/resources"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

type fakeShip struct {
	lock      sync.Mutex
	id        string
	snapshot  messages.ShipSnapshot
	key       string
	applies   int
	destroyed bool
}

func (s *fakeShip) Apply(snapshot messages.ShipSnapshot, key string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.snapshot = snapshot
	s.key = key
	s.applies++
}

func (s *fakeShip) position() kinematic.Vector {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.snapshot.Physics.Position
}

func (s *fakeShip) Size() (float64, float64) { return 64, 48 }

func (s *fakeShip) Destroy() { s.destroyed = true }

type fakeShipFactory struct {
	lock    sync.Mutex
	created []*fakeShip
}

func (f *fakeShipFactory) NewShip(id string, snapshot messages.ShipSnapshot, key string) ShipObject {
	f.lock.Lock()
	defer f.lock.Unlock()
	s := &fakeShip{id: id, snapshot: snapshot, key: key}
	f.created = append(f.created, s)
	return s
}

func (f *fakeShipFactory) count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.created)
}

func (f *fakeShipFactory) createdIDs() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	ids := make([]string, 0, len(f.created))
	for _, s := range f.created {
		ids = append(ids, s.id)
	}
	return ids
}

type keyResolver struct{}

func (keyResolver) Resolve(ctx context.Context, url string) string {
	return resources.KeyFor(url)
}

// gatedResolver blocks every resolution until release is closed or the
// caller's context is done. With ignoreCancel set only release unblocks it.
type gatedResolver struct {
	lock         sync.Mutex
	requested    []string
	started      chan string
	release      chan struct{}
	ignoreCancel bool
}

func newGatedResolver() *gatedResolver {
	return &gatedResolver{
		started: make(chan string, 64),
		release: make(chan struct{}),
	}
}

func (r *gatedResolver) Resolve(ctx context.Context, url string) string {
	r.lock.Lock()
	r.requested = append(r.requested, url)
	r.lock.Unlock()
	r.started <- url
	if r.ignoreCancel {
		<-r.release
		return resources.KeyFor(url)
	}
	select {
	case <-r.release:
		return resources.KeyFor(url)
	case <-ctx.Done():
		return resources.FallbackKey
	}
}

func (r *gatedResolver) requests() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.requested...)
}

type fakeHUD struct {
	lock    sync.Mutex
	entries map[string]messages.ShipSnapshot
}

func newFakeHUD() *fakeHUD {
	return &fakeHUD{entries: make(map[string]messages.ShipSnapshot)}
}

func (h *fakeHUD) Upsert(id string, snapshot messages.ShipSnapshot, width, height float64) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.entries[id] = snapshot
}

func (h *fakeHUD) Remove(id string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.entries, id)
}

func (h *fakeHUD) len() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.entries)
}

// urlGatedResolver blocks only the URLs in gated until release is closed.
type urlGatedResolver struct {
	gated   map[string]bool
	started chan string
	release chan struct{}
}

func newURLGatedResolver(urls ...string) *urlGatedResolver {
	r := &urlGatedResolver{
		gated:   make(map[string]bool),
		started: make(chan string, 64),
		release: make(chan struct{}),
	}
	for _, url := range urls {
		r.gated[url] = true
	}
	return r
}

func (r *urlGatedResolver) Resolve(ctx context.Context, url string) string {
	if !r.gated[url] {
		return resources.KeyFor(url)
	}
	r.started <- url
	select {
	case <-r.release:
		return resources.KeyFor(url)
	case <-ctx.Done():
		return resources.FallbackKey
	}
}
