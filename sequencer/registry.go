package sequencer

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// Registry holds one Allocator per sequence name. Allocators are created
// on first use and never removed.
type Registry struct {
	store SegmentStore

	allocators sync.Map
	stripes    []sync.Mutex
}

func NewRegistry(store SegmentStore, stripes int) *Registry {
	if stripes <= 0 {
		stripes = 1
	}
	return &Registry{
		store:   store,
		stripes: make([]sync.Mutex, stripes),
	}
}

// Resolve returns the allocator of name, creating it at most once.
func (r *Registry) Resolve(name string) *Allocator {
	if a, ok := r.allocators.Load(name); ok {
		return a.(*Allocator)
	}

	mu := &r.stripes[murmur3.Sum32([]byte(name))%uint32(len(r.stripes))]
	mu.Lock()
	defer mu.Unlock()

	if a, ok := r.allocators.Load(name); ok {
		return a.(*Allocator)
	}
	a := NewAllocator(name, r.store)
	r.allocators.Store(name, a)
	return a
}
