package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/image-buffer-mcp/internal/imaging"
)

// Registry maps handle ids to image handles so MCP clients can refer to
// images across tool calls.
//
// Every registered id owns one imaging.Image. Two ids may share a pixel
// buffer (see image_share); releasing an id releases only its own
// reference.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*imaging.Image
}

// NewRegistry creates and initializes a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]*imaging.Image),
	}
}

// Add registers img under a new random id and returns the id.
func (r *Registry) Add(img *imaging.Image) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.handles[id] = img
	r.mu.Unlock()
	return id
}

// Get returns the handle registered under id.
func (r *Registry) Get(id string) (*imaging.Image, error) {
	r.mu.RLock()
	img, ok := r.handles[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown image handle: %q", id)
	}
	return img, nil
}

// Release clears the handle registered under id and forgets the id.
// It reports whether the id was registered.
func (r *Registry) Release(id string) bool {
	r.mu.Lock()
	img, ok := r.handles[id]
	delete(r.handles, id)
	r.mu.Unlock()

	if ok {
		img.Clear()
	}
	return ok
}

// Clear releases every handle.
func (r *Registry) Clear() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*imaging.Image)
	r.mu.Unlock()

	for _, img := range handles {
		img.Clear()
	}
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
