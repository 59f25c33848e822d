package window

import "sync"

// registry associates native window handles with the Handler that receives
// their events. Entries are non-owning: they are added once the native window
// exists and removed before it is destroyed.
type registry[K comparable] struct {
	mu       sync.Mutex
	handlers map[K]Handler
}

func newRegistry[K comparable]() *registry[K] {
	return &registry[K]{handlers: make(map[K]Handler)}
}

func (r *registry[K]) attach(key K, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = h
}

func (r *registry[K]) detach(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, key)
}

// lookup returns false for handles that have no handler yet, such as
// messages sent while the native window is still being created.
func (r *registry[K]) lookup(key K) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[key]
	return h, ok && h != nil
}

func (r *registry[K]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
