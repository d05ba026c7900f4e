package store

import (
	"sync"

	"storefront/internal/repository"
)

// Scope names the part of the state a Change touched.
type Scope string

const (
	ScopeStoreConfig Scope = "store_config"
	ScopeCategories  Scope = "categories"
	ScopeProducts    Scope = "products"
	ScopeCart        Scope = "cart"
	ScopeState       Scope = "state"
)

// Change tells a watcher that part of the state was mutated. Watchers read
// the new state through the container.
type Change struct {
	Scope Scope `json:"scope"`
}

const watchBuffer = 32

// Watch registers a watcher. Changes are dropped for a watcher whose buffer
// is full. The returned function unregisters it and closes the channel; the
// channel is also closed by Close.
func (c *Container) Watch() (<-chan Change, func()) {
	ch := make(chan Change, watchBuffer)

	c.watchMu.Lock()
	if c.watchDone {
		c.watchMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextWatch
	c.nextWatch++
	c.watchers[id] = ch
	c.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.watchMu.Lock()
			defer c.watchMu.Unlock()
			if w, ok := c.watchers[id]; ok {
				delete(c.watchers, id)
				close(w)
			}
		})
	}
}

func (c *Container) notify(scopes ...Scope) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	for _, s := range scopes {
		for _, ch := range c.watchers {
			select {
			case ch <- Change{Scope: s}:
			default:
			}
		}
	}
}

func (c *Container) closeWatchers() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	c.watchDone = true
	for id, ch := range c.watchers {
		delete(c.watchers, id)
		close(ch)
	}
}

func scopeOf(table repository.Table) Scope {
	return Scope(table)
}
