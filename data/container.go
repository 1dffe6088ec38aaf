// Package data provides the thread-safe in-memory store behind the API:
// a read-only catalogue and the per-user cart counts.
package data

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giygas/appmetrics/interfaces"
	"github.com/giygas/appmetrics/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DefaultItems is the catalogue every new container serves
var DefaultItems = []interfaces.Item{
	{ID: 1, Name: "Item 1", Value: 100},
	{ID: 2, Name: "Item 2", Value: 200},
	{ID: 3, Name: "Item 3", Value: 300},
}

// DataContainer holds the catalogue and the carts
type DataContainer struct {
	items           atomic.Value // []interfaces.Item
	serverStartTime atomic.Value // time.Time

	mu    sync.RWMutex
	carts map[string]int
}

// NewDataContainer creates a container seeded with DefaultItems
func NewDataContainer() *DataContainer {
	dc := &DataContainer{
		carts: make(map[string]int),
	}
	dc.items.Store(slices.Clone(DefaultItems))
	dc.serverStartTime.Store(time.Now())
	return dc
}

// GetItems returns the current catalogue
func (dc *DataContainer) GetItems() []interfaces.Item {
	if v := dc.items.Load(); v != nil {
		if items, ok := v.([]interfaces.Item); ok {
			return items
		}
	}

	logging.Warn("Item catalogue is empty or invalid")
	return []interfaces.Item{}
}

// SetCart records the number of items in a user's cart
func (dc *DataContainer) SetCart(userID string, items int) {
	dc.mu.Lock()
	dc.carts[userID] = items
	dc.mu.Unlock()
}

// GetCart returns the number of items in a user's cart
func (dc *DataContainer) GetCart(userID string) (int, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	items, ok := dc.carts[userID]
	return items, ok
}

// CartCount returns the number of users with a cart
func (dc *DataContainer) CartCount() int {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return len(dc.carts)
}

func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}
