// Package iocache provides durable storage for cached API responses and
// fetch-run history.
package iocache

import (
	"sync"

	"github.com/repotally/repotally/internal/contract"
)

// StoreManagerImpl manages the response cache and runs store instances.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.ResponseCache
	runs         contract.RunsStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetResponseCache returns the response cache store.
func (mgr *StoreManagerImpl) GetResponseCache() contract.ResponseCache {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetRunsStore returns the runs store.
func (mgr *StoreManagerImpl) GetRunsStore() contract.RunsStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
