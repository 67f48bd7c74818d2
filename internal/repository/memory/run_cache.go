package memory

import (
	"time"

	"ai-research-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// RunCache keeps recently served pipeline outcomes in memory. A hit lets the
// assistant answer an identical question without re-running the pipeline.
type RunCache struct {
	cache *cache.Cache
}

func NewRunCache(ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RunCache{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *RunCache) Save(run *store.CachedRun) {
	r.cache.Set(run.Key, run, cache.DefaultExpiration)
}

func (r *RunCache) Get(key string) (*store.CachedRun, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(*store.CachedRun), true
	}
	return nil, false
}

func (r *RunCache) Delete(key string) {
	r.cache.Delete(key)
}
