package memory

import (
	"testing"
	"time"

	"ai-research-assistant-be/pkg/store"
)

func TestRunCacheRoundTrip(t *testing.T) {
	c := NewRunCache(time.Minute)

	run := &store.CachedRun{
		Key:        "user-1|what is pgvector",
		Answer:     "an extension",
		Confidence: 0.85,
	}
	c.Save(run)

	got, found := c.Get(run.Key)
	if !found {
		t.Fatal("expected a cache hit")
	}
	if got.Answer != run.Answer || got.Confidence != run.Confidence {
		t.Errorf("cached run mutated: %+v", got)
	}

	if _, found := c.Get("user-2|what is pgvector"); found {
		t.Error("cache keys must be scoped per user")
	}
}

func TestRunCacheDelete(t *testing.T) {
	c := NewRunCache(time.Minute)
	c.Save(&store.CachedRun{Key: "k"})
	c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("expected deleted entry to miss")
	}
}

func TestRunCacheExpiry(t *testing.T) {
	c := NewRunCache(20 * time.Millisecond)
	c.Save(&store.CachedRun{Key: "k"})

	time.Sleep(50 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("expected entry to expire")
	}
}
