package service

import (
	"context"
	"testing"
)

func TestCacheService_DisabledWithoutURL(t *testing.T) {
	cache := NewCacheService("")
	ctx := context.Background()

	if cache.Client() != nil {
		t.Errorf("disabled cache has a live client")
	}

	// Every operation is a no-op and nothing panics.
	cache.SetCount(ctx, "urn:li:activity:1", 5)
	if count, ok := cache.GetCount(ctx, "urn:li:activity:1"); ok || count != 0 {
		t.Errorf("GetCount on disabled cache = (%d, %v), want (0, false)", count, ok)
	}
	cache.Invalidate(ctx, "urn:li:activity:1")

	if err := cache.Close(); err != nil {
		t.Errorf("Close on disabled cache: %v", err)
	}
}

func TestCacheService_DisabledOnBadURL(t *testing.T) {
	cache := NewCacheService("not a redis url")

	if cache.Client() != nil {
		t.Errorf("cache with unparseable URL has a live client")
	}
	if count, ok := cache.GetCount(context.Background(), "urn:li:activity:2"); ok || count != 0 {
		t.Errorf("GetCount = (%d, %v), want (0, false)", count, ok)
	}
}
