package smbclient

import (
	"net/netip"
	"testing"
	"time"
)

func testResolution(addr string) Resolution {
	return Resolution{Address: netip.MustParseAddr(addr), Host: "srv", Method: MethodNetBIOS}
}

func TestResolutionCache_GetPut(t *testing.T) {
	cache := newResolutionCache(time.Minute, 10)

	if _, ok := cache.get("srv", ""); ok {
		t.Error("Expected cache miss, got hit")
	}

	cache.put("srv", "", testResolution("10.0.0.1"))
	res, ok := cache.get("SRV", "")
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if res.Address != netip.MustParseAddr("10.0.0.1") {
		t.Errorf("cached address = %v", res.Address)
	}

	if _, ok := cache.get("srv", "corp"); ok {
		t.Error("domain must be part of the key")
	}
}

func TestResolutionCache_Expiration(t *testing.T) {
	cache := newResolutionCache(100*time.Millisecond, 10)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.put("srv", "", testResolution("10.0.0.1"))
	now = now.Add(50 * time.Millisecond)
	if _, ok := cache.get("srv", ""); !ok {
		t.Error("Expected cache hit before expiration")
	}

	now = now.Add(100 * time.Millisecond)
	if _, ok := cache.get("srv", ""); ok {
		t.Error("Expected cache miss after expiration, got hit")
	}
	if cache.len() != 0 {
		t.Errorf("expired entry kept: len = %d", cache.len())
	}
}

func TestResolutionCache_Eviction(t *testing.T) {
	cache := newResolutionCache(time.Minute, 3)

	cache.put("a", "", testResolution("10.0.0.1"))
	cache.put("b", "", testResolution("10.0.0.2"))
	cache.put("c", "", testResolution("10.0.0.3"))

	// Touch a so that b becomes least recently used.
	cache.get("a", "")
	cache.put("d", "", testResolution("10.0.0.4"))

	if cache.len() != 3 {
		t.Errorf("len = %d, want 3", cache.len())
	}
	if _, ok := cache.get("b", ""); ok {
		t.Error("least recently used entry was not evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := cache.get(k, ""); !ok {
			t.Errorf("entry %s evicted", k)
		}
	}
}

func TestResolutionCache_InvalidateAll(t *testing.T) {
	cache := newResolutionCache(time.Minute, 10)
	cache.put("a", "", testResolution("10.0.0.1"))
	cache.put("b", "", testResolution("10.0.0.2"))

	cache.invalidateAll()
	if cache.len() != 0 {
		t.Errorf("len = %d after invalidateAll", cache.len())
	}
	if _, ok := cache.get("a", ""); ok {
		t.Error("Expected cache miss after invalidateAll")
	}
}

func TestResolutionCache_Disabled(t *testing.T) {
	cache := newResolutionCache(0, 10)
	if cache != nil {
		t.Fatal("zero TTL should disable the cache")
	}

	// A nil cache is usable and never hits.
	cache.put("a", "", testResolution("10.0.0.1"))
	if _, ok := cache.get("a", ""); ok {
		t.Error("disabled cache returned a hit")
	}
	cache.invalidateAll()
	if cache.len() != 0 {
		t.Error("disabled cache reports entries")
	}
}
