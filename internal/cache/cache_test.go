package cache

import (
	"path/filepath"
	"testing"
)

func open(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "build.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLookupMissesOnEmptyCache(t *testing.T) {
	c := open(t)
	_, found, err := c.Lookup(Hash("source"))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatal("expected a miss on an empty cache")
	}
}

func TestStoreThenLookupRoundTrips(t *testing.T) {
	c := open(t)
	hash := Hash("@public\ndef main() -> int:\n    return 1\n")
	script := []byte{0x21, 0x40, 0x1b}

	if err := c.Store(hash, "main.py", script); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, found, err := c.Lookup(hash)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found {
		t.Fatal("expected a hit after storing")
	}
	if string(got) != string(script) {
		t.Fatalf("expected cached script %v, got %v", script, got)
	}
}

func TestStoreOverwritesPreviousEntryForSameHash(t *testing.T) {
	c := open(t)
	hash := Hash("same source")

	if err := c.Store(hash, "a.py", []byte{0x01}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := c.Store(hash, "a.py", []byte{0x02, 0x03}); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, _, err := c.Lookup(hash)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 2 || got[0] != 0x02 || got[1] != 0x03 {
		t.Fatalf("expected the second store to win, got %v", got)
	}
}

func TestHashIsStableForIdenticalSource(t *testing.T) {
	if Hash("same") != Hash("same") {
		t.Fatal("expected Hash to be deterministic for identical input")
	}
	if Hash("a") == Hash("b") {
		t.Fatal("expected distinct sources to hash differently")
	}
}
