package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(t *testing.T, opts ...Option) (*FileCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "cache", "statusline.json")
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewFileCache(path, opts...), clock
}

func TestGetOrRefreshComputesOnceWithinTTL(t *testing.T) {
	c, clock := newTestCache(t)
	calls := 0
	compute := func() (string, error) {
		calls++
		return fmt.Sprintf("v%d", calls), nil
	}

	first := c.GetOrRefresh("version", 60, compute)
	clock.Advance(30 * time.Second)
	second := c.GetOrRefresh("version", 60, compute)

	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}
	if first != "v1" || second != "v1" {
		t.Fatalf("got %q then %q, want v1 twice", first, second)
	}
}

func TestGetOrRefreshSurvivesProcessRestart(t *testing.T) {
	c, clock := newTestCache(t)
	c.GetOrRefresh("vcs.branch", 10, func() (string, error) { return "main", nil })

	// A second invocation opens the same store file.
	reopened := NewFileCache(c.Path(), WithClock(clock.Now))
	got := reopened.GetOrRefresh("vcs.branch", 10, func() (string, error) {
		t.Fatal("compute should not run for a fresh persisted entry")
		return "", nil
	})
	if got != "main" {
		t.Fatalf("got %q, want main", got)
	}
}

func TestGetOrRefreshRecomputesAfterTTL(t *testing.T) {
	c, clock := newTestCache(t)
	c.GetOrRefresh("marker", 5, func() (string, error) { return "py 3.11", nil })
	clock.Advance(6 * time.Second)

	got := c.GetOrRefresh("marker", 5, func() (string, error) { return "py 3.12", nil })
	if got != "py 3.12" {
		t.Fatalf("got %q, want refreshed value", got)
	}
}

func TestGetOrRefreshStaleOverEmpty(t *testing.T) {
	c, clock := newTestCache(t)
	c.GetOrRefresh("version", 5, func() (string, error) { return "1.4.0", nil })
	clock.Advance(time.Minute)

	got := c.GetOrRefresh("version", 5, func() (string, error) { return "", errors.New("exec: not found") })
	if got != "1.4.0" {
		t.Fatalf("got %q, want stale value 1.4.0", got)
	}
}

func TestGetOrRefreshFailureWithoutHistoryIsEmpty(t *testing.T) {
	c, _ := newTestCache(t)
	got := c.GetOrRefresh("version", 5, func() (string, error) { return "ignored", errors.New("timeout") })
	if got != "" {
		t.Fatalf("got %q, want empty string", got)
	}
	if _, err := os.Stat(c.Path()); !os.IsNotExist(err) {
		t.Fatalf("failed compute should not create the store, stat err = %v", err)
	}
}

func TestGetOrRefreshRecoversPanics(t *testing.T) {
	c, clock := newTestCache(t)
	c.GetOrRefresh("vcs.status", 1, func() (string, error) { return "M1", nil })
	clock.Advance(2 * time.Second)

	got := c.GetOrRefresh("vcs.status", 1, func() (string, error) { panic("nil map") })
	if got != "M1" {
		t.Fatalf("got %q, want stale M1", got)
	}
}

func TestGetOrRefreshZeroTTLAlwaysComputes(t *testing.T) {
	c, _ := newTestCache(t)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "proj", nil
	}
	c.GetOrRefresh("directory", 0, compute)
	c.GetOrRefresh("directory", 0, compute)
	if calls != 2 {
		t.Fatalf("compute called %d times, want 2", calls)
	}
}

func TestCorruptStoreIsTreatedAsEmpty(t *testing.T) {
	c, _ := newTestCache(t)
	if err := os.MkdirAll(filepath.Dir(c.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := c.GetOrRefresh("version", 60, func() (string, error) { return "2.0.0", nil })
	if got != "2.0.0" {
		t.Fatalf("got %q, want computed value", got)
	}
	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries error after rewrite: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "version" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestStoreIgnoresUnknownFields(t *testing.T) {
	c, _ := newTestCache(t)
	doc := `{"version":1,"schema":"future","entries":{"version":{"value":"3.1.0","computed_at":"2026-03-01T08:59:50Z","ttl_seconds":300,"origin":"remote"}}}`
	if err := os.MkdirAll(filepath.Dir(c.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.Path(), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	got := c.GetOrRefresh("version", 300, func() (string, error) {
		t.Fatal("fresh entry should be served")
		return "", nil
	})
	if got != "3.1.0" {
		t.Fatalf("got %q, want 3.1.0", got)
	}
}

func TestEntriesAreIndependent(t *testing.T) {
	c, clock := newTestCache(t)
	c.GetOrRefresh("a", 5, func() (string, error) { return "alpha", nil })
	c.GetOrRefresh("b", 500, func() (string, error) { return "beta", nil })
	clock.Advance(10 * time.Second)

	got := c.GetOrRefresh("b", 500, func() (string, error) {
		t.Fatal("b should still be fresh")
		return "", nil
	})
	if got != "beta" {
		t.Fatalf("got %q, want beta", got)
	}
}

func TestEvictionByAgeAndCount(t *testing.T) {
	c, clock := newTestCache(t, WithLimits(2, time.Hour))
	c.GetOrRefresh("old", 60, func() (string, error) { return "1", nil })
	clock.Advance(2 * time.Hour)
	c.GetOrRefresh("k1", 60, func() (string, error) { return "1", nil })
	clock.Advance(time.Second)
	c.GetOrRefresh("k2", 60, func() (string, error) { return "2", nil })
	clock.Advance(time.Second)
	c.GetOrRefresh("k3", 60, func() (string, error) { return "3", nil })

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	if len(keys) != 2 || keys[0] != "k2" || keys[1] != "k3" {
		t.Fatalf("keys after eviction = %v, want [k2 k3]", keys)
	}
}

func TestClearRemovesStore(t *testing.T) {
	c, _ := newTestCache(t)
	c.GetOrRefresh("a", 5, func() (string, error) { return "x", nil })
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("second Clear should be a no-op, got %v", err)
	}
	entries, err := c.Entries()
	if err != nil || len(entries) != 0 {
		t.Fatalf("Entries after clear = %v, %v", entries, err)
	}
}

func TestZeroTTLUnchangedValueSkipsWrite(t *testing.T) {
	c, clock := newTestCache(t)
	c.GetOrRefresh("directory@/work/proj", 0, func() (string, error) { return "proj", nil })

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(c.Path(), old, old); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute)

	if got := c.GetOrRefresh("directory@/work/proj", 0, func() (string, error) { return "proj", nil }); got != "proj" {
		t.Fatalf("got %q, want proj", got)
	}
	info, err := os.Stat(c.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Fatalf("store rewritten for an unchanged zero-TTL value, mtime %v", info.ModTime())
	}

	c.GetOrRefresh("directory@/work/proj", 0, func() (string, error) { return "renamed", nil })
	info, err = os.Stat(c.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.ModTime().Equal(old) {
		t.Fatal("changed zero-TTL value should be persisted")
	}
}
