package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestStore_PutAndGet(t *testing.T) {
	t.Setenv(envDisable, "")
	s := NewStore(t.TempDir(), "labels", "http://localhost:8181/rest/v2", "test@test.com")

	s.Put([]item{{ID: 1, Name: "Inbox"}, {ID: 2, Name: "Drafts"}})

	var got []item
	if !s.Get(&got) {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 || got[0].Name != "Inbox" || got[1].Name != "Drafts" {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestStore_ExpiredTTL(t *testing.T) {
	t.Setenv(envDisable, "")
	s := NewStoreWithTTL(t.TempDir(), "labels", "http://localhost", "test@test.com", time.Millisecond)

	s.Put([]string{"a"})
	time.Sleep(5 * time.Millisecond)

	var got []string
	if s.Get(&got) {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestStore_MissOnEmpty(t *testing.T) {
	s := NewStore(t.TempDir(), "labels", "http://localhost", "test@test.com")

	var got []string
	if s.Get(&got) {
		t.Fatal("expected cache miss on empty store")
	}
}

func TestStore_Disabled(t *testing.T) {
	t.Setenv(envDisable, "1")
	dir := t.TempDir()
	s := NewStore(dir, "labels", "http://localhost", "test@test.com")

	s.Put([]string{"a"})
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected nothing written, got %d files", len(entries))
	}
}

func TestStore_ScopedByServerAndAccount(t *testing.T) {
	t.Setenv(envDisable, "")
	dir := t.TempDir()
	NewStore(dir, "labels", "http://a", "test@test.com").Put([]string{"a"})

	var got []string
	if NewStore(dir, "labels", "http://b", "test@test.com").Get(&got) {
		t.Error("expected miss for another server")
	}
	if NewStore(dir, "labels", "http://a", "other@test.com").Get(&got) {
		t.Error("expected miss for another account")
	}
	if !NewStore(dir, "labels", "http://a", "TEST@test.com").Get(&got) {
		t.Error("expected account match to ignore case")
	}
}

func TestStore_Clear(t *testing.T) {
	t.Setenv(envDisable, "")
	s := NewStore(t.TempDir(), "labels", "http://localhost", "test@test.com")
	s.Put([]string{"a"})
	s.Clear()

	var got []string
	if s.Get(&got) {
		t.Fatal("expected miss after Clear")
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv(envDir, "")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir error: %v", err)
	}
	if !strings.HasSuffix(dir, "elasticinbox") {
		t.Fatalf("unexpected default cache dir: %q", dir)
	}

	t.Setenv(envDir, "/tmp/ei-cache")
	if dir, _ := DefaultDir(); dir != "/tmp/ei-cache" {
		t.Fatalf("expected override, got %q", dir)
	}
}

func TestIsCacheFilename(t *testing.T) {
	cases := map[string]bool{
		"labels_abcdef123456_0123456789ab.json": true,
		"labels_ABCDEF123456_0123456789ab.json": true,
		"_abcdef123456_0123456789ab.json":       false,
		"labels_abcdef_0123456789ab.json":       false,
		"labels_abcdef123456_zzzzzzzzzzzz.json": false,
		"labels_abcdef123456_0123456789ab.txt":  false,
		"labels_abcdef123456.json":              false,
	}
	for name, want := range cases {
		if got := isCacheFilename(name); got != want {
			t.Errorf("isCacheFilename(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestClearAll_RemovesOnlyCacheFiles(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "labels_abcdef123456_0123456789ab.json")
	keepFile := filepath.Join(dir, "README.txt")
	subdir := filepath.Join(dir, "sub")
	nested := filepath.Join(subdir, "labels_abcdef123456_0123456789ab.json")

	for _, p := range []string{cacheFile, keepFile} {
		if err := os.WriteFile(p, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(nested, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if n, err := ClearAll(dir); err != nil || n != 1 {
		t.Fatalf("ClearAll = %d, %v; want 1, nil", n, err)
	}

	if _, err := os.Stat(cacheFile); !os.IsNotExist(err) {
		t.Fatalf("expected cache file removed, stat err=%v", err)
	}
	if _, err := os.Stat(keepFile); err != nil {
		t.Fatalf("expected non-cache file kept, err=%v", err)
	}
	if _, err := os.Stat(nested); err != nil {
		t.Fatalf("expected nested file untouched, err=%v", err)
	}
}

func TestClearAll_MissingDir(t *testing.T) {
	n, err := ClearAll(filepath.Join(t.TempDir(), "absent"))
	if err != nil || n != 0 {
		t.Fatalf("ClearAll = %d, %v; want 0, nil", n, err)
	}
}
