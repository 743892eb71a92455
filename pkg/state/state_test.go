package state

import (
	"context"
	"testing"
	"time"
)

func TestFileStore_SaveLoad(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	key := Key("https://crates.io/", "crates")
	ts := time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC)

	if err := s.Save(ctx, key, ts); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected watermark to exist")
	}
	if !got.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, got)
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Load(context.Background(), Key("https://crates.io/", "summary"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("expected no watermark for fresh store")
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	key := Key("https://crates.io/", "crates")

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	if err := s.Save(ctx, key, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, key, second); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.Load(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(second) {
		t.Errorf("expected %v, got %v", second, got)
	}
}

func TestFileStore_KeysAreIsolated(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	if err := s.Save(ctx, Key("https://crates.io/", "crates"), ts); err != nil {
		t.Fatal(err)
	}

	_, ok, err := s.Load(ctx, Key("https://crates.io/", "summary"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("watermark leaked across categories")
	}
}

func TestKey(t *testing.T) {
	a := Key("https://crates.io/", "crates")
	b := Key("https://crates.io/", "summary")
	if a == b {
		t.Error("expected distinct keys per category")
	}
}
