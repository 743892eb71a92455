package cli

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
	"github.com/sduenas/perceval-mozilla/pkg/backend/crates"
	"github.com/sduenas/perceval-mozilla/pkg/state"
)

func testCLI() *CLI {
	return New(io.Discard, log.ErrorLevel)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    backend.Category
		wantErr bool
	}{
		{"crates", backend.CategoryCrates, false},
		{"summary", backend.CategorySummary, false},
		{"", backend.CategoryCrates, false},
		{"issues", "", true},
	}

	for _, tt := range tests {
		got, err := parseCategory(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseCategory(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseCategory(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAuthHeaders(t *testing.T) {
	if h := authHeaders(""); h != nil {
		t.Errorf("expected nil headers for empty token, got %v", h)
	}
	h := authHeaders("Bearer abc123")
	if h["Authorization"] != "Bearer abc123" {
		t.Errorf("Authorization = %q", h["Authorization"])
	}
}

func TestApplyConfig_FlagsWin(t *testing.T) {
	c := testCLI()
	cmd := c.cratesCommand()
	if err := cmd.Flags().Set("sleep-time", "10s"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("tag", "from-flag"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	opts := cratesOpts{sleepTime: 10 * time.Second, tag: "from-flag"}
	var cfg Config
	cfg.SleepTime.Duration = time.Minute
	cfg.Tag = "from-config"
	cfg.Output = "items.jsonl"
	opts.applyConfig(cmd, cfg)

	if opts.sleepTime != 10*time.Second {
		t.Errorf("sleepTime = %v, flag value should win", opts.sleepTime)
	}
	if opts.tag != "from-flag" {
		t.Errorf("tag = %q, flag value should win", opts.tag)
	}
	if opts.output != "items.jsonl" {
		t.Errorf("output = %q, unset flag should take config value", opts.output)
	}
}

func TestResolveFromDate(t *testing.T) {
	c := testCLI()
	b := crates.New(crates.Options{Logger: c.Logger})
	ctx := context.Background()

	store, err := state.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	// Explicit flag value wins over everything.
	got, err := c.resolveFromDate(ctx, &cratesOpts{fromDate: "2026-01-15"}, store, b, backend.CategoryCrates)
	if err != nil {
		t.Fatalf("resolveFromDate: %v", err)
	}
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("from date = %v, want %v", got, want)
	}

	// No flag and no watermark falls back to the epoch.
	got, err = c.resolveFromDate(ctx, &cratesOpts{incremental: true}, store, b, backend.CategoryCrates)
	if err != nil {
		t.Fatalf("resolveFromDate: %v", err)
	}
	if !got.Equal(backend.DefaultDateTime) {
		t.Errorf("from date = %v, want epoch", got)
	}

	// A stored watermark is picked up in incremental mode.
	mark := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	key := state.Key(b.Origin(), string(backend.CategoryCrates))
	if err := store.Save(ctx, key, mark); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = c.resolveFromDate(ctx, &cratesOpts{incremental: true}, store, b, backend.CategoryCrates)
	if err != nil {
		t.Fatalf("resolveFromDate: %v", err)
	}
	if !got.Equal(mark) {
		t.Errorf("from date = %v, want watermark %v", got, mark)
	}

	// Without incremental the watermark is ignored.
	got, err = c.resolveFromDate(ctx, &cratesOpts{}, store, b, backend.CategoryCrates)
	if err != nil {
		t.Fatalf("resolveFromDate: %v", err)
	}
	if !got.Equal(backend.DefaultDateTime) {
		t.Errorf("from date = %v, want epoch", got)
	}

	// Malformed dates are rejected.
	if _, err := c.resolveFromDate(ctx, &cratesOpts{fromDate: "soon"}, store, b, backend.CategoryCrates); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestRootCommand(t *testing.T) {
	c := testCLI()
	root := c.RootCommand()

	var found bool
	for _, sub := range root.Commands() {
		if sub.Name() == "crates" {
			found = true
		}
	}
	if !found {
		t.Fatal("crates command not registered")
	}
}
