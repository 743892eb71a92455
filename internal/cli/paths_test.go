package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStateDir(t *testing.T) {
	// Clear XDG_STATE_HOME to test default behavior
	oldXdg := os.Getenv("XDG_STATE_HOME")
	os.Unsetenv("XDG_STATE_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_STATE_HOME", oldXdg)
		}
	}()

	dir, err := stateDir()
	if err != nil {
		t.Fatalf("stateDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".local", "state", appName)
	if dir != expected {
		t.Errorf("stateDir() = %q, want %q", dir, expected)
	}

	if !strings.HasSuffix(dir, appName) {
		t.Errorf("stateDir() = %q, should end with %q", dir, appName)
	}
}

func TestStateDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	dir, err := stateDir()
	if err != nil {
		t.Fatalf("stateDir() error: %v", err)
	}

	expected := filepath.Join("/tmp/xdg-state", appName)
	if dir != expected {
		t.Errorf("stateDir() = %q, want %q", dir, expected)
	}
}
