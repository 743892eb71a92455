// Package cli implements the perceval-mozilla command-line interface.
//
// Each supported data source is a subcommand; currently only crates
// (crates.io) is implemented. Commands share a CLI instance carrying the
// logger, support --verbose for debug-level output, and read defaults from
// an optional TOML configuration file.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sduenas/perceval-mozilla/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "perceval-mozilla"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Harvest software development data from Mozilla ecosystem sources",
		Long:         `perceval-mozilla incrementally harvests metadata from Mozilla ecosystem data sources and emits a uniform, timestamped item stream for archival and indexing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.cratesCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// stateDir returns the watermark directory using the XDG state convention
// (~/.local/state/perceval-mozilla/).
func stateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}
