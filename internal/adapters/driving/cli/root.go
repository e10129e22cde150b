// Package cli implements the marginalia command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frostholm/marginalia/internal/adapters/driven/config/file"
	"github.com/frostholm/marginalia/internal/adapters/driven/storage/memory"
	"github.com/frostholm/marginalia/internal/adapters/driven/storage/sqlite"
	"github.com/frostholm/marginalia/internal/core/ports/driven"
	"github.com/frostholm/marginalia/internal/core/services"
	"github.com/frostholm/marginalia/internal/doctree"
	"github.com/frostholm/marginalia/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Root flags.
var (
	flagFile     string
	flagStrategy string
	flagDataDir  string
	flagMemory   bool
	flagVerbose  bool
)

// configStore is initialized before any command runs.
var configStore *file.ConfigStore

var rootCmd = &cobra.Command{
	Use:   "marginalia",
	Short: "Anchor comments to rich-text documents",
	Long: `Marginalia anchors free-form comments to regions of a rich-text
document and keeps those anchors valid as the document is edited, using
one of three strategies: offset, nodePath or contentSpan.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		var err error
		configStore, err = file.NewConfigStore("")
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Document file (JSON)")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "Anchor strategy: offset, nodePath or contentSpan")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for the comment database")
	rootCmd.PersistentFlags().BoolVar(&flagMemory, "memory", false, "Use the in-memory comment store")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose diagnostics on stderr")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// strategyName returns the effective strategy: flag, then config default.
func strategyName() string {
	if flagStrategy != "" {
		return flagStrategy
	}
	return configStore.Config().DefaultStrategy
}

// openKV opens the configured comment storage backend.
func openKV() (driven.KVStore, func() error, error) {
	backend := configStore.Config().Backend
	if flagMemory {
		backend = "memory"
	}
	switch backend {
	case "memory":
		return memory.NewKVStore(), func() error { return nil }, nil
	case "sqlite", "":
		dataDir := flagDataDir
		if dataDir == "" {
			dataDir = configStore.Config().DataDir
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// openSession loads the document file and builds a session over it, with
// comments loaded and anchors restored. The returned cleanup closes the
// storage backend.
func openSession(cmd *cobra.Command) (*services.Session, func() error, error) {
	if flagFile == "" {
		return nil, nil, fmt.Errorf("no document file; use --file")
	}
	data, err := os.ReadFile(flagFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := doctree.Parse(doctree.DefaultSchema(), string(data))
	if err != nil {
		return nil, nil, err
	}

	kv, closeKV, err := openKV()
	if err != nil {
		return nil, nil, err
	}

	scope, err := documentScope(flagFile)
	if err != nil {
		closeKV()
		return nil, nil, err
	}
	session := services.NewSession(doc, kv, scope)
	if err := session.Load(cmd.Context()); err != nil {
		closeKV()
		return nil, nil, err
	}
	return session, closeKV, nil
}

// saveDocument writes the session's document back to the file, markers
// inline.
func saveDocument(session *services.Session) error {
	data, err := session.DocumentJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(flagFile, []byte(data), 0644)
}

// documentScope derives the storage namespace scope for a document file.
func documentScope(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving document path: %w", err)
	}
	return abs, nil
}
