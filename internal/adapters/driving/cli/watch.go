package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate anchors whenever the document file changes",
	Long: `Watches the document file and, on every external write, reloads it,
restores all anchors against the new tree and reports which comments still
attach. Useful while the document is being edited by another tool.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if flagFile == "" {
		return fmt.Errorf("no document file; use --file")
	}

	if err := reportAnchors(cmd); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file on save.
	if err := watcher.Add(filepath.Dir(flagFile)); err != nil {
		return fmt.Errorf("watching %s: %w", flagFile, err)
	}
	target, err := filepath.Abs(flagFile)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", flagFile)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cmd.Printf("\n%s changed\n", flagFile)
			if err := reportAnchors(cmd); err != nil {
				logger.Warn("watch: %v", err)
				cmd.Printf("  document unreadable: %v\n", err)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", werr)
		}
	}
}

// reportAnchors loads a fresh session and prints each comment's
// attachment state against the current document.
func reportAnchors(cmd *cobra.Command) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	for _, strategy := range domain.AnchorTypes() {
		for _, c := range session.Comments(strategy) {
			if span, err := session.ResolveAnchor(c.ID); err == nil {
				cmd.Printf("  %s %s attached [%d, %d)\n", strategy, c.ID, span.From, span.To)
			} else {
				cmd.Printf("  %s %s UNATTACHED\n", strategy, c.ID)
			}
		}
	}
	return nil
}
