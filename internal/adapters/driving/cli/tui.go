package cli

import (
	"github.com/spf13/cobra"

	"github.com/frostholm/marginalia/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a document's comments interactively",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	return tui.Run(session, func() error { return saveDocument(session) })
}
