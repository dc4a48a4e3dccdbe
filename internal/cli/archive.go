package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [idea-id]",
	Short: "Archive an idea",
	Long: `Archive an idea. Archived ideas disappear from the default list but
are never lost; unarchive brings them back.

Examples:
  ideavault archive 12`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive(true),
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive [idea-id]",
	Short: "Restore an archived idea",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchive(false),
}

func runArchive(archived bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, store, err := newService()
		if err != nil {
			return err
		}
		defer store.Close()

		queued, err := svc.SetArchived(cmd.Context(), args[0], archived)
		if err != nil {
			return fmt.Errorf("failed to update idea: %w", err)
		}

		suffix := ""
		if queued {
			suffix = " (offline, will sync)"
		}
		if archived {
			fmt.Printf("⊘ Archived: %s%s\n", args[0], suffix)
		} else {
			fmt.Printf("✓ Restored: %s%s\n", args[0], suffix)
		}
		return nil
	}
}
