package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/embercove/ideavault/internal/config"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [idea-id]",
	Aliases: []string{"rm"},
	Short:   "Permanently delete an idea",
	Long: `Permanently delete an idea from the server and the local cache.
This cannot be undone; archive is usually what you want.

Examples:
  ideavault delete 12
  ideavault rm 12 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, store, err := newService()
	if err != nil {
		return err
	}
	defer store.Close()

	idea, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("idea not found: %s", args[0])
	}

	cfg, _ := config.Load() // Ignore error, use defaults
	if cfg != nil && cfg.ConfirmDelete && !deleteForce {
		fmt.Printf("About to permanently delete: \"%s\"\n", idea.Title)
		fmt.Print("Are you sure? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := svc.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}

	fmt.Printf("🗑️  Deleted: \"%s\"\n", idea.Title)
	return nil
}
