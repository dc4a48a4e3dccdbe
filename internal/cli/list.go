package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embercove/ideavault/internal/config"
	"github.com/embercove/ideavault/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List ideas",
	Long: `List ideas, newest first. Archived ideas are hidden unless asked for.

Examples:
  ideavault list
  ideavault list --archived
  ideavault list --sync`,
	RunE: runList,
}

var (
	listArchived bool
	listSync     bool
)

func init() {
	listCmd.Flags().BoolVarP(&listArchived, "archived", "a", false, "Include archived ideas")
	listCmd.Flags().BoolVarP(&listSync, "sync", "s", false, "Sync with server before listing")
}

func runList(cmd *cobra.Command, args []string) error {
	svc, store, err := newService()
	if err != nil {
		return err
	}
	defer store.Close()

	// Replay queued actions first if asked or if a sync is due
	maybeSyncCLI(cmd, svc, listSync)

	includeArchived := listArchived
	if !cmd.Flags().Changed("archived") {
		cfg, _ := config.Load()
		if cfg != nil {
			includeArchived = cfg.ShowArchived
		}
	}

	result, err := svc.List(cmd.Context(), includeArchived)
	if err != nil {
		return fmt.Errorf("failed to list ideas: %w", err)
	}

	if len(result.Ideas) == 0 {
		fmt.Println("No ideas yet. Capture one with: ideavault add \"Your idea\"")
		return nil
	}

	header := fmt.Sprintf("💡 Ideas (%d)", len(result.Ideas))
	if result.FromCache {
		header += "  [offline, from cache]"
	}
	fmt.Println("\n" + header)
	fmt.Println(strings.Repeat("─", 60))

	for _, idea := range result.Ideas {
		printIdeaLine(idea)
	}
	fmt.Println()

	if n, err := svc.QueueLen(cmd.Context()); err == nil && n > 0 {
		fmt.Printf("⚠️  %d change(s) queued for the next sync\n\n", n)
	}

	return nil
}

func printIdeaLine(idea model.Idea) {
	marker := " "
	if idea.Archived {
		marker = "⊘"
	}

	key := idea.Key()
	if idea.ID == 0 {
		// Offline idea, not yet assigned a server ID
		if len(key) > 8 {
			key = key[:8]
		}
		key += "*"
	}

	title := idea.Title
	if len(title) > 44 {
		title = title[:41] + "..."
	}

	tags := ""
	if len(idea.Tags) > 0 {
		tags = "#" + strings.Join(idea.Tags, " #")
	}

	fmt.Printf("  %s %-9s  %-44s  %s\n", marker, key, title, tags)
}
