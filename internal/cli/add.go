package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embercove/ideavault/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Capture a new idea",
	Long: `Capture a new idea. The title is the only required part; notes, tags
and links can be added now or later with 'ideavault edit'.

Examples:
  ideavault add "Solar-powered garden shed"
  ideavault add "Reading tracker" -c "track books across devices" -t reading,apps
  ideavault add "Kite camera" -u https://example.com/kite-rigs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addContent string
	addTags    string
	addURLs    []string
)

func init() {
	addCmd.Flags().StringVarP(&addContent, "content", "c", "", "Longer notes for the idea")
	addCmd.Flags().StringVarP(&addTags, "tags", "t", "", "Comma-separated tags")
	addCmd.Flags().StringArrayVarP(&addURLs, "url", "u", nil, "Reference URL (repeatable)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	svc, store, err := newService()
	if err != nil {
		return err
	}
	defer store.Close()

	title := strings.Join(args, " ")

	idea, queued, err := svc.Create(cmd.Context(), title, addContent, model.ParseTags(addTags), addURLs)
	if err != nil {
		return fmt.Errorf("failed to add idea: %w", err)
	}

	if queued {
		fmt.Printf("✓ Captured (offline): \"%s\"\n", idea.Title)
		fmt.Println("  Will sync to the server on the next successful sync.")
	} else {
		fmt.Printf("✓ Captured: \"%s\" (#%d)\n", idea.Title, idea.ID)
	}
	return nil
}
