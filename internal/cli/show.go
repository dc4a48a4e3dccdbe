package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embercove/ideavault/internal/brainstorm"
)

var showCmd = &cobra.Command{
	Use:   "show [idea-id]",
	Short: "Show an idea in full",
	Long: `Show one idea with its notes, tags, links and the most recent
brainstorm, if any.

Examples:
  ideavault show 12`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	svc, store, err := newService()
	if err != nil {
		return err
	}
	defer store.Close()

	idea, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("idea not found: %s", args[0])
	}

	fmt.Printf("\n💡 %s\n", idea.Title)
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("ID:       %s\n", idea.Key())
	if idea.Archived {
		fmt.Println("Status:   ⊘ archived")
	}
	if len(idea.Tags) > 0 {
		fmt.Printf("Tags:     #%s\n", strings.Join(idea.Tags, " #"))
	}
	if !idea.CreatedAt.IsZero() {
		fmt.Printf("Captured: %s\n", idea.CreatedAt.Format("Jan 2, 2006"))
	}
	if !idea.UpdatedAt.IsZero() && !idea.UpdatedAt.Equal(idea.CreatedAt) {
		fmt.Printf("Updated:  %s\n", idea.UpdatedAt.Format("Jan 2, 2006"))
	}

	if idea.Content != "" {
		fmt.Println()
		fmt.Println(idea.Content)
	}

	if len(idea.URLs) > 0 {
		fmt.Println("\nLinks:")
		for _, u := range idea.URLs {
			fmt.Printf("  🔗 %s\n", u)
		}
	}

	if len(idea.LastBrainstorm) > 0 {
		var result brainstorm.Result
		if err := json.Unmarshal(idea.LastBrainstorm, &result); err == nil {
			fmt.Println("\n🧠 Last brainstorm:")
			printBrainstorm(&result)
		}
	}

	fmt.Println()
	return nil
}

func printBrainstorm(result *brainstorm.Result) {
	if result.Summary != "" {
		fmt.Printf("\n  %s\n", result.Summary)
	}
	printSection("Angles to explore", result.Angles)
	printSection("Questions to answer", result.Questions)
	printSection("Next steps", result.NextSteps)
}

func printSection(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n  %s:\n", title)
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}
