package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var brainstormCmd = &cobra.Command{
	Use:   "brainstorm [idea-id]",
	Short: "Brainstorm an idea with AI",
	Long: `Ask the AI to develop an idea: a short take on it, angles worth
exploring, questions to answer and concrete next steps. The result is
saved on the idea and shown by 'ideavault show'.

Requires a connection to the server.

Examples:
  ideavault brainstorm 12`,
	Args: cobra.ExactArgs(1),
	RunE: runBrainstorm,
}

func runBrainstorm(cmd *cobra.Command, args []string) error {
	svc, store, err := newService()
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Println("🧠 Brainstorming...")

	result, err := svc.Brainstorm(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("brainstorm failed: %w", err)
	}

	printBrainstorm(result)
	fmt.Println()
	return nil
}
