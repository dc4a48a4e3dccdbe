package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embercove/ideavault/internal/config"
	"github.com/embercove/ideavault/internal/model"
)

var editCmd = &cobra.Command{
	Use:   "edit [idea-id]",
	Short: "Edit an idea",
	Long: `Edit an idea's title, notes, tags or links. Without flags, the notes
open in your editor ($EDITOR or the configured one).

Examples:
  ideavault edit 12
  ideavault edit 12 --title "Better name"
  ideavault edit 12 -t home,energy -u https://example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle   string
	editContent string
	editTags    string
	editURLs    []string
)

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "Replace the notes")
	editCmd.Flags().StringVarP(&editTags, "tags", "t", "", "Replace tags (comma-separated)")
	editCmd.Flags().StringArrayVarP(&editURLs, "url", "u", nil, "Replace reference URLs (repeatable)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	svc, store, err := newService()
	if err != nil {
		return err
	}
	defer store.Close()

	idea, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("idea not found: %s", args[0])
	}

	changed := false
	if cmd.Flags().Changed("title") {
		idea.Title = editTitle
		changed = true
	}
	if cmd.Flags().Changed("content") {
		idea.Content = editContent
		changed = true
	}
	if cmd.Flags().Changed("tags") {
		idea.Tags = model.ParseTags(editTags)
		changed = true
	}
	if cmd.Flags().Changed("url") {
		idea.URLs = editURLs
		changed = true
	}

	// No flags: open the notes in an editor
	if !changed {
		content, err := editInEditor(idea.Content)
		if err != nil {
			return err
		}
		if content == idea.Content {
			fmt.Println("No changes.")
			return nil
		}
		idea.Content = content
	}

	updated, queued, err := svc.Update(cmd.Context(), idea)
	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}

	if queued {
		fmt.Printf("✓ Updated (offline): \"%s\"\n", updated.Title)
	} else {
		fmt.Printf("✓ Updated: \"%s\"\n", updated.Title)
	}
	return nil
}

// editInEditor round-trips text through the user's editor
func editInEditor(text string) (string, error) {
	editor := os.Getenv("EDITOR")
	if cfg, err := config.Load(); err == nil && cfg.Editor != "" {
		editor = cfg.Editor
	}
	if editor == "" {
		editor = "vi"
	}

	tmp, err := os.CreateTemp("", "ideavault-*.md")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return "", err
	}
	tmp.Close()

	c := exec.Command(editor, tmp.Name())
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("editor failed: %w", err)
	}

	edited, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(edited), "\n"), nil
}
