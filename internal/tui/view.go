package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/embercove/ideavault/internal/brainstorm"
	"github.com/embercove/ideavault/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	list := m.renderList()
	detail := m.renderDetail()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)

	// Add modal if in input mode
	if m.mode == ModeAddIdea || m.mode == ModeEditTitle || m.mode == ModeEditTags {
		modal := m.renderModal()
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			modal,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) listWidth() int {
	w := m.width * 2 / 5
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) renderList() string {
	width := m.listWidth()
	var s string

	header := fmt.Sprintf("💡 Ideas (%d)", len(m.ideas))
	if m.fromCache {
		header += "  offline"
	}
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(header) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width-4)) + "\n\n"

	if len(m.ideas) == 0 {
		s += HelpStyle.Render("  No ideas. Press 'a' to capture one.")
	}

	for i, idea := range m.ideas {
		cursor := "  "
		style := IdeaItemStyle
		if i == m.cursor && m.pane == PaneList {
			cursor = "❯ "
			style = IdeaItemSelectedStyle
		}

		// Highlight filter matches
		for _, idx := range m.matchIndices {
			if idx == i && i != m.cursor {
				style = lipgloss.NewStyle().Foreground(Highlight)
			}
		}

		if idea.Archived {
			style = IdeaArchivedStyle
		}

		marker := " "
		if idea.ID == 0 {
			marker = "∙" // not yet synced
		}
		if idea.Archived {
			marker = "⊘"
		}

		line := fmt.Sprintf("%s%s %s", cursor, marker, truncate(idea.Title, width-10))
		s += style.Render(line) + "\n"
	}

	return ListStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderDetail() string {
	width := m.width - m.listWidth() - 2
	idea := m.currentIdea()
	if idea == nil {
		return DetailStyle.Width(width).Height(m.height - 2).Render(
			HelpStyle.Render("Select an idea to see its details."))
	}

	var s string
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(idea.Title) + "\n"

	meta := idea.Key()
	if idea.ID == 0 {
		meta = "not yet synced"
	}
	if idea.Archived {
		meta += "  ⊘ archived"
	}
	s += HelpStyle.Render(meta) + "\n"

	if len(idea.Tags) > 0 {
		s += TagStyle.Render("#"+strings.Join(idea.Tags, " #")) + "\n"
	}
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width-6)) + "\n\n"

	if idea.Content != "" {
		s += wrap(idea.Content, width-8) + "\n\n"
	}

	if len(idea.URLs) > 0 {
		for _, u := range idea.URLs {
			s += "🔗 " + truncate(u, width-10) + "\n"
		}
		s += "\n"
	}

	s += m.renderBrainstorm(idea, width)

	return DetailStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderBrainstorm(idea *model.Idea, width int) string {
	if m.brainstorming {
		return HelpStyle.Render("🧠 Brainstorming...")
	}
	if len(idea.LastBrainstorm) == 0 {
		return HelpStyle.Render("Press 'b' to brainstorm this idea.")
	}

	var result brainstorm.Result
	if err := json.Unmarshal(idea.LastBrainstorm, &result); err != nil {
		return ""
	}

	var s string
	s += lipgloss.NewStyle().Bold(true).Render("🧠 Brainstorm") + "\n"
	if result.Summary != "" {
		s += wrap(result.Summary, width-8) + "\n"
	}
	s += renderBrainstormSection("Angles", result.Angles, width)
	s += renderBrainstormSection("Questions", result.Questions, width)
	s += renderBrainstormSection("Next steps", result.NextSteps, width)
	return s
}

func renderBrainstormSection(title string, items []string, width int) string {
	if len(items) == 0 {
		return ""
	}
	s := "\n" + lipgloss.NewStyle().Foreground(Primary).Render(title) + "\n"
	for _, item := range items {
		s += " • " + truncate(item, width-10) + "\n"
	}
	return s
}

func (m Model) renderStatusBar() string {
	// When in filter mode, show inline search input (like vim)
	if m.mode == ModeFilter {
		matches := ""
		if len(m.matchIndices) > 0 {
			matches = fmt.Sprintf(" [%d/%d]", m.matchCursor+1, len(m.matchIndices))
		} else if m.filterText != "" {
			matches = " [no match]"
		}
		return StatusBarStyle.Width(m.width).Render("/" + m.input.View() + matches)
	}

	help := "/:search  a:add  e:edit  t:tags  x:archive  b:brainstorm  ?:help  q:quit"
	if m.filterText != "" {
		if len(m.matchIndices) > 0 {
			help = fmt.Sprintf("/%s  [%d/%d matches]  n:next  N:prev  Esc:clear",
				m.filterText, m.matchCursor+1, len(m.matchIndices))
		} else {
			help = fmt.Sprintf("/%s  [no matches]  Esc:clear", m.filterText)
		}
	} else if m.message != "" {
		help = m.message
	}

	// Right-aligned sync status
	syncMsg := ""
	if m.queued > 0 {
		syncMsg = fmt.Sprintf("↑%d queued", m.queued)
	}
	if m.auto != nil && m.auto.IsPending() {
		syncMsg = "Syncing..."
	}

	if syncMsg != "" {
		avail := m.width - len(help) - len(syncMsg) - 2
		if avail > 0 {
			help += strings.Repeat(" ", avail) + syncMsg
		} else {
			help += " " + syncMsg
		}
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	title := "Capture Idea"
	switch m.mode {
	case ModeEditTitle:
		title = "Edit Title"
	case ModeEditTags:
		title = "Edit Tags (comma-separated)"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  h/l    Switch pane      │
│  Tab    Switch pane      │
│  G      Go to bottom     │
│                          │
│  Actions                 │
│  ───────                 │
│  a       Add idea        │
│  e       Edit title      │
│  t       Edit tags       │
│  x       Archive/restore │
│  b       Brainstorm      │
│  A       Show archived   │
│  R       Sync now        │
│                          │
│  Other                   │
│  ─────                   │
│  /       Search          │
│  ?       Toggle help     │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}

// wrap breaks text into lines no longer than width
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(paragraph) {
			if line == "" {
				line = word
			} else if len(line)+1+len(word) <= width {
				line += " " + word
			} else {
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
