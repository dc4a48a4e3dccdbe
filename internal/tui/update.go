package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/embercove/ideavault/internal/ideas"
	"github.com/embercove/ideavault/internal/logger"
	"github.com/embercove/ideavault/internal/model"
	"github.com/embercove/ideavault/internal/sync"
)

// SyncedMsg is sent into the program when a background sync applied changes
type SyncedMsg struct {
	Result *sync.Result
}

// ideasMsg carries a fresh idea list
type ideasMsg struct {
	result ideas.ListResult
	queued int
	err    error
}

// actionMsg reports the outcome of a write operation
type actionMsg struct {
	verb   string
	queued bool
	err    error
}

// brainstormMsg reports a finished brainstorm request
type brainstormMsg struct {
	err error
}

// Init starts the initial load
func (m Model) Init() tea.Cmd {
	return m.loadIdeas()
}

func (m Model) loadIdeas() tea.Cmd {
	svc := m.svc
	showArchived := m.showArchived
	return func() tea.Msg {
		ctx := context.Background()
		result, err := svc.List(ctx, showArchived)
		queued, _ := svc.QueueLen(ctx)
		return ideasMsg{result: result, queued: queued, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ideasMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.ideas = msg.result.Ideas
		m.fromCache = msg.result.FromCache
		m.queued = msg.queued
		m.clampCursor()
		if m.filterText != "" {
			m.applyFilter()
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.message = msg.verb
		if msg.queued {
			m.message += " (offline, queued)"
		} else if m.auto != nil {
			m.auto.TriggerSync()
		}
		return m, m.loadIdeas()

	case brainstormMsg:
		m.brainstorming = false
		if msg.err != nil {
			m.message = fmt.Sprintf("Brainstorm failed: %v", msg.err)
			return m, nil
		}
		m.message = "Brainstorm saved"
		m.pane = PaneDetail
		return m, m.loadIdeas()

	case SyncedMsg:
		if msg.Result != nil {
			logger.Debug("Background sync applied",
				logger.F("replayed", msg.Result.Replayed),
				logger.F("refreshed", msg.Result.Refreshed))
			m.message = "Synced"
		}
		return m, m.loadIdeas()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddIdea, ModeEditTitle, ModeEditTags:
			return m.updateInput(msg)
		case ModeFilter:
			return m.updateFilter(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneList {
			m.pane = PaneDetail
		} else {
			m.pane = PaneList
		}

	case key.Matches(msg, keys.Left):
		m.pane = PaneList

	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Enter):
		m.pane = PaneDetail

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.ideas)-1 {
			m.cursor++
		}

	case msg.String() == "G":
		m.cursor = len(m.ideas) - 1
		m.clampCursor()

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddIdea, "", "Enter idea...")

	case key.Matches(msg, keys.Edit):
		if idea := m.currentIdea(); idea != nil {
			return m.startInput(ModeEditTitle, idea.Title, "Edit title...")
		}

	case key.Matches(msg, keys.Tags):
		if idea := m.currentIdea(); idea != nil {
			return m.startInput(ModeEditTags, strings.Join(idea.Tags, ", "), "tag, another-tag...")
		}

	case key.Matches(msg, keys.Archive):
		return m, m.toggleArchive()

	case key.Matches(msg, keys.Brainstorm):
		return m.startBrainstorm()

	case key.Matches(msg, keys.ShowAll):
		m.showArchived = !m.showArchived
		if m.showArchived {
			m.message = "Showing archived ideas"
		} else {
			m.message = "Hiding archived ideas"
		}
		return m, m.loadIdeas()

	case msg.String() == "/":
		m.mode = ModeFilter
		m.input.SetValue(m.filterText)
		m.input.Placeholder = "/"
		m.input.Focus()
		return m, textinput.Blink

	case msg.String() == "n":
		m.nextMatch(1)

	case msg.String() == "N":
		m.nextMatch(-1)

	case key.Matches(msg, keys.Escape):
		if m.filterText != "" {
			m.filterText = ""
			m.matchIndices = nil
			m.message = "Filter cleared"
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Refresh):
		if m.auto != nil {
			m.auto.TriggerSync()
			m.message = "Sync triggered"
		}
		return m, m.loadIdeas()
	}

	return m, nil
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal

		if value == "" && mode != ModeEditTags {
			return m, nil
		}

		switch mode {
		case ModeAddIdea:
			return m, m.createIdea(value)
		case ModeEditTitle:
			if idea := m.currentIdea(); idea != nil {
				updated := *idea
				updated.Title = value
				return m, m.updateIdea(updated, "Updated")
			}
		case ModeEditTags:
			if idea := m.currentIdea(); idea != nil {
				updated := *idea
				updated.Tags = model.ParseTags(value)
				return m, m.updateIdea(updated, "Tags updated")
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.filterText = ""
		m.matchIndices = nil
		return m, nil

	case key.Matches(msg, keys.Enter):
		if len(m.matchIndices) > 0 && m.matchCursor < len(m.matchIndices) {
			m.cursor = m.matchIndices[m.matchCursor]
		}
		m.mode = ModeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Live filter as user types
	m.filterText = m.input.Value()
	m.applyFilter()
	return m, cmd
}

// applyFilter matches the filter text against titles and tags
func (m *Model) applyFilter() {
	m.matchIndices = nil
	m.matchCursor = 0

	if m.filterText == "" {
		return
	}

	filter := strings.ToLower(m.filterText)
	for i, idea := range m.ideas {
		haystack := strings.ToLower(idea.Title + " " + strings.Join(idea.Tags, " "))
		if strings.Contains(haystack, filter) {
			m.matchIndices = append(m.matchIndices, i)
		}
	}
}

func (m *Model) nextMatch(dir int) {
	if len(m.matchIndices) == 0 {
		return
	}
	m.matchCursor = (m.matchCursor + dir + len(m.matchIndices)) % len(m.matchIndices)
	m.cursor = m.matchIndices[m.matchCursor]
	m.message = fmt.Sprintf("[%d/%d] matches", m.matchCursor+1, len(m.matchIndices))
}

func (m Model) createIdea(title string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, queued, err := svc.Create(context.Background(), title, "", nil, nil)
		return actionMsg{verb: fmt.Sprintf("Captured: %s", title), queued: queued, err: err}
	}
}

func (m Model) updateIdea(idea model.Idea, verb string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, queued, err := svc.Update(context.Background(), idea)
		return actionMsg{verb: verb, queued: queued, err: err}
	}
}

func (m Model) toggleArchive() tea.Cmd {
	idea := m.currentIdea()
	if idea == nil {
		return nil
	}
	svc := m.svc
	ideaKey := idea.Key()
	archive := !idea.Archived
	verb := "Archived"
	if !archive {
		verb = "Restored"
	}
	return func() tea.Msg {
		queued, err := svc.SetArchived(context.Background(), ideaKey, archive)
		return actionMsg{verb: verb, queued: queued, err: err}
	}
}

func (m Model) startBrainstorm() (tea.Model, tea.Cmd) {
	idea := m.currentIdea()
	if idea == nil {
		return m, nil
	}
	if idea.ID == 0 {
		m.message = "Sync this idea before brainstorming"
		return m, nil
	}
	if m.brainstorming {
		return m, nil
	}

	m.brainstorming = true
	m.message = "Brainstorming..."

	svc := m.svc
	ideaKey := idea.Key()
	return m, func() tea.Msg {
		_, err := svc.Brainstorm(context.Background(), ideaKey)
		return brainstormMsg{err: err}
	}
}
