package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/embercove/ideavault/internal/config"
	"github.com/embercove/ideavault/internal/ideas"
	"github.com/embercove/ideavault/internal/logger"
	"github.com/embercove/ideavault/internal/model"
	"github.com/embercove/ideavault/internal/sync"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddIdea
	ModeEditTitle
	ModeEditTags
	ModeFilter
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	svc  *ideas.Service
	auto *sync.AutoSync

	ideas     []model.Idea
	fromCache bool
	queued    int

	// UI state
	width        int
	height       int
	pane         Pane
	mode         Mode
	cursor       int
	showArchived bool

	// Input
	input textinput.Model

	// Filter (vim-style)
	filterText   string
	matchIndices []int // Indices of matching ideas
	matchCursor  int   // Current match for n/N navigation

	brainstorming bool
	message       string
}

// NewModel creates a new TUI model
func NewModel(svc *ideas.Service, auto *sync.AutoSync) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter idea..."
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		svc:   svc,
		auto:  auto,
		pane:  PaneList,
		mode:  ModeNormal,
		input: ti,
	}

	if cfg, err := config.Load(); err == nil {
		m.showArchived = cfg.ShowArchived
		if cfg.AutoSyncOnOpen && auto != nil {
			auto.TriggerSync()
		}
	}

	return m
}

func (m *Model) currentIdea() *model.Idea {
	if m.cursor < len(m.ideas) {
		return &m.ideas[m.cursor]
	}
	return nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.ideas) {
		m.cursor = len(m.ideas) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
