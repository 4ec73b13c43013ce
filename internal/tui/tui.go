// Package tui is the interactive terminal calculator: a keypad-driven
// display line, a scrollable pane of past evaluations and a markdown help
// overlay.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/codefionn/rechenwerk/internal/history"
	"github.com/codefionn/rechenwerk/internal/keypad"
	"github.com/codefionn/rechenwerk/internal/logger"
)

const (
	defaultPaneWidth = 40
	minHistoryHeight = 3
	maxDisplayWidth  = 60
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginLeft(2)

	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			MarginLeft(2)

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	entryStyle = lipgloss.NewStyle().
			Bold(true)

	errorEntryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	historyTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true).
				MarginLeft(2)

	historyLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				MarginLeft(2)

	keypadStyle = lipgloss.NewStyle().
			MarginLeft(2)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			MarginRight(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(2)
)

// keyRows is the fixed key grid shown below the display. The keys are
// informational; input stays on the keyboard.
var keyRows = [][]string{
	{"7", "8", "9", "÷"},
	{"4", "5", "6", "×"},
	{"1", "2", "3", "-"},
	{"0", ".", "%", "+"},
	{"c", "s", "⌫", "="},
}

// Model drives the calculator screen. All state changes happen on the
// bubbletea update loop.
type Model struct {
	pad         *keypad.Keypad
	store       *history.Store
	viewport    viewport.Model
	lines       []string
	ready       bool
	width       int
	height      int
	showHistory bool
	showHelp    bool
	helpView    string
	quitting    bool
}

// New creates the calculator model. store may be nil when history is
// disabled; historyLimit caps how many stored entries are shown on start.
func New(pad *keypad.Keypad, store *history.Store, historyLimit int) *Model {
	m := &Model{
		pad:         pad,
		store:       store,
		viewport:    viewport.New(defaultPaneWidth, 10),
		showHistory: true,
	}

	m.loadHistory(historyLimit)
	return m
}

// loadHistory seeds the pane with persisted entries, oldest at the top.
func (m *Model) loadHistory(limit int) {
	if m.store == nil {
		return
	}

	entries, err := m.store.Recent(limit)
	if err != nil {
		logger.Warn("Failed to load history: %v", err)
		return
	}

	for i := len(entries) - 1; i >= 0; i-- {
		m.lines = append(m.lines, formatEntry(entries[i].Expression, entries[i].Display))
	}
	m.refreshViewport()
}

func formatEntry(expression, display string) string {
	return fmt.Sprintf("%s = %s", expression, display)
}

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		fd := int(os.Stdout.Fd())
		if !term.IsTerminal(fd) {
			return nil
		}
		if width, height, err := term.GetSize(fd); err == nil && width > 0 && height > 0 {
			return tea.WindowSizeMsg{
				Width:  width,
				Height: height,
			}
		}
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.applyWindowSize(msg.Width, msg.Height)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.showHelp {
		if key == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		// Any other key returns to the calculator.
		m.showHelp = false
		return m, nil
	}

	switch key {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "enter", "=":
		m.evaluate()

	case "+", "-", "*", "/":
		m.pad.PressOperator(key[0])

	case "%":
		m.pad.PressPercent()

	case "s":
		m.pad.PressSquare()

	case "c":
		m.pad.Clear()

	case "backspace":
		m.pad.Backspace()

	case "h":
		m.showHistory = !m.showHistory

	case "?":
		m.showHelp = true

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	default:
		if len(key) == 1 && (key[0] == '.' || (key[0] >= '0' && key[0] <= '9')) {
			m.pad.PressDigit(rune(key[0]))
		}
	}

	return m, nil
}

// evaluate runs the keypad buffers through the engine and records the
// outcome. Failed evaluations show as "Error" on the entry line and are
// not added to the history.
func (m *Model) evaluate() {
	res, ok := m.pad.Evaluate()
	if !ok {
		return
	}

	m.lines = append(m.lines, formatEntry(res.Expression, res.Display))
	m.refreshViewport()

	if m.store != nil {
		if _, err := m.store.Add(res); err != nil {
			logger.Warn("Failed to record history entry: %v", err)
		}
	}
}

func (m *Model) applyWindowSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	m.width = width
	m.height = height

	// Title, display box, key grid, history heading, hints and blank lines.
	historyHeight := height - 16
	if historyHeight < minHistoryHeight {
		historyHeight = minHistoryHeight
	}

	m.viewport.Width = width - 4
	m.viewport.Height = historyHeight

	// Help is rendered per width; drop the cached copy.
	m.helpView = ""
	m.ready = true

	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = defaultPaneWidth
	}

	var rendered strings.Builder
	for i, line := range m.lines {
		if i > 0 {
			rendered.WriteString("\n")
		}
		rendered.WriteString(historyLineStyle.Render(wordwrap.String(line, width)))
	}

	shouldScroll := m.viewport.AtBottom()
	m.viewport.SetContent(rendered.String())
	if shouldScroll {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("rechenwerk"))
	sb.WriteString("\n\n")

	sb.WriteString(m.renderDisplay())
	sb.WriteString("\n\n")

	sb.WriteString(m.renderKeypad())
	sb.WriteString("\n\n")

	if m.showHistory {
		sb.WriteString(historyTitleStyle.Render("History"))
		sb.WriteString("\n")
		sb.WriteString(m.viewport.View())
		sb.WriteString("\n\n")
	}

	sb.WriteString(hintStyle.Render("enter evaluate, h history, ? help, q quit"))

	return sb.String()
}

// renderKeypad draws the key grid row by row.
func (m *Model) renderKeypad() string {
	var sb strings.Builder
	for i, row := range keyRows {
		if i > 0 {
			sb.WriteString("\n")
		}
		cells := make([]string, len(row))
		for j, key := range row {
			cells[j] = keyStyle.Render(key)
		}
		sb.WriteString(keypadStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...)))
	}
	return sb.String()
}

// renderDisplay draws the two-line calculator display: the accumulated
// total above the current entry, both right-aligned.
func (m *Model) renderDisplay() string {
	width := m.displayWidth()

	entry := m.pad.Current()
	style := entryStyle
	if entry == keypad.ErrorDisplay {
		style = errorEntryStyle
	}

	content := totalStyle.Width(width).Align(lipgloss.Right).Render(m.pad.Total()) +
		"\n" +
		style.Width(width).Align(lipgloss.Right).Render(entry)

	return displayStyle.Render(content)
}

func (m *Model) displayWidth() int {
	width := m.width - 8
	if width < 20 {
		width = 20
	}
	if width > maxDisplayWidth {
		width = maxDisplayWidth
	}
	return width
}
