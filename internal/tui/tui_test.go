package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codefionn/rechenwerk/internal/engine"
	"github.com/codefionn/rechenwerk/internal/history"
	"github.com/codefionn/rechenwerk/internal/keypad"
)

func newTestModel(store *history.Store) *Model {
	pad := keypad.New(engine.New(engine.Config{}), nil, 0)
	m := New(pad, store, 50)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

// typeKeys feeds each rune as its own key press.
func typeKeys(m *Model, keys string) {
	for _, r := range keys {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func pressEnter(m *Model) {
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestViewBeforeFirstResize(t *testing.T) {
	pad := keypad.New(engine.New(engine.Config{}), nil, 0)
	m := New(pad, nil, 50)

	if got := m.View(); got != "\n  Initializing..." {
		t.Errorf("Expected initializing view, got %q", got)
	}
}

func TestViewShowsKeypadGrid(t *testing.T) {
	m := newTestModel(nil)

	view := m.View()
	for _, key := range []string{"7", "÷", "×", "="} {
		if !strings.Contains(view, key) {
			t.Errorf("Expected keypad key %q in view, got:\n%s", key, view)
		}
	}
}

func TestTypingShowsEntry(t *testing.T) {
	m := newTestModel(nil)
	typeKeys(m, "12.5")

	if view := m.View(); !strings.Contains(view, "12.5") {
		t.Errorf("Expected view to show entry 12.5, got:\n%s", view)
	}
}

func TestOperatorShowsGlyph(t *testing.T) {
	m := newTestModel(nil)
	typeKeys(m, "12*")

	if view := m.View(); !strings.Contains(view, "12×") {
		t.Errorf("Expected view to show total 12×, got:\n%s", view)
	}
}

func TestEvaluateShowsResult(t *testing.T) {
	m := newTestModel(nil)
	typeKeys(m, "12+5")
	pressEnter(m)

	view := m.View()
	if !strings.Contains(view, "17") {
		t.Errorf("Expected view to show result 17, got:\n%s", view)
	}
	if !strings.Contains(view, "12+5 = 17") {
		t.Errorf("Expected history line for the evaluation, got:\n%s", view)
	}
}

func TestDivisionByZeroShowsError(t *testing.T) {
	m := newTestModel(nil)
	typeKeys(m, "5/0")
	pressEnter(m)

	if view := m.View(); !strings.Contains(view, "Error") {
		t.Errorf("Expected view to show Error, got:\n%s", view)
	}
	if len(m.lines) != 0 {
		t.Errorf("Expected no history line for a failed evaluation, got %v", m.lines)
	}
}

func TestBackspaceKey(t *testing.T) {
	m := newTestModel(nil)
	typeKeys(m, "12")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	if got := m.pad.Current(); got != "1" {
		t.Errorf("Expected entry %q, got %q", "1", got)
	}
}

func TestClearKey(t *testing.T) {
	m := newTestModel(nil)
	typeKeys(m, "12+5")
	typeKeys(m, "c")

	if m.pad.Total() != "" || m.pad.Current() != "" {
		t.Errorf("Expected cleared keypad, got total=%q current=%q", m.pad.Total(), m.pad.Current())
	}
}

func TestHistoryPaneToggle(t *testing.T) {
	m := newTestModel(nil)

	if view := m.View(); !strings.Contains(view, "History") {
		t.Fatalf("Expected history pane by default, got:\n%s", view)
	}

	typeKeys(m, "h")
	if view := m.View(); strings.Contains(view, "History") {
		t.Errorf("Expected history pane hidden, got:\n%s", view)
	}

	typeKeys(m, "h")
	if view := m.View(); !strings.Contains(view, "History") {
		t.Errorf("Expected history pane back, got:\n%s", view)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Expected tea.QuitMsg, got %T", cmd())
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(nil)

	typeKeys(m, "?")
	if !m.showHelp {
		t.Fatal("Expected help overlay to open")
	}
	if view := m.View(); !strings.Contains(view, "rechenwerk") {
		t.Errorf("Expected help content, got:\n%s", view)
	}

	// Any key closes the overlay.
	typeKeys(m, "5")
	if m.showHelp {
		t.Error("Expected help overlay to close")
	}
}

func TestHistoryRestoredOnStart(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	defer store.Close()

	if _, err := store.Add(engine.Result{Expression: "2+3", Value: 5, Display: "5"}); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}

	m := newTestModel(store)
	if view := m.View(); !strings.Contains(view, "2+3 = 5") {
		t.Errorf("Expected restored history line, got:\n%s", view)
	}
}

func TestEvaluateRecordsHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	defer store.Close()

	m := newTestModel(store)
	typeKeys(m, "6*7")
	pressEnter(m)

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 history entry, got %d", count)
	}
}
