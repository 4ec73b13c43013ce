package tui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# rechenwerk

Type an expression with the keyboard and press enter to evaluate it.
Multiplication and division show as × and ÷ while you type.

## Keys

- **0-9 .** type digits into the entry line
- **+ - * /** move the entry into the total and append the operator
- **%** turn the entry into a percentage of the total (200+10% is 200+20)
- **s** square the entry
- **enter** or **=** evaluate
- **backspace** delete the last character
- **c** clear both lines
- **h** show or hide the history pane
- **up/down** scroll the history pane
- **q** or **esc** quit

## Notes

Division by zero and incomplete expressions show **Error** on the entry
line; typing any digit clears it. Results longer than the display width
are shortened, very large ones switch to scientific notation.
`

// renderHelp renders the help overlay, caching the result until the next
// resize.
func (m *Model) renderHelp() string {
	if m.helpView != "" {
		return m.helpView
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if rendered, rerr := renderer.Render(helpMarkdown); rerr == nil {
			m.helpView = rendered + hintStyle.Render("Press any key to return")
			return m.helpView
		}
	}

	// Fall back to the raw markdown if the renderer is unavailable.
	m.helpView = helpMarkdown
	return m.helpView
}
