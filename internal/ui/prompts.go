package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// selectModel is a single or multi choice list.
type selectModel struct {
	question  string
	choices   []Choice
	multi     bool
	cursor    int
	selected  map[int]bool
	done      bool
	cancelled bool
}

func newSelectModel(question string, choices []Choice, multi bool) selectModel {
	return selectModel{
		question: question,
		choices:  choices,
		multi:    multi,
		selected: map[int]bool{},
	}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case " ", "space", "x":
		if m.multi {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case "enter":
		if m.multi && len(m.values()) == 0 {
			m.selected[m.cursor] = true
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// values returns the chosen values in list order.
func (m selectModel) values() []string {
	if !m.multi {
		if len(m.choices) == 0 {
			return nil
		}
		return []string{m.choices[m.cursor].Value}
	}
	var out []string
	for i, c := range m.choices {
		if m.selected[i] {
			out = append(out, c.Value)
		}
	}
	return out
}

func (m selectModel) labels() []string {
	values := m.values()
	var out []string
	for _, c := range m.choices {
		for _, v := range values {
			if c.Value == v {
				out = append(out, c.Label)
			}
		}
	}
	return out
}

func (m selectModel) View() string {
	var b strings.Builder
	b.WriteString(questionStyle.Render("? "+m.question) + "\n")
	if m.done {
		b.WriteString(dimStyle.Render("  "+strings.Join(m.labels(), ", ")) + "\n")
		return b.String()
	}
	if m.cancelled {
		return b.String()
	}

	for i, c := range m.choices {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := ""
		if m.multi {
			box = "[ ] "
			if m.selected[i] {
				box = "[x] "
			}
		}
		line := cursor + box + c.Label
		if c.Description != "" {
			line += dimStyle.Render(" - " + c.Description)
		}
		b.WriteString(line + "\n")
	}

	hint := "↑/↓ move • enter select • esc cancel"
	if m.multi {
		hint = "↑/↓ move • space toggle • enter confirm • esc cancel"
	}
	b.WriteString(dimStyle.Render(hint) + "\n")
	return b.String()
}

// textModel reads one line of free text.
type textModel struct {
	prompt    string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newTextModel(prompt string) textModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()
	return textModel{prompt: prompt, input: ti}
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textModel) View() string {
	header := ""
	if m.prompt != "" {
		header = questionStyle.Render("? "+m.prompt) + "\n"
	}
	if m.done {
		return header + dimStyle.Render("  "+m.input.Value()) + "\n"
	}
	if m.cancelled {
		return header
	}
	return header + m.input.View() + "\n"
}

// confirmModel is a yes/no prompt.
type confirmModel struct {
	prompt    string
	value     bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.value = !m.value
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	header := questionStyle.Render("? " + m.prompt)
	if m.done {
		answer := "No"
		if m.value {
			answer = "Yes"
		}
		return fmt.Sprintf("%s %s\n", header, dimStyle.Render(answer))
	}
	if m.cancelled {
		return header + "\n"
	}
	yes, no := "Yes", "No"
	if m.value {
		yes = cursorStyle.Render("[Yes]")
	} else {
		no = cursorStyle.Render("[No]")
	}
	return fmt.Sprintf("%s  %s / %s\n", header, yes, no)
}
