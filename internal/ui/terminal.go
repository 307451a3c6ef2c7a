// Package ui renders stories, features and model output to the terminal and
// runs the interactive prompts the tools ask through.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/store"
	"github.com/mattn/go-isatty"
)

const wordWrap = 100

// Terminal renders output and prompts on a pair of streams. When both are
// attached to a terminal, prompts are bubbletea programs; otherwise they
// read plain lines, which keeps piped input and tests working.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	lines       *bufio.Reader
	interactive bool

	rendererOnce sync.Once
	renderer     *glamour.TermRenderer
}

// NewTerminal creates a Terminal over in and out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:          in,
		out:         out,
		lines:       bufio.NewReader(in),
		interactive: isTTY(in) && isTTY(out),
	}
}

// Interactive reports whether prompts run as full-screen widgets
func (t *Terminal) Interactive() bool {
	return t.interactive
}

// Out returns the output stream
func (t *Terminal) Out() io.Writer {
	return t.out
}

// ShowText renders model text as markdown.
func (t *Terminal) ShowText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if r := t.markdown(); r != nil {
		rendered, err := r.Render(text)
		if err == nil {
			fmt.Fprint(t.out, rendered)
			return
		}
		internal.LogDebug("Markdown render failed: %v", err)
	}
	fmt.Fprintln(t.out, text)
}

// ShowToolUse prints a notice that a tool is running
func (t *Terminal) ShowToolUse(name string) {
	fmt.Fprintln(t.out, dimStyle.Render("⚙ "+name))
}

// ShowError prints a one-line diagnostic
func (t *Terminal) ShowError(err error) {
	fmt.Fprintln(t.out, errorStyle.Render("✗ "+err.Error()))
}

// ShowStories prints a story list
func (t *Terminal) ShowStories(stories []*store.Story) {
	fmt.Fprint(t.out, RenderStories(stories))
}

// ShowFeatures prints a feature list
func (t *Terminal) ShowFeatures(summaries []store.FeatureSummary) {
	fmt.Fprint(t.out, RenderFeatures(summaries))
}

// ShowDraft prints a story draft
func (t *Terminal) ShowDraft(title string, fields []Field) {
	fmt.Fprint(t.out, RenderDraft(title, fields))
}

func (t *Terminal) markdown() *glamour.TermRenderer {
	t.rendererOnce.Do(func() {
		if !t.interactive {
			return
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrap),
		)
		if err != nil {
			internal.LogDebug("Markdown renderer unavailable: %v", err)
			return
		}
		t.renderer = r
	})
	return t.renderer
}

// ReadLine reads one line of user input for the chat prompt. It returns
// io.EOF when input is exhausted and ErrCancelled on ctrl+c.
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	if !t.interactive {
		fmt.Fprint(t.out, prompt)
		return t.readLine()
	}
	m := newTextModel("")
	m.input.Prompt = prompt
	final, err := t.run(ctx, m)
	if err != nil {
		return "", err
	}
	tm := final.(textModel)
	if tm.cancelled {
		return "", ErrCancelled
	}
	return tm.input.Value(), nil
}

// AskSingleChoice asks the user to pick one option and returns its value.
func (t *Terminal) AskSingleChoice(ctx context.Context, question string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("no choices to select from")
	}
	if !t.interactive {
		values, err := t.askChoicesPlain(question, choices, false)
		if err != nil {
			return "", err
		}
		return values[0], nil
	}
	final, err := t.run(ctx, newSelectModel(question, choices, false))
	if err != nil {
		return "", err
	}
	sm := final.(selectModel)
	if sm.cancelled {
		return "", ErrCancelled
	}
	return sm.values()[0], nil
}

// AskMultiChoice asks the user to pick any number of options.
func (t *Terminal) AskMultiChoice(ctx context.Context, question string, choices []Choice) ([]string, error) {
	if len(choices) == 0 {
		return nil, errors.New("no choices to select from")
	}
	if !t.interactive {
		return t.askChoicesPlain(question, choices, true)
	}
	final, err := t.run(ctx, newSelectModel(question, choices, true))
	if err != nil {
		return nil, err
	}
	sm := final.(selectModel)
	if sm.cancelled {
		return nil, ErrCancelled
	}
	return sm.values(), nil
}

// AskText asks for a line of free text.
func (t *Terminal) AskText(ctx context.Context, prompt string) (string, error) {
	if !t.interactive {
		fmt.Fprintln(t.out, questionStyle.Render("? "+prompt))
		fmt.Fprint(t.out, "› ")
		return t.readAnswer()
	}
	final, err := t.run(ctx, newTextModel(prompt))
	if err != nil {
		return "", err
	}
	tm := final.(textModel)
	if tm.cancelled {
		return "", ErrCancelled
	}
	return strings.TrimSpace(tm.input.Value()), nil
}

// AskYesNo asks a yes/no question; enter keeps def.
func (t *Terminal) AskYesNo(ctx context.Context, prompt string, def bool) (bool, error) {
	if !t.interactive {
		hint := "[y/N]"
		if def {
			hint = "[Y/n]"
		}
		for {
			fmt.Fprintf(t.out, "%s %s ", questionStyle.Render("? "+prompt), hint)
			answer, err := t.readAnswer()
			if err != nil {
				return false, err
			}
			switch strings.ToLower(answer) {
			case "":
				return def, nil
			case "y", "yes":
				return true, nil
			case "n", "no":
				return false, nil
			}
			fmt.Fprintln(t.out, dimStyle.Render("Please answer y or n."))
		}
	}
	final, err := t.run(ctx, confirmModel{prompt: prompt, value: def})
	if err != nil {
		return false, err
	}
	cm := final.(confirmModel)
	if cm.cancelled {
		return false, ErrCancelled
	}
	return cm.value, nil
}

func (t *Terminal) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

// askChoicesPlain lists numbered choices and reads the selection. Answers
// may be numbers or values; multi-select accepts a comma separated list.
func (t *Terminal) askChoicesPlain(question string, choices []Choice, multi bool) ([]string, error) {
	fmt.Fprintln(t.out, questionStyle.Render("? "+question))
	for i, c := range choices {
		line := fmt.Sprintf("  %d) %s", i+1, c.Label)
		if c.Description != "" {
			line += dimStyle.Render(" - " + c.Description)
		}
		fmt.Fprintln(t.out, line)
	}

	for {
		if multi {
			fmt.Fprint(t.out, "Select one or more (e.g. 1,3): ")
		} else {
			fmt.Fprint(t.out, "Select: ")
		}
		answer, err := t.readAnswer()
		if err != nil {
			return nil, err
		}

		parts := []string{answer}
		if multi {
			parts = strings.Split(answer, ",")
		}
		values, ok := matchChoices(parts, choices)
		if ok {
			return values, nil
		}
		fmt.Fprintln(t.out, dimStyle.Render("Invalid selection, try again."))
	}
}

func matchChoices(parts []string, choices []Choice) ([]string, bool) {
	var values []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 1 || n > len(choices) {
				return nil, false
			}
			values = append(values, choices[n-1].Value)
			continue
		}
		found := false
		for _, c := range choices {
			if strings.EqualFold(c.Value, part) || strings.EqualFold(c.Label, part) {
				values = append(values, c.Value)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return values, len(values) > 0
}

// readAnswer reads a prompt answer; end of input cancels the prompt.
func (t *Terminal) readAnswer() (string, error) {
	line, err := t.readLine()
	if errors.Is(err, io.EOF) {
		return "", ErrCancelled
	}
	return strings.TrimSpace(line), err
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.lines.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isTTY(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
