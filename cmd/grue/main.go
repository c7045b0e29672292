package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/xyproto/env/v2"

	"github.com/tlgreaves/grue/zenv"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Faint(true)
	promptStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type playModel struct {
	env        *zenv.Env
	storyName  string
	transcript string
	inputBox   textinput.Model
	width      int
	height     int
	err        error
	done       bool
}

func newPlayModel(e *zenv.Env, storyName string, opening string) playModel {
	inputBox := textinput.New()
	inputBox.Prompt = "> "
	inputBox.Focus()

	return playModel{
		env:        e,
		storyName:  storyName,
		transcript: opening,
		inputBox:   inputBox,
		width:      80,
		height:     24,
	}
}

func (m playModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.env.Shutdown()
			return m, tea.Quit

		case tea.KeyEnter:
			command := strings.TrimSpace(m.inputBox.Value())
			m.inputBox.SetValue("")
			if command == "" {
				return m, nil
			}
			if command == "quit" {
				m.env.Shutdown()
				return m, tea.Quit
			}

			m.transcript += promptStyle.Render("> "+command) + "\n"
			observation, err := m.env.Step(command)
			if err != nil {
				m.err = err
				m.done = true
				return m, nil
			}
			m.transcript += observation + "\n"

			if m.env.Victory() || m.env.GameOver() {
				m.done = true
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputBox, cmd = m.inputBox.Update(msg)
	return m, cmd
}

func (m playModel) View() string {
	var b strings.Builder

	header := titleStyle.Render(m.storyName) + " " +
		statusStyle.Render(fmt.Sprintf("score %d  moves %d", m.env.GetScore(), m.env.GetMoves()))
	b.WriteString(header + "\n\n")

	wrapped := wordwrap.String(m.transcript, max(20, m.width-2))
	lines := strings.Split(wrapped, "\n")
	visible := m.height - 5
	if visible > 0 && len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	} else if m.done {
		b.WriteString(statusStyle.Render("(game over - press esc to exit)") + "\n")
	} else {
		b.WriteString(m.inputBox.View())
	}

	return b.String()
}

func main() {
	seed := flag.Int("seed", env.Int("GRUE_SEED", 0), "deterministic RNG seed (0 = random)")
	flag.Parse()

	storyPath := flag.Arg(0)
	if storyPath == "" {
		picked, err := pickStory("stories")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		storyPath = picked
	}

	e, opening, err := zenv.Setup(storyPath, *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	model := newPlayModel(e, storyPath, opening+"\n")
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
