package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var storyFilePattern = regexp.MustCompile(`\.z[1-8]$`)

var pickerStyle = lipgloss.NewStyle().Margin(1, 2)

type storyItem struct {
	name string
	path string
	size int64
}

func (s storyItem) Title() string       { return s.name }
func (s storyItem) Description() string { return fmt.Sprintf("%d bytes", s.size) }
func (s storyItem) FilterValue() string { return s.name }

type pickerModel struct {
	storyList list.Model
	choice    string
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if item, ok := m.storyList.SelectedItem().(storyItem); ok {
				m.choice = item.path
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := pickerStyle.GetFrameSize()
		m.storyList.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.storyList, cmd = m.storyList.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return pickerStyle.Render(m.storyList.View())
}

// pickStory shows a selection list over the story files found in dir.
func pickStory(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("no story file given and cannot read %s: %w", dir, err)
	}

	var items []list.Item
	for _, entry := range entries {
		if entry.IsDir() || !storyFilePattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, storyItem{
			name: entry.Name(),
			path: filepath.Join(dir, entry.Name()),
			size: info.Size(),
		})
	}

	if len(items) == 0 {
		return "", fmt.Errorf("no story files in %s; run storyfetch first", dir)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].(storyItem).name < items[j].(storyItem).name
	})

	storyList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	storyList.Title = "Choose a story"

	result, err := tea.NewProgram(pickerModel{storyList: storyList}, tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}

	choice := result.(pickerModel).choice
	if choice == "" {
		return "", fmt.Errorf("no story selected")
	}
	return choice, nil
}
