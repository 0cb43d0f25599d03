package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/samskiter/micropython-stubber/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// ModuleListModel - Interactive module selection
// =============================================================================

// ModuleListModel is the bubbletea model for picking the modules to stub.
// All modules start checked.
type ModuleListModel struct {
	Modules   []string
	Checked   []bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewModuleListModel creates a module list model with every module checked.
func NewModuleListModel(modules []string) ModuleListModel {
	checked := make([]bool, len(modules))
	for i := range checked {
		checked[i] = true
	}
	return ModuleListModel{Modules: modules, Checked: checked, Height: 15}
}

func (m ModuleListModel) Init() tea.Cmd {
	return nil
}

func (m ModuleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Modules)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Checked) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := !m.allChecked()
			for i := range m.Checked {
				m.Checked[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ModuleListModel) allChecked() bool {
	for _, c := range m.Checked {
		if !c {
			return false
		}
	}
	return true
}

// Selected returns the checked modules in list order.
func (m ModuleListModel) Selected() []string {
	var out []string
	for i, mod := range m.Modules {
		if m.Checked[i] {
			out = append(out, mod)
		}
	}
	return out
}

func (m ModuleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Modules"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ stub  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Modules))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := listDimStyle.Render("[ ]")
		if m.Checked[i] {
			box = listCheckedStyle.Render("[x]")
		}
		line := cursor + box + " " + m.Modules[i]
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d selected", m.Cursor+1, len(m.Modules), len(m.Selected()))))
	return b.String()
}

// pickModules runs the module picker. It returns nil when the user quits
// without confirming.
func pickModules(modules []string) ([]string, error) {
	final, err := tea.NewProgram(NewModuleListModel(modules)).Run()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "module picker")
	}
	m := final.(ModuleListModel)
	if !m.Confirmed {
		return nil, nil
	}
	return m.Selected(), nil
}
