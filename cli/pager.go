package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			PaddingLeft(2).
			PaddingRight(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(2)
)

type pagerKeyMap struct {
	Quit     key.Binding
	NextCard key.Binding
	PrevCard key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

var pagerKeys = pagerKeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
	NextCard: key.NewBinding(key.WithKeys("n", "tab")),
	PrevCard: key.NewBinding(key.WithKeys("N", "shift+tab")),
	Top:      key.NewBinding(key.WithKeys("g", "home")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end")),
}

// pagerModel shows rendered preview cards and jumps between them
type pagerModel struct {
	viewport viewport.Model
	content  string
	cards    []int
	current  int
	ready    bool
}

// NewPager creates a pager for content whose cards start at the given lines
func NewPager(content string, cards []int) *pagerModel {
	return &pagerModel{
		content: content,
		cards:   cards,
	}
}

func (m *pagerModel) Init() tea.Cmd {
	return nil
}

func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pagerKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, pagerKeys.NextCard):
			m.jump(m.current + 1)
			return m, nil
		case key.Matches(msg, pagerKeys.PrevCard):
			m.jump(m.current - 1)
			return m, nil
		case key.Matches(msg, pagerKeys.Top):
			m.viewport.GotoTop()
			m.current = 0
			return m, nil
		case key.Matches(msg, pagerKeys.Bottom):
			m.viewport.GotoBottom()
			m.current = len(m.cards) - 1
			return m, nil
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.Style = frameStyle
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *pagerModel) View() string {
	if !m.ready {
		return "\nInitializing..."
	}
	help := fmt.Sprintf("↑/k up • ↓/j down • n/N card %d/%d • g/G top/bottom • q quit",
		m.current+1, len(m.cards))
	return m.viewport.View() + "\n" + helpStyle.Render(help)
}

// jump scrolls to card i, wrapping around at either end
func (m *pagerModel) jump(i int) {
	if len(m.cards) == 0 {
		return
	}
	switch {
	case i < 0:
		i = len(m.cards) - 1
	case i >= len(m.cards):
		i = 0
	}
	m.current = i
	if m.ready {
		m.viewport.SetYOffset(m.cards[i])
	}
}

// RunPager starts the pager program with the given content
func RunPager(content string, cards []int) error {
	p := tea.NewProgram(
		NewPager(content, cards),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
