// Package console is a read-only terminal browser over the inventory.
package console

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Mode is the screen the console is showing.
type Mode int

const (
	ModeMenu Mode = iota
	ModeLoading
	ModeSection
	ModeDetail
	ModeError
)

type sectionLoadedMsg struct {
	title string
	items []list.Item
}

type detailLoadedMsg struct {
	text string
}

type errMsg struct {
	err error
}

// Model is the bubbletea model of the console.
type Model struct {
	ctx     context.Context
	db      *sql.DB
	mode    Mode
	menu    list.Model
	section list.Model
	detail  string
	err     error
	width   int
	height  int
}

// New returns a console model reading from db.
func New(ctx context.Context, db *sql.DB) Model {
	items := make([]list.Item, 0, len(sections))
	for _, s := range sections {
		items = append(items, entry{title: s.name, desc: s.desc})
	}

	menu := newList("Inventar", items)
	return Model{
		ctx:     ctx,
		db:      db,
		mode:    ModeMenu,
		menu:    menu,
		section: newList("", nil),
		width:   80,
		height:  24,
	}
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, entryDelegate{}, 80, 20)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	return l
}

// Run starts the console on the terminal and blocks until the user quits.
func Run(ctx context.Context, db *sql.DB) error {
	_, err := tea.NewProgram(New(ctx, db), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Mode returns the current screen.
func (m Model) Mode() Mode {
	return m.mode
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.menu.SetSize(msg.Width, msg.Height-2)
		m.section.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case sectionLoadedMsg:
		m.section = newList(msg.title, msg.items)
		m.section.SetSize(m.width, m.height-2)
		m.mode = ModeSection
		return m, nil

	case detailLoadedMsg:
		m.detail = msg.text
		m.mode = ModeDetail
		return m, nil

	case errMsg:
		m.err = msg.err
		m.mode = ModeError
		return m, nil

	case tea.KeyMsg:
		if m.filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc", "backspace":
			return m.back(), nil
		case "enter":
			return m.open()
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeMenu:
		m.menu, cmd = m.menu.Update(msg)
	case ModeSection:
		m.section, cmd = m.section.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	switch m.mode {
	case ModeMenu:
		return m.menu.FilterState() == list.Filtering
	case ModeSection:
		return m.section.FilterState() == list.Filtering
	}
	return false
}

func (m Model) back() Model {
	switch m.mode {
	case ModeDetail:
		m.mode = ModeSection
	case ModeSection, ModeError:
		m.mode = ModeMenu
		m.err = nil
	}
	return m
}

func (m Model) open() (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeMenu:
		idx := m.menu.Index()
		if idx < 0 || idx >= len(sections) {
			return m, nil
		}
		m.mode = ModeLoading
		return m, m.loadSection(sections[idx])

	case ModeSection:
		e, ok := m.section.SelectedItem().(entry)
		if !ok || e.objectID == 0 {
			return m, nil
		}
		m.mode = ModeLoading
		return m, m.loadDetail(e.objectID)
	}
	return m, nil
}

func (m Model) loadSection(s section) tea.Cmd {
	return func() tea.Msg {
		items, err := s.load(m.ctx, m.db)
		if err != nil {
			return errMsg{err}
		}
		return sectionLoadedMsg{title: s.name, items: items}
	}
}

func (m Model) loadDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		text, err := objectHistory(m.ctx, m.db, id)
		if err != nil {
			return errMsg{err}
		}
		return detailLoadedMsg{text: text}
	}
}

func (m Model) View() string {
	var body, help string
	switch m.mode {
	case ModeMenu:
		body = m.menu.View()
		help = "enter: open • /: filter • q: quit"
	case ModeLoading:
		body = titleStyle.Render("Loading…")
	case ModeSection:
		body = m.section.View()
		help = "enter: history • esc: back • q: quit"
	case ModeDetail:
		body = detailStyle.Render(m.detail)
		help = "esc: back • q: quit"
	case ModeError:
		body = errorStyle.Render("Error: " + m.err.Error())
		help = "esc: back • q: quit"
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, helpStyle.Render(help))
}
