package sessions

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackingdto "shotwatch/internal/modules/tracking/dto"
	"shotwatch/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type StatusPort interface {
	Status(ctx context.Context) ([]trackingdto.SessionStatusOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Sessions []trackingdto.SessionStatusOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sessionItem struct {
	session trackingdto.SessionStatusOutput
	name    string
}

func (i sessionItem) Title() string { return i.session.SessionID }
func (i sessionItem) Description() string {
	return fmt.Sprintf("%s  %s", i.name, theme.Phase(i.session.Phase).Render(i.session.Phase))
}
func (i sessionItem) FilterValue() string { return i.name + " " + i.session.SessionID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    StatusPort
	names   map[string]string
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

// New builds the view. names maps subject ids to display names.
func New(port StatusPort, names map[string]string) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	if names == nil {
		names = map[string]string{}
	}
	return Model{port: port, names: names, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload re-reads the state file through the port.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		sessions, err := m.port.Status(context.Background())
		return LoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = "Sessions: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Sessions"
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = sessionItem{session: s, name: m.displayName(s.SubjectID)}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sessions…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Counts returns how many sessions are open and finished.
func (m Model) Counts() (open, ended int) {
	for _, item := range m.list.Items() {
		if s, ok := item.(sessionItem); ok {
			switch s.session.Phase {
			case "started":
				open++
			case "ended":
				ended++
			}
		}
	}
	return open, ended
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) displayName(subjectID string) string {
	if name, ok := m.names[subjectID]; ok && name != "" {
		return name
	}
	return subjectID
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return theme.Muted.Render("No sessions tracked yet")
	}
	s := item.session
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(item.name) + "\n\n")
	sb.WriteString(theme.Muted.Render("subject: ") + s.SubjectID + "\n")
	sb.WriteString(theme.Muted.Render("session: ") + s.SessionID + "\n")
	sb.WriteString(theme.Muted.Render("phase:   ") + theme.Phase(s.Phase).Render(s.Phase) + "\n")
	sb.WriteString(theme.Muted.Render("start:   ") + check(s.NotifiedStart) + "\n")
	sb.WriteString(theme.Muted.Render("end:     ") + check(s.NotifiedEnd) + "\n")
	sb.WriteString("\n" + theme.Muted.Render(": poll  r: refresh"))
	return sb.String()
}

func check(sent bool) string {
	if sent {
		return theme.Good.Render("notified")
	}
	return theme.Muted.Render("pending")
}
