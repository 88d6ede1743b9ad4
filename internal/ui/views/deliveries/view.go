package deliveries

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	notifydto "shotwatch/internal/modules/notify/dto"
	"shotwatch/internal/ui/theme"
)

const DefaultLimit = 100

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	History(ctx context.Context, limit int) ([]notifydto.DeliveryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Deliveries []notifydto.DeliveryOutput
	Err        error
}

// ─── list item ───────────────────────────────────────────────────────────────

type deliveryItem struct {
	delivery notifydto.DeliveryOutput
	stamp    string
}

func (i deliveryItem) Title() string {
	return fmt.Sprintf("%s · %s", i.delivery.Kind, i.delivery.SubjectName)
}
func (i deliveryItem) Description() string {
	return fmt.Sprintf("%s  %s", i.stamp, theme.Channel(i.delivery.Channel).Render(i.delivery.Channel))
}
func (i deliveryItem) FilterValue() string {
	return i.delivery.Kind + " " + i.delivery.SubjectName + " " + i.delivery.SessionID
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HistoryPort
	stamp   func(notifydto.DeliveryOutput) string
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

// New builds the view. stamp formats the sent time for display; nil falls
// back to RFC 3339 in the delivery's own location.
func New(port HistoryPort, stamp func(notifydto.DeliveryOutput) string) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Deliveries"
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

	if stamp == nil {
		stamp = func(d notifydto.DeliveryOutput) string { return d.SentAt.Format("2006-01-02T15:04:05Z07:00") }
	}
	return Model{port: port, stamp: stamp, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches the newest deliveries from the ledger.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		items, err := m.port.History(context.Background(), DefaultLimit)
		return LoadedMsg{Deliveries: items, Err: err}
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
		if msg.Err != nil {
			m.list.Title = "Deliveries: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Deliveries"
		items := make([]list.Item, len(msg.Deliveries))
		for i, d := range msg.Deliveries {
			items[i] = deliveryItem{delivery: d, stamp: m.stamp(d)}
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
			m.spinner.View()+" Loading deliveries…")
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

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(deliveryItem)
	if !ok {
		return theme.Muted.Render("Nothing delivered yet")
	}
	d := item.delivery
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.SubjectName) + "\n\n")
	sb.WriteString(theme.Muted.Render("kind:    ") + d.Kind + "\n")
	sb.WriteString(theme.Muted.Render("channel: ") + theme.Channel(d.Channel).Render(d.Channel) + "\n")
	if d.SessionID != "" {
		sb.WriteString(theme.Muted.Render("session: ") + d.SessionID + "\n")
	}
	sb.WriteString(theme.Muted.Render("sent:    ") + item.stamp + "\n")
	if d.MediaPath != "" {
		sb.WriteString(theme.Muted.Render("media:   ") + d.MediaPath + "\n")
	}
	sb.WriteString("\n" + d.Body + "\n")
	return sb.String()
}
