package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	notifydto "shotwatch/internal/modules/notify/dto"
	reportdto "shotwatch/internal/modules/report/dto"
	trackingdto "shotwatch/internal/modules/tracking/dto"
	"shotwatch/internal/ui/components"
	"shotwatch/internal/ui/theme"
	deliveriesview "shotwatch/internal/ui/views/deliveries"
	sessionsview "shotwatch/internal/ui/views/sessions"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// The caller binds subjects, windows and zones; the TUI only triggers work.

type trackingPort interface {
	PollNow(ctx context.Context) (trackingdto.PollOutput, error)
	Status(ctx context.Context) ([]trackingdto.SessionStatusOutput, error)
}

type notifyPort interface {
	History(ctx context.Context, limit int) ([]notifydto.DeliveryOutput, error)
}

type reportPort interface {
	DailyFor(ctx context.Context, day time.Time) (reportdto.DailyOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabSessions tabID = iota
	tabDeliveries
	tabCount
)

var tabLabels = [tabCount]string{"Sessions", "Deliveries"}

// ─── async messages ───────────────────────────────────────────────────────────

type polledMsg struct {
	out trackingdto.PollOutput
	err error
}

type reportedMsg struct {
	out reportdto.DailyOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Poll    key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Poll:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "poll now")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Poll, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette. Polling and reporting go through the ports.
type Model struct {
	tracking trackingPort
	report   reportPort
	dayParse func(string) (time.Time, error)

	sessionsView   sessionsview.Model
	deliveriesView deliveriesview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	busy      bool
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// Options carries presentation helpers from the composition root.
type Options struct {
	Names    map[string]string
	Stamp    func(notifydto.DeliveryOutput) string
	DayParse func(string) (time.Time, error)
}

func NewModel(tracking trackingPort, notify notifyPort, report reportPort, opts Options) Model {
	var history deliveriesview.HistoryPort
	if notify != nil {
		history = notify
	}
	dayParse := opts.DayParse
	if dayParse == nil {
		dayParse = func(s string) (time.Time, error) { return time.Parse("2006-01-02", s) }
	}
	return Model{
		tracking:       tracking,
		report:         report,
		dayParse:       dayParse,
		sessionsView:   sessionsview.New(tracking, opts.Names),
		deliveriesView: deliveriesview.New(history, opts.Stamp),
		activeTab:      tabSessions,
		keys:           defaultKeys(),
		help:           help.New(),
		palette:        components.NewPalette(),
		status:         "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.sessionsView.Init(),
		m.deliveriesView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case polledMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "poll failed: " + msg.err.Error()
		} else {
			m.status = pollSummary(msg.out)
		}
		return m, m.refreshCmd()

	case reportedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "daily report failed: " + msg.err.Error()
		} else {
			m.status = reportSummary(msg.out)
		}
		return m, m.deliveriesView.Reload()

	case sessionsview.LoadedMsg:
		var cmd tea.Cmd
		m.sessionsView, cmd = m.sessionsView.Update(msg)
		return m, cmd

	case deliveriesview.LoadedMsg:
		var cmd tea.Cmd
		m.deliveriesView, cmd = m.deliveriesView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "p":
			return m.startPoll()
		case "r":
			m.status = "refreshing"
			return m, m.refreshCmd()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabSessions:
		m.sessionsView, tabCmd = m.sessionsView.Update(msg)
	case tabDeliveries:
		m.deliveriesView, tabCmd = m.deliveriesView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabDeliveries:
		content = m.deliveriesView.View()
	default:
		content = m.sessionsView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	bar := "shotwatch  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if open, _ := m.sessionsView.Counts(); open > 0 {
		left = theme.Hot.Render(fmt.Sprintf("● %d open", open)) + "  " + left
	}
	if m.busy {
		left = theme.Warn.Render("working…") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  p:poll  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "poll":
		return m.startPoll()

	case "report:daily":
		if m.report == nil {
			m.status = "reporting not configured"
			return m, nil
		}
		var day time.Time
		if len(parts) >= 2 {
			parsed, err := m.dayParse(parts[1])
			if err != nil {
				m.status = "invalid day: " + parts[1]
				return m, nil
			}
			day = parsed
		}
		if m.busy {
			m.status = "busy"
			return m, nil
		}
		m.busy = true
		m.status = "building daily report"
		return m, m.reportCmd(day)

	case "refresh":
		m.status = "refreshing"
		return m, m.refreshCmd()

	case "tab:sessions":
		m.activeTab = tabSessions
	case "tab:deliveries":
		m.activeTab = tabDeliveries

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabSessions:
		return m.sessionsView.Filtering()
	case tabDeliveries:
		return m.deliveriesView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.sessionsView, _ = m.sessionsView.Update(sz)
	m.deliveriesView, _ = m.deliveriesView.Update(sz)
}

func (m Model) startPoll() (tea.Model, tea.Cmd) {
	if m.tracking == nil {
		m.status = "tracking not configured"
		return m, nil
	}
	if m.busy {
		m.status = "busy"
		return m, nil
	}
	m.busy = true
	m.status = "polling"
	return m, m.pollCmd()
}

func pollSummary(out trackingdto.PollOutput) string {
	s := fmt.Sprintf("polled %d sessions: %d started, %d ended", out.Tracked, len(out.Started), len(out.Ended))
	if n := len(out.SkippedSubjects); n > 0 {
		s += fmt.Sprintf(", %d subjects skipped", n)
	}
	if n := len(out.DeferredEnds); n > 0 {
		s += fmt.Sprintf(", %d ends deferred", n)
	}
	return s
}

func reportSummary(out reportdto.DailyOutput) string {
	sent := 0
	for _, r := range out.Reports {
		if !r.Skipped {
			sent++
		}
	}
	return fmt.Sprintf("daily %s: %d of %d reports sent", out.Day, sent, len(out.Reports))
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) pollCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracking.PollNow(context.Background())
		return polledMsg{out: out, err: err}
	}
}

func (m Model) reportCmd(day time.Time) tea.Cmd {
	return func() tea.Msg {
		out, err := m.report.DailyFor(context.Background(), day)
		return reportedMsg{out: out, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return tea.Batch(m.sessionsView.Reload(), m.deliveriesView.Reload())
}
