package dashcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jlud7/goddard-gui/pkg/cliui"
	"github.com/jlud7/goddard-gui/pkg/gateway"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type dashView int

const (
	viewSessions dashView = iota
	viewJobs
	viewHistory
)

type dashModel struct {
	gw *gateway.Client

	view          dashView
	sessions      []gateway.Session
	jobs          []gateway.Job
	history       []gateway.HistoryEntry
	historyKey    string
	sessionCursor int
	jobCursor     int
	historyCursor int
	width         int
	height        int
	statusLine    string
	keys          dashKeyMap
	help          help.Model
}

var (
	dashTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dashMutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dashDividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	dashSectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dashHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("214")).Bold(true)
	dashOKStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	dashFailStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dashRoleUserStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	dashRoleAsstStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type dashKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Enter   key.Binding
	Back    key.Binding
	Run     key.Binding
	Toggle  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k dashKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Tab, k.Enter, k.Back, k.Run, k.Toggle, k.Refresh, k.Quit}
}

func (k dashKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Tab, k.Enter, k.Back}, {k.Run, k.Toggle, k.Refresh, k.Quit}}
}

func defaultKeyMap() dashKeyMap {
	return dashKeyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch")),
		Enter:   key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "drill")),
		Back:    key.NewBinding(key.WithKeys("h", "esc"), key.WithHelp("h", "back")),
		Run:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run job")),
		Toggle:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "enable/disable")),
		Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type sessionsLoadedMsg struct {
	sessions []gateway.Session
	err      error
}

type jobsLoadedMsg struct {
	jobs []gateway.Job
	err  error
}

type historyLoadedMsg struct {
	key     string
	history []gateway.HistoryEntry
	err     error
}

type jobRanMsg struct {
	id  string
	err error
}

type jobToggledMsg struct {
	id      string
	enabled bool
	err     error
}

func runDashTUI(ctx context.Context, gw *gateway.Client, sessionKey string) error {
	model := newDashModel(gw)

	if sessionKey != "" {
		history, err := gw.SessionHistory(ctx, sessionKey)
		if err != nil {
			return err
		}
		model.view = viewHistory
		model.historyKey = sessionKey
		model.history = history
	}

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

func newDashModel(gw *gateway.Client) dashModel {
	return dashModel{
		gw:   gw,
		view: viewSessions,
		keys: defaultKeyMap(),
		help: help.New(),
	}
}

func (m dashModel) Init() bubbletea.Cmd {
	return bubbletea.Batch(loadSessionsCmd(m.gw), loadJobsCmd(m.gw))
}

func (m dashModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case sessionsLoadedMsg:
		if msg.err != nil {
			m.statusLine = "sessions: " + msg.err.Error()
			return m, nil
		}
		m.sessions = msg.sessions
		m.sessionCursor = clamp(m.sessionCursor, len(m.sessions)-1)
		return m, nil
	case jobsLoadedMsg:
		if msg.err != nil {
			m.statusLine = "jobs: " + msg.err.Error()
			return m, nil
		}
		m.jobs = msg.jobs
		m.jobCursor = clamp(m.jobCursor, len(m.jobs)-1)
		return m, nil
	case historyLoadedMsg:
		if msg.err != nil {
			m.statusLine = "history: " + msg.err.Error()
			return m, nil
		}
		m.history = msg.history
		m.historyKey = msg.key
		m.historyCursor = 0
		m.view = viewHistory
		return m, nil
	case jobRanMsg:
		if msg.err != nil {
			m.statusLine = fmt.Sprintf("run %s: %v", msg.id, msg.err)
			return m, nil
		}
		m.statusLine = fmt.Sprintf("job %s started", msg.id)
		return m, loadJobsCmd(m.gw)
	case jobToggledMsg:
		if msg.err != nil {
			m.statusLine = fmt.Sprintf("toggle %s: %v", msg.id, msg.err)
			return m, nil
		}
		verb := "enabled"
		if !msg.enabled {
			verb = "disabled"
		}
		m.statusLine = fmt.Sprintf("job %s %s", msg.id, verb)
		return m, loadJobsCmd(m.gw)
	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashModel) View() string {
	switch m.view {
	case viewSessions:
		return m.viewSessions()
	case viewJobs:
		return m.viewJobs()
	case viewHistory:
		return m.viewHistory()
	}
	return m.viewSessions()
}

func (m dashModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, bubbletea.Quit
	case "j", "down":
		return m.moveCursor(1)
	case "k", "up":
		return m.moveCursor(-1)
	case "tab":
		if m.view == viewSessions {
			m.view = viewJobs
		} else if m.view == viewJobs {
			m.view = viewSessions
		}
		return m, nil
	case "l", "enter":
		if m.view == viewSessions && len(m.sessions) > 0 {
			session := m.sessions[m.sessionCursor]
			return m, loadHistoryCmd(m.gw, session.Key)
		}
	case "h", "esc":
		if m.view == viewHistory {
			m.view = viewSessions
		}
	case "r":
		if m.view == viewJobs && len(m.jobs) > 0 {
			job := m.jobs[m.jobCursor]
			m.statusLine = fmt.Sprintf("running %s...", job.ID)
			return m, runJobCmd(m.gw, job.ID)
		}
	case "e":
		if m.view == viewJobs && len(m.jobs) > 0 {
			job := m.jobs[m.jobCursor]
			return m, toggleJobCmd(m.gw, job.ID, !job.Enabled)
		}
	case "R":
		m.statusLine = "refreshing..."
		return m, bubbletea.Batch(loadSessionsCmd(m.gw), loadJobsCmd(m.gw))
	}

	return m, nil
}

func (m dashModel) moveCursor(delta int) (bubbletea.Model, bubbletea.Cmd) {
	switch m.view {
	case viewSessions:
		if len(m.sessions) == 0 {
			return m, nil
		}
		m.sessionCursor = clamp(m.sessionCursor+delta, len(m.sessions)-1)
	case viewJobs:
		if len(m.jobs) == 0 {
			return m, nil
		}
		m.jobCursor = clamp(m.jobCursor+delta, len(m.jobs)-1)
	case viewHistory:
		if len(m.history) == 0 {
			return m, nil
		}
		m.historyCursor = clamp(m.historyCursor+delta, len(m.history)-1)
	}
	return m, nil
}

func (m dashModel) viewSessions() string {
	header := m.header("goddard dash › sessions")
	lines := []string{header, renderRule(m.width), ""}

	if len(m.sessions) == 0 {
		lines = append(lines, dashMutedStyle.Render("no sessions"))
	} else {
		lines = append(lines, dashSectionStyle.Render("sessions"), renderRule(m.width))
		lines = append(lines, dashMutedStyle.Render("  key                     label                 msgs  updated"))

		maxVisible := m.listHeight()
		start, end := visibleRange(len(m.sessions), m.sessionCursor, maxVisible)
		for i := start; i < end; i++ {
			session := m.sessions[i]
			cursor := " "
			if i == m.sessionCursor {
				cursor = ">"
			}
			line := fmt.Sprintf("%s %-23s %-21s %5d  %s",
				cursor,
				truncateText(session.Key, 23),
				truncateText(session.Label, 21),
				session.Size,
				dashMutedStyle.Render(session.Updated),
			)
			if i == m.sessionCursor {
				line = dashHighlightStyle.Render(line)
			}
			lines = append(lines, line)
		}
	}

	lines = append(lines, "", m.footer())
	return strings.Join(lines, "\n")
}

func (m dashModel) viewJobs() string {
	header := m.header("goddard dash › jobs")
	lines := []string{header, renderRule(m.width), ""}

	if len(m.jobs) == 0 {
		lines = append(lines, dashMutedStyle.Render("no scheduled jobs"))
	} else {
		lines = append(lines, dashSectionStyle.Render("jobs"), renderRule(m.width))
		lines = append(lines, dashMutedStyle.Render("    name                  schedule         last run"))

		maxVisible := m.listHeight()
		start, end := visibleRange(len(m.jobs), m.jobCursor, maxVisible)
		for i := start; i < end; i++ {
			job := m.jobs[i]
			cursor := " "
			if i == m.jobCursor {
				cursor = ">"
			}
			state := dashOKStyle.Render("●")
			if !job.Enabled {
				state = dashMutedStyle.Render("○")
			}

			lastRun := job.LastRun
			if lastRun != "" && job.LastStatus != "" {
				lastRun += " " + statusStyleFor(job.LastStatus).Render("("+job.LastStatus+")")
			}
			line := fmt.Sprintf("%s %s %-21s %-16s %s",
				cursor,
				state,
				truncateText(job.Name, 21),
				truncateText(job.Schedule, 16),
				lastRun,
			)
			if i == m.jobCursor {
				line = dashHighlightStyle.Render(line)
			}
			lines = append(lines, line)
		}
	}

	lines = append(lines, "", m.footer())
	return strings.Join(lines, "\n")
}

func (m dashModel) viewHistory() string {
	header := m.header("goddard dash › " + m.historyKey)
	lines := []string{header, renderRule(m.width), ""}

	if len(m.history) == 0 {
		lines = append(lines, dashMutedStyle.Render("no messages"))
		lines = append(lines, "", m.footer())
		return strings.Join(lines, "\n")
	}

	maxVisible := m.listHeight()
	start, end := visibleRange(len(m.history), m.historyCursor, maxVisible)
	for i := start; i < end; i++ {
		entry := m.history[i]
		cursor := " "
		if i == m.historyCursor {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s %s",
			cursor,
			roleLabel(entry.Role),
			truncateText(strings.ReplaceAll(entry.Content, "\n", " "), max(20, m.lineWidth()-16)),
		)
		if i == m.historyCursor {
			line = dashHighlightStyle.Render(line)
		}
		lines = append(lines, line)
	}

	// Full text of the selected message below the list.
	selected := m.history[m.historyCursor]
	lines = append(lines, "", renderRule(m.width))
	lines = append(lines, wrapText(strings.TrimSpace(selected.Content), max(20, m.lineWidth()-2))...)

	lines = append(lines, "", m.footer())
	return strings.Join(lines, "\n")
}

func (m dashModel) header(title string) string {
	left := dashTitleStyle.Render(title)
	right := dashMutedStyle.Render(fmt.Sprintf("%d sessions · %d jobs", len(m.sessions), len(m.jobs)))
	return renderHeaderLine(m.width, left, right)
}

func (m dashModel) footer() string {
	helpLine := dashMutedStyle.Render(m.help.View(m.keys))
	if m.statusLine == "" {
		return helpLine
	}
	return dashMutedStyle.Render(m.statusLine) + "\n" + helpLine
}

func (m dashModel) listHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-8, 5)
}

func (m dashModel) lineWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func loadSessionsCmd(gw *gateway.Client) bubbletea.Cmd {
	return func() bubbletea.Msg {
		sessions, err := gw.ListSessions(context.Background())
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func loadJobsCmd(gw *gateway.Client) bubbletea.Cmd {
	return func() bubbletea.Msg {
		jobs, err := gw.ListJobs(context.Background())
		return jobsLoadedMsg{jobs: jobs, err: err}
	}
}

func loadHistoryCmd(gw *gateway.Client, key string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		history, err := gw.SessionHistory(context.Background(), key)
		return historyLoadedMsg{key: key, history: history, err: err}
	}
}

func runJobCmd(gw *gateway.Client, id string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		err := gw.RunJob(context.Background(), id)
		return jobRanMsg{id: id, err: err}
	}
}

func toggleJobCmd(gw *gateway.Client, id string, enabled bool) bubbletea.Cmd {
	return func() bubbletea.Msg {
		err := gw.SetJobEnabled(context.Background(), id, enabled)
		return jobToggledMsg{id: id, enabled: enabled, err: err}
	}
}

func statusStyleFor(status string) lipgloss.Style {
	switch status {
	case "ok", "success", "completed":
		return dashOKStyle
	case "error", "failed":
		return dashFailStyle
	default:
		return dashMutedStyle
	}
}

func roleLabel(role string) string {
	switch role {
	case "assistant":
		return dashRoleAsstStyle.Render("● assistant")
	case "user":
		return dashRoleUserStyle.Render("○ user     ")
	default:
		return fmt.Sprintf("%-11s", role)
	}
}

func clamp(value, upper int) int {
	if value < 0 {
		return 0
	}
	if upper < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}

// truncateText shortens a value to limit display cells; width-aware so
// multi-byte runes in labels and history text are never split.
func truncateText(value string, limit int) string {
	return cliui.TruncateLine(value, limit)
}

func renderHeaderLine(width int, left, right string) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth+1 >= lineWidth {
		return strings.TrimSpace(left + " " + right)
	}
	spacing := lineWidth - leftWidth - rightWidth
	return left + strings.Repeat(" ", spacing) + right
}

func renderRule(width int) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	return dashDividerStyle.Render(strings.Repeat("─", lineWidth))
}

func visibleRange(total, cursor, size int) (int, int) {
	if total <= 0 || size <= 0 {
		return 0, 0
	}
	if total <= size {
		return 0, total
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	start := max(cursor-(size/2), 0)
	end := start + size
	if end > total {
		end = total
		start = max(end-size, 0)
	}
	return start, end
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	lines := []string{}
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
			current = current + " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
