package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/ui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Launch interactive dashboard (alias: dash)",
	Long: `Launch a full-screen dashboard of tracked assets.

Staleness is re-checked every couple of seconds, so edits show up as they
happen; resync from the dashboard when you are ready.

Keyboard Shortcuts:
  Navigation:
    ↑/k         Move up
    ↓/j         Move down
    g           Jump to top
    G           Jump to bottom

  Actions:
    r           Hot sync
    c           Cold sync
    h           Toggle hot reload on the selected asset
    s           Show stale assets only

  General:
    /           Search
    Esc         Clear search
    ?           Show help
    q           Quit`,
	RunE: runDashboard,
}

// refreshInterval is how often the dashboard re-checks staleness
const refreshInterval = 2 * time.Second

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	resp, err := listService.Execute(ctx, services.ListRequest{})
	if err != nil {
		return fmt.Errorf("failed to load assets: %w", err)
	}

	p := tea.NewProgram(newDashboardModel(ctx, resp.Assets), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}

// Dashboard view modes
type viewMode int

const (
	modeList viewMode = iota
	modeSearch
	modeHelp
)

// Dashboard model
type dashboardModel struct {
	ctx           context.Context
	assets        []services.AssetStatus // All tracked assets
	filtered      []services.AssetStatus // Assets after search/stale filters
	staleOnly     bool
	cursor        int
	offset        int
	mode          viewMode
	searchInput   textinput.Model
	help          help.Model
	keys          keyMap
	detail        viewport.Model
	width         int
	height        int
	ready         bool
	message       string
	messageStyle  lipgloss.Style
	messageExpiry time.Time
	lastSync      *domain.SyncReport
	lastSyncAt    time.Time
}

// Key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	HotSync   key.Binding
	ColdSync  key.Binding
	ToggleHot key.Binding
	Stale     key.Binding
	Search    key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.HotSync, k.ColdSync, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.HotSync, k.ColdSync, k.ToggleHot, k.Stale},
		{k.Search, k.Escape, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	HotSync: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "hot sync"),
	),
	ColdSync: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cold sync"),
	),
	ToggleHot: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "toggle hot"),
	),
	Stale: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stale only"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

func newDashboardModel(ctx context.Context, assets []services.AssetStatus) dashboardModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by path..."
	ti.CharLimit = 100
	ti.Width = 50

	vp := viewport.New(40, 10)
	vp.Style = lipgloss.NewStyle().Foreground(ui.ColorDefault)

	return dashboardModel{
		ctx:         ctx,
		assets:      assets,
		filtered:    assets,
		mode:        modeList,
		searchInput: ti,
		help:        help.New(),
		keys:        keys,
		detail:      vp,
	}
}

// Messages

type assetsLoadedMsg struct {
	assets []services.AssetStatus
	err    error
}

type syncDoneMsg struct {
	report domain.SyncReport
	err    error
}

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Init() tea.Cmd {
	return tick()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.detail.Width = msg.Width/2 - 4
		m.detail.Height = max(msg.Height-12, 5)
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeHelp:
			m.mode = modeList
			return m, nil
		default:
			return m.updateList(msg)
		}

	case tickMsg:
		return m, tea.Batch(m.reload(), tick())

	case assetsLoadedMsg:
		if msg.err != nil {
			m.setStatus("Failed to load assets: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		m.assets = msg.assets
		m.applyFilters()
		return m, nil

	case syncDoneMsg:
		if msg.err != nil {
			m.setStatus("Sync bookkeeping failed: "+msg.err.Error(), ui.StyleWarning)
		}
		report := msg.report
		m.lastSync = &report
		m.lastSyncAt = time.Now()
		switch {
		case len(report.Failures) > 0:
			m.setStatus(fmt.Sprintf("%s sync: %d resynced, %d failed", report.Mode, len(report.Resynced), len(report.Failures)), ui.StyleError)
		case len(report.Resynced) == 0:
			m.setStatus(fmt.Sprintf("%s sync: nothing to do", report.Mode), ui.StyleMuted)
		default:
			m.setStatus(fmt.Sprintf("%s sync: %d resynced", report.Mode, len(report.Resynced)), ui.StyleSuccess)
		}
		return m, m.reload()

	case statusMsg:
		m.setStatus(msg.message, msg.style)
		return m, m.reload()
	}

	return m, nil
}

func (m dashboardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustViewport()
			m.refreshDetail()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.adjustViewport()
			m.refreshDetail()
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0
		m.refreshDetail()

	case key.Matches(msg, m.keys.Bottom):
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
			m.adjustViewport()
			m.refreshDetail()
		}

	case key.Matches(msg, m.keys.HotSync):
		m.setStatus("Running hot sync...", ui.StyleInfo)
		return m, m.runSync(domain.SyncHot)

	case key.Matches(msg, m.keys.ColdSync):
		m.setStatus("Running cold sync...", ui.StyleInfo)
		return m, m.runSync(domain.SyncCold)

	case key.Matches(msg, m.keys.ToggleHot):
		if a, ok := m.selected(); ok {
			return m, m.toggleHot(a)
		}

	case key.Matches(msg, m.keys.Stale):
		m.staleOnly = !m.staleOnly
		m.applyFilters()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}

	return m, nil
}

func (m dashboardModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilters()
		return m, nil

	case msg.Type == tea.KeyEnter:
		m.mode = modeList
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilters()
	return m, cmd
}

// Commands

func (m dashboardModel) reload() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		resp, err := listService.Execute(ctx, services.ListRequest{})
		if err != nil {
			return assetsLoadedMsg{err: err}
		}
		return assetsLoadedMsg{assets: resp.Assets}
	}
}

func (m dashboardModel) runSync(mode domain.SyncMode) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		resp, err := syncService.Execute(ctx, services.SyncRequest{Mode: mode})
		if resp == nil {
			return syncDoneMsg{report: domain.SyncReport{Mode: mode}, err: err}
		}
		return syncDoneMsg{report: resp.Report, err: err}
	}
}

func (m dashboardModel) toggleHot(a services.AssetStatus) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		path := appWorkspace.Abs(a.Path)
		rec, err := trackService.SetHot(ctx, services.HotRequest{Path: path, Hot: !a.HotReload})
		if err != nil {
			return statusMsg{message: "Failed to update " + a.Path + ": " + err.Error(), style: ui.StyleError}
		}
		state := "off"
		if rec.HotReload {
			state = "on"
		}
		return statusMsg{message: fmt.Sprintf("Hot reload %s for %s", state, rec.Path), style: ui.StyleSuccess}
	}
}

// State helpers

func (m *dashboardModel) setStatus(message string, style lipgloss.Style) {
	m.message = message
	m.messageStyle = style
	m.messageExpiry = time.Now().Add(5 * time.Second)
}

func (m dashboardModel) selected() (services.AssetStatus, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return services.AssetStatus{}, false
	}
	return m.filtered[m.cursor], true
}

func (m *dashboardModel) applyFilters() {
	query := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))

	filtered := make([]services.AssetStatus, 0, len(m.assets))
	for _, a := range m.assets {
		if m.staleOnly && !a.Stale {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(a.Path), query) {
			continue
		}
		filtered = append(filtered, a)
	}
	m.filtered = filtered

	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
	m.adjustViewport()
	m.refreshDetail()
}

func (m *dashboardModel) listHeight() int {
	return max(m.height-10, 3)
}

func (m *dashboardModel) adjustViewport() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m *dashboardModel) refreshDetail() {
	a, ok := m.selected()
	if !ok {
		m.detail.SetContent("")
		return
	}

	lines := []string{
		ui.StyleBold.Render(a.Path),
		"",
		ui.RenderKeyValue("Kind", ui.FormatKind(string(a.Kind))),
		ui.RenderKeyValue("Hot reload", fmt.Sprintf("%t", a.HotReload)),
		ui.RenderKeyValue("Status", statusLabel(a)),
		ui.RenderKeyValue("Size", ui.FormatBytes(a.Size)),
		ui.RenderKeyValue("Users", fmt.Sprintf("%d", a.Users)),
	}
	if !a.SyncedAt.IsZero() {
		lines = append(lines, ui.RenderKeyValue("Synced", a.SyncedAt.Local().Format(timestampFormat())))
	}
	if len(a.Hash) >= 12 {
		lines = append(lines, ui.RenderKeyValue("SHA-256", a.Hash[:12]))
	}
	m.detail.SetContent(strings.Join(lines, "\n"))
}

func timestampFormat() string {
	if appConfig != nil && appConfig.TimestampFormat != "" {
		return appConfig.TimestampFormat
	}
	return time.DateTime
}

// Views

func (m dashboardModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.mode == modeHelp {
		return m.viewHelp()
	}

	list := lipgloss.NewStyle().Width(m.width/2 - 2).Render(m.renderList())
	detail := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1).
		Render(m.detail.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderSearchBar(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, detail),
		m.renderFooter(),
	)
}

func (m dashboardModel) viewHelp() string {
	title := ui.StyleHeader.Render("Keyboard Shortcuts")
	m.help.ShowAll = true
	return lipgloss.NewStyle().Padding(1, 2).Render(
		title + "\n\n" + m.help.View(m.keys) + "\n\n" + ui.StyleMuted.Render("Press any key to return"),
	)
}

func (m dashboardModel) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Padding(0, 1).Render("Plum Assets")

	stale := 0
	for _, a := range m.assets {
		if a.Stale {
			stale++
		}
	}
	statsText := fmt.Sprintf("%d assets", len(m.assets))
	if stale > 0 {
		statsText += fmt.Sprintf("  %d stale", stale)
	}
	if m.staleOnly {
		statsText += "  [stale only]"
	}
	stats := ui.StyleMuted.Render(statsText)

	spacer := max(m.width-lipgloss.Width(title)-lipgloss.Width(stats), 0)
	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Repeat(" ", spacer), stats)
}

func (m dashboardModel) renderSearchBar() string {
	borderColor := ui.ColorMuted
	if m.mode == modeSearch {
		borderColor = ui.ColorPrimary
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(max(m.width-4, 10))

	content := m.searchInput.View()
	if m.mode != modeSearch && m.searchInput.Value() == "" {
		content = ui.StyleMuted.Render("Press / to filter...")
	}
	return style.Render(content)
}

func (m dashboardModel) renderList() string {
	if len(m.filtered) == 0 {
		empty := lipgloss.NewStyle().Foreground(ui.ColorMuted).Italic(true).Padding(1, 2)
		switch {
		case m.staleOnly:
			return empty.Render("Everything is up to date.")
		case m.searchInput.Value() != "":
			return empty.Render("No assets match your filter.")
		default:
			return empty.Render("No assets tracked. Run 'plum add <path>'.")
		}
	}

	var s strings.Builder
	end := min(m.offset+m.listHeight(), len(m.filtered))
	for i := m.offset; i < end; i++ {
		s.WriteString(m.renderItem(m.filtered[i], i == m.cursor))
		s.WriteString("\n")
	}
	return s.String()
}

func (m dashboardModel) renderItem(a services.AssetStatus, selected bool) string {
	marker := "  "
	if selected {
		marker = ui.StylePrimary.Render("▸ ")
	}

	flags := ""
	if a.HotReload {
		flags += " " + ui.IconHot
	}
	if a.Stale {
		flags += " " + ui.StyleStale.Render(ui.IconStale)
	}

	path := a.Path
	if selected {
		path = ui.StyleBold.Render(path)
	}
	return marker + ui.StyleAccent.Render(ui.KindIcon(string(a.Kind))) + " " + path + flags
}

// lastSyncSummary describes the most recent sweep run from the dashboard
func (m dashboardModel) lastSyncSummary() string {
	r := m.lastSync
	s := fmt.Sprintf("last %s sync at %s: %d checked, %d resynced",
		r.Mode, m.lastSyncAt.Format("15:04:05"), r.Checked, len(r.Resynced))
	if len(r.Failures) > 0 {
		s += fmt.Sprintf(", %d failed", len(r.Failures))
	}
	return s
}

func (m dashboardModel) renderFooter() string {
	var parts []string
	if m.message != "" && time.Now().Before(m.messageExpiry) {
		parts = append(parts, m.messageStyle.Render(m.message))
	} else if m.lastSync != nil {
		parts = append(parts, ui.StyleMuted.Render(m.lastSyncSummary()))
	}
	m.help.ShowAll = false
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}
