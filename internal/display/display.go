// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders the expedition board as a persistent view:
// production and ready columns, a large last-ready call panel, and a
// ticker of recent expeditions, with an input prompt at the bottom.
// All free-form application output is printed above the rendered area
// via Program.Println / Printf, ensuring concurrent writes never
// garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lfmorais/expede/internal/board"
	"github.com/lfmorais/expede/internal/config"
	"github.com/lfmorais/expede/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

// styles is built from the panel palette at startup so operators can
// re-theme the board from the configuration file.
type styles struct {
	production lipgloss.Style
	ready      lipgloss.Style
	lastReady  lipgloss.Style
	autoSweep  lipgloss.Style
	text       lipgloss.Style
	dim        lipgloss.Style
	title      lipgloss.Style
	prompt     lipgloss.Style
	inputEcho  lipgloss.Style
	urgent     lipgloss.Style
	sep        lipgloss.Style
}

func newStyles(c config.ColorsConfig) styles {
	return styles{
		production: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Production)),
		ready:      lipgloss.NewStyle().Foreground(lipgloss.Color(c.Ready)),
		lastReady:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.LastReady)).Bold(true),
		autoSweep:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.AutoSweep)),
		text:       lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)),
		dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a")),
		title:      lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)).Bold(true),
		prompt:     lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
		inputEcho:  lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa")),
		urgent:     lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5")),
		sep:        lipgloss.NewStyle().Foreground(lipgloss.Color("#52525b")),
	}
}

// BannerStyle — muted slate for the startup banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#94a3b8"))

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	board   *board.Board
	cfg     config.PanelConfig
	st      styles
	done    atomic.Bool
}

// Compile-time interface check.
var _ domain.Notifier = (*UI)(nil)

// NewUI creates the display. Call Run() to start.
func NewUI(b *board.Board, cfg config.PanelConfig) *UI {
	return &UI{
		board:   b,
		cfg:     cfg,
		st:      newStyles(cfg.Colors),
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the board. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the board. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintInfo prints a normal informational line.
func (u *UI) PrintInfo(text string) {
	u.Println(u.st.text.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(u.st.dim.Render("  " + text))
}

// PrintUrgent prints an error/alert line.
func (u *UI) PrintUrgent(text string) {
	u.Println(u.st.urgent.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(u.st.prompt.Render("expede") + u.st.dim.Render("> ") + u.st.inputEcho.Render(text))
}

// Notify implements domain.Notifier on the scrollback.
func (u *UI) Notify(ctx context.Context, message string) error {
	u.PrintInfo(message)
	return nil
}

// NotifyUrgent implements domain.Notifier on the scrollback.
func (u *UI) NotifyUrgent(ctx context.Context, message string) error {
	u.PrintUrgent(message)
	return nil
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = "expede> "
	ti.PromptStyle = u.st.prompt
	ti.TextStyle = u.st.inputEcho
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		board:   u.board,
		cfg:     u.cfg,
		st:      u.st,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// Teardown is an alias for Quit kept for symmetry with other
// components' lifecycles.
func (u *UI) Teardown() { u.Quit() }

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	board   *board.Board
	cfg     config.PanelConfig
	st      styles
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string) // prints user input into scrollback

	production []domain.Order
	ready      []domain.Order
	lastReady  *domain.Order
	records    []domain.ExpeditionRecord
	width      int
}

// Messages.
type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Return a Cmd that prints the echo — this runs
				// outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		const promptLen = 8 // "expede> "
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		m.refreshBoard()
		cmds := []tea.Cmd{tickCmd()}
		if m.lastReady != nil {
			cmds = append(cmds, tea.SetWindowTitle("Expede — "+m.lastReady.Number))
		} else {
			cmds = append(cmds, tea.SetWindowTitle("Expede"))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) refreshBoard() {
	m.production = m.board.Production()
	m.ready = m.board.Ready()
	m.records = m.board.Records()
	if last, ok := m.board.LastReady(); ok {
		m.lastReady = &last
	} else {
		m.lastReady = nil
	}
}

func (m model) View() string {
	var b strings.Builder

	cols := m.renderColumns()
	if cols != "" {
		b.WriteString(cols)
		b.WriteByte('\n')
	}

	if m.cfg.Columns.Ticker.Visible {
		b.WriteString(m.renderTicker())
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// renderColumns lays out the visible board columns side by side,
// splitting the terminal width by each column's configured weight.
func (m model) renderColumns() string {
	type col struct {
		render func(width int) string
		weight int
	}
	var cols []col

	if m.cfg.Columns.Production.Visible {
		cols = append(cols, col{m.renderProduction, m.cfg.Columns.Production.Weight})
	}
	if m.cfg.Columns.Ready.Visible {
		cols = append(cols, col{m.renderReady, m.cfg.Columns.Ready.Weight})
	}
	if m.cfg.Columns.LastReady.Visible {
		cols = append(cols, col{m.renderLastReady, m.cfg.Columns.LastReady.Weight})
	}
	if len(cols) == 0 {
		return ""
	}

	total := 0
	for i := range cols {
		if cols[i].weight < 1 {
			cols[i].weight = 1
		}
		total += cols[i].weight
	}

	w := m.width
	if w <= 0 {
		w = 80
	}

	rendered := make([]string, 0, len(cols))
	for _, c := range cols {
		cw := w * c.weight / total
		if cw < 12 {
			cw = 12
		}
		rendered = append(rendered, c.render(cw-2))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

const maxColumnRows = 12

func (m model) renderProduction(width int) string {
	var b strings.Builder
	b.WriteString(m.st.title.Render(pad("EM PRODUCAO", width)))
	b.WriteByte('\n')
	for i, o := range m.production {
		if i >= maxColumnRows {
			b.WriteString(m.st.dim.Render(pad(fmt.Sprintf("+%d mais", len(m.production)-i), width)))
			b.WriteByte('\n')
			break
		}
		b.WriteString(m.st.production.Render(pad(cardLine(o), width)))
		b.WriteByte('\n')
	}
	if len(m.production) == 0 {
		b.WriteString(m.st.dim.Render(pad("(vazio)", width)))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m model) renderReady(width int) string {
	var b strings.Builder
	b.WriteString(m.st.title.Render(pad("PRONTOS", width)))
	b.WriteByte('\n')
	for i, o := range m.ready {
		if i >= maxColumnRows {
			b.WriteString(m.st.dim.Render(pad(fmt.Sprintf("+%d mais", len(m.ready)-i), width)))
			b.WriteByte('\n')
			break
		}
		line := cardLine(o)
		if m.lastReady != nil && o.ID == m.lastReady.ID {
			b.WriteString(m.st.lastReady.Render(pad("* "+line, width)))
		} else {
			b.WriteString(m.st.ready.Render(pad(line, width)))
		}
		b.WriteByte('\n')
	}
	if len(m.ready) == 0 {
		b.WriteString(m.st.dim.Render(pad("(vazio)", width)))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderLastReady draws the call panel: the most recently readied
// order, oversized so it reads across the counter.
func (m model) renderLastReady(width int) string {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.cfg.Colors.LastReady)).
		Padding(m.cfg.Fonts.LastReadyScale/2, 2).
		Width(width)

	if m.lastReady == nil {
		return panel.Render(m.st.dim.Render("aguardando..."))
	}

	o := m.lastReady
	var b strings.Builder
	b.WriteString(m.st.lastReady.Render(bigNumber(o.Number)))
	if o.Nickname != "" {
		b.WriteByte('\n')
		b.WriteString(m.st.text.Render(o.Nickname))
	}
	b.WriteByte('\n')
	b.WriteString(m.st.dim.Render(o.Module.String()))
	return panel.Render(b.String())
}

// renderTicker draws the recent-expeditions bar, newest first. Orders
// swept out by the timeout are tinted so operators can spot them.
func (m model) renderTicker() string {
	if len(m.records) == 0 {
		return m.st.dim.Render(" sem expedicoes recentes ")
	}
	var parts []string
	for _, r := range m.records {
		label := r.Number
		if r.Nickname != "" {
			label += " " + r.Nickname
		}
		if r.Auto {
			parts = append(parts, m.st.autoSweep.Render(label))
		} else {
			parts = append(parts, m.st.text.Render(label))
		}
	}
	return " " + strings.Join(parts, m.st.sep.Render("  │  ")) + " "
}

// ── Helpers ──────────────────────────────────────────────────────

// cardLine formats one order row: number, nickname, age.
func cardLine(o domain.Order) string {
	age := fmtAge(time.Since(o.TouchedAt))
	if o.Nickname != "" {
		return fmt.Sprintf("%s %s %s", o.Number, o.Nickname, age)
	}
	return fmt.Sprintf("%s %s", o.Number, age)
}

// bigNumber spaces out the digits so the call number reads large.
func bigNumber(number string) string {
	var b strings.Builder
	for i, r := range number {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func fmtAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	mins := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if mins == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", mins, s)
}
