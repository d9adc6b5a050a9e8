package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/factcheck/internal/client"
	"github.com/Aman-CERP/factcheck/internal/expansion"
	"github.com/Aman-CERP/factcheck/internal/session"
)

// BrowserOptions configures the interactive search program.
type BrowserOptions struct {
	Input        io.Reader
	Output       io.Writer
	NoColor      bool
	InitialQuery string
	// Open opens a result URL. Nil disables the "o" key.
	Open func(url string) error
}

// RunBrowser runs the interactive search program until the user quits or ctx
// is cancelled. The session is owned by the program's event loop for the
// duration of the call.
func RunBrowser(ctx context.Context, ctrl *session.Controller, sess *session.Session, opts BrowserOptions) error {
	m := newSearchModel(ctx, ctrl, sess, opts)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if f, ok := opts.Output.(*os.File); ok {
		progOpts = append(progOpts, tea.WithOutput(f))
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}

	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}

// Message types for bubbletea
type searchDoneMsg struct {
	resp session.SearchResponse
}

type expansionsDoneMsg struct {
	resp expansion.Response
}

type openDoneMsg struct {
	url string
	err error
}

// searchModel is the bubbletea model of one interactive session.
type searchModel struct {
	ctx     context.Context
	ctrl    *session.Controller
	sess    *session.Session
	open    func(string) error
	initial string

	input   textinput.Model
	spinner spinner.Model
	styles  Styles
	noColor bool

	selected   int
	historyIdx int
	notice     string
	width      int
	quitting   bool
}

func newSearchModel(ctx context.Context, ctrl *session.Controller, sess *session.Session, opts BrowserOptions) *searchModel {
	styles := GetStyles(opts.NoColor)

	ti := textinput.New()
	ti.Placeholder = "Search documents..."
	ti.Prompt = styles.Active.Render("/ ")
	ti.CharLimit = 200
	ti.SetValue(opts.InitialQuery)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	return &searchModel{
		ctx:        ctx,
		ctrl:       ctrl,
		sess:       sess,
		open:       opts.Open,
		initial:    opts.InitialQuery,
		input:      ti,
		spinner:    sp,
		styles:     styles,
		noColor:    opts.NoColor,
		historyIdx: -1,
		width:      80,
	}
}

// Init implements tea.Model.
func (m *searchModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if req, ok := m.ctrl.Submit(m.sess, m.initial, m.sess.Mode); ok {
		m.input.Blur()
		cmds = append(cmds, m.executeCmd(req))
	}
	return tea.Batch(cmds...)
}

// executeCmd runs the search off the event loop. Only req is captured.
func (m *searchModel) executeCmd(req session.SearchRequest) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return searchDoneMsg{resp: ctrl.Execute(ctx, req)}
	}
}

func (m *searchModel) expansionsCmd(req expansion.Request) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return expansionsDoneMsg{resp: ctrl.FetchExpansions(ctx, req)}
	}
}

func (m *searchModel) openCmd(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return openDoneMsg{url: url, err: open(url)}
	}
}

// Update implements tea.Model.
func (m *searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 20
		return m, nil

	case searchDoneMsg:
		applied := m.sess.Awaits(msg.resp)
		expReq, ok := m.ctrl.Complete(m.sess, msg.resp)
		if applied && m.sess.Status == session.StatusSuccess {
			m.selected = 0
		}
		if ok {
			return m, m.expansionsCmd(expReq)
		}
		return m, nil

	case expansionsDoneMsg:
		m.ctrl.ApplyExpansions(m.sess, msg.resp)
		return m, nil

	case openDoneMsg:
		if msg.err != nil {
			m.notice = "Could not open " + msg.url + ": " + msg.err.Error()
		} else {
			m.notice = "Opened " + msg.url
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *searchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if key == "tab" {
		return m, m.toggleMode()
	}
	m.notice = ""

	if m.input.Focused() {
		switch key {
		case "enter":
			return m, m.submit(m.input.Value())
		case "esc":
			m.input.Blur()
			return m, nil
		case "up":
			m.recall(1)
			return m, nil
		case "down":
			m.recall(-1)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "/", "i":
		m.historyIdx = -1
		return m, m.input.Focus()
	case "right", "n", "l":
		if m.ctrl.NextPage(m.sess) {
			m.selected = 0
		}
	case "left", "p", "h":
		if m.ctrl.PrevPage(m.sess) {
			m.selected = 0
		}
	case "down", "j":
		if m.selected < len(m.sess.Visible())-1 {
			m.selected++
		}
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "o", "enter":
		return m, m.openSelected()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m, m.selectSuggestion(int(key[0] - '1'))
	}
	return m, nil
}

func (m *searchModel) submit(query string) tea.Cmd {
	m.historyIdx = -1
	req, ok := m.ctrl.Submit(m.sess, query, m.sess.Mode)
	if !ok {
		return nil
	}
	m.input.Blur()
	return m.executeCmd(req)
}

func (m *searchModel) toggleMode() tea.Cmd {
	req, ok := m.ctrl.SetMode(m.sess, m.sess.Mode.Next())
	m.selected = 0
	if !ok {
		return nil
	}
	return m.executeCmd(req)
}

func (m *searchModel) selectSuggestion(i int) tea.Cmd {
	suggestions := m.sess.Suggestions()
	if i < 0 || i >= len(suggestions) {
		return nil
	}
	req, ok := m.ctrl.SelectSuggestion(m.sess, suggestions[i])
	if !ok {
		return nil
	}
	m.input.SetValue(m.sess.Query)
	return m.executeCmd(req)
}

func (m *searchModel) openSelected() tea.Cmd {
	visible := m.sess.Visible()
	if m.open == nil || m.selected < 0 || m.selected >= len(visible) {
		return nil
	}
	return m.openCmd(visible[m.selected].URL)
}

// recall steps through history; step 1 is older, -1 newer. Stepping past the
// newest entry clears the input.
func (m *searchModel) recall(step int) {
	recent := m.ctrl.History().Recent()
	if len(recent) == 0 {
		return
	}
	idx := m.historyIdx + step
	switch {
	case idx < 0:
		m.historyIdx = -1
		m.input.SetValue("")
		return
	case idx >= len(recent):
		idx = len(recent) - 1
	}
	m.historyIdx = idx
	m.input.SetValue(recent[idx])
	m.input.CursorEnd()
}

// View implements tea.Model.
func (m *searchModel) View() string {
	if m.quitting {
		return ""
	}

	bar := m.renderModeBar()
	if m.sess.Searching() {
		bar += "  " + m.spinner.View()
	}

	var sections []string
	sections = append(sections, bar)
	sections = append(sections, m.input.View())
	sections = append(sections, m.renderDivider())

	sel := m.selected
	if m.input.Focused() {
		sel = -1
	}
	sections = append(sections, Render(m.sess, m.styles, RenderOptions{
		NoColor:  m.noColor,
		ShowURLs: true,
		Selected: sel,
	}))

	if m.notice != "" {
		sections = append(sections, m.styles.Warning.Render(m.notice))
	}
	sections = append(sections, m.renderHelp())

	return strings.Join(sections, "\n") + "\n"
}

func (m *searchModel) renderModeBar() string {
	var parts []string
	for _, mode := range client.Modes {
		label := mode.Title()
		if mode == m.sess.Mode {
			parts = append(parts, m.styles.Active.Render("● "+label))
		} else {
			parts = append(parts, m.styles.Dim.Render("○ "+label))
		}
	}
	return m.styles.Header.Render("factcheck") + "  " + strings.Join(parts, "  ")
}

func (m *searchModel) renderDivider() string {
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return m.styles.Border.Render(strings.Repeat("─", width))
}

func (m *searchModel) renderHelp() string {
	if m.input.Focused() {
		return m.styles.Dim.Render("enter search • tab mode • ↑/↓ history • esc results • ctrl+c quit")
	}
	help := "←/→ page • ↑/↓ select • o open • / search • tab mode • q quit"
	if n := len(m.sess.Suggestions()); n > 0 {
		if n > maxSuggestionKeys {
			n = maxSuggestionKeys
		}
		help = fmt.Sprintf("1-%d suggestion • ", n) + help
	}
	return m.styles.Dim.Render(help)
}
