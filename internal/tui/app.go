package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	cerrors "github.com/tessro/cassette/internal/errors"
	"github.com/tessro/cassette/internal/session"
	"github.com/tessro/cassette/internal/tui/components"
	"github.com/tessro/cassette/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelPlaylist Panel = iota
	PanelHistory
)

const (
	// DefaultRefreshRate redraws the progress bar between media events.
	DefaultRefreshRate = 250 * time.Millisecond

	errorTTL   = 5 * time.Second
	messageTTL = 3 * time.Second
)

// Options configures the TUI.
type Options struct {
	RefreshRate time.Duration
	Theme       string
	// Initial events are handled once the program starts, e.g. files named
	// on the command line.
	Initial []session.Event
}

// Model is the main TUI model. The session is only touched from Update.
type Model struct {
	ctx         context.Context
	sess        *session.Session
	loop        *session.Loop
	refreshRate time.Duration
	initial     []session.Event

	width        int
	height       int
	focusedPanel Panel

	snap  session.Snapshot
	title string

	// Components
	nowPlaying   *components.NowPlaying
	playlistView *components.Playlist
	historyView  *components.History

	// Overlays
	showHelp bool
	showAdd  bool
	addInput textinput.Model

	// Status bar
	message       string
	messageExpiry time.Time
	lastError     error
	errorExpiry   time.Time

	quitting bool
}

// NewModel creates a new TUI model. Media events and watched-folder files
// posted to loop are fed into sess.
func NewModel(ctx context.Context, sess *session.Session, loop *session.Loop, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "File, folder or https://open.spotify.com/track/..."
	ti.CharLimit = 512
	ti.Width = 50

	refresh := opts.RefreshRate
	if refresh <= 0 {
		refresh = DefaultRefreshRate
	}
	styles.SetTheme(opts.Theme)

	return Model{
		ctx:          ctx,
		sess:         sess,
		loop:         loop,
		refreshRate:  refresh,
		initial:      opts.Initial,
		snap:         sess.Snapshot(),
		title:        sess.Title(),
		nowPlaying:   components.NewNowPlaying(),
		playlistView: components.NewPlaylist(),
		historyView:  components.NewHistory(),
		addInput:     ti,
	}
}

// Messages
type tickMsg time.Time

// eventMsg carries a session event into Update.
type eventMsg struct {
	event session.Event
}

// loopEventMsg is an event taken from the loop; the next wait is scheduled
// after it is handled.
type loopEventMsg struct {
	event session.Event
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForEvent() tea.Cmd {
	if m.loop == nil {
		return nil
	}
	events, ctx := m.loop.Events(), m.ctx
	return func() tea.Msg {
		select {
		case ev := <-events:
			return loopEventMsg{event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) runJob(job session.Job) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ev := job(ctx)
		if ev == nil {
			return nil
		}
		return eventMsg{event: ev}
	}
}

func emit(ev session.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: ev}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.tick(),
		m.waitForEvent(),
		tea.SetWindowTitle(m.title),
	}
	for _, ev := range m.initial {
		cmds = append(cmds, emit(ev))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		if now.After(m.errorExpiry) {
			m.lastError = nil
		}
		if now.After(m.messageExpiry) {
			m.message = ""
		}
		m.snap = m.sess.Snapshot()
		return m, m.tick()

	case eventMsg:
		return m.handle(msg.event)

	case loopEventMsg:
		next, cmd := m.handle(msg.event)
		return next, tea.Batch(cmd, next.(Model).waitForEvent())
	}

	// Forward other messages to textinput when the prompt is open
	if m.showAdd {
		var inputCmd tea.Cmd
		m.addInput, inputCmd = m.addInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

// handle feeds one event into the session and applies the notice.
func (m Model) handle(ev session.Event) (tea.Model, tea.Cmd) {
	n := m.sess.Handle(m.ctx, ev)
	return m.apply(n)
}

func (m Model) execute(cmd session.Command) (tea.Model, tea.Cmd) {
	return m.handle(session.CommandEvent{Command: cmd})
}

func (m Model) apply(n session.Notice) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if n.Err != nil {
		m.lastError = n.Err
		m.errorExpiry = time.Now().Add(errorTTL)
	}
	// Multi-line messages (listings, usage) do not fit the status bar.
	if n.Message != "" && !strings.Contains(n.Message, "\n") {
		m.message = n.Message
		m.messageExpiry = time.Now().Add(messageTTL)
	}
	for _, job := range n.Jobs {
		cmds = append(cmds, m.runJob(job))
	}

	m.snap = m.sess.Snapshot()
	m.playlistView.Clamp(len(m.snap.Entries))
	if title := m.sess.Title(); title != m.title {
		m.title = title
		cmds = append(cmds, tea.SetWindowTitle(title))
	}

	if n.Quit {
		m.quitting = true
		cmds = append(cmds, tea.Quit)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	// Add prompt
	if m.showAdd {
		return m.handleAddKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "a":
		m.showAdd = true
		m.addInput.SetValue("")
		m.addInput.Focus()
		return m, textinput.Blink

	case "tab", "shift+tab":
		m.focusedPanel = (m.focusedPanel + 1) % 2
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m.execute(session.Cmd(session.CmdToggle))
	case "right":
		return m.execute(session.Cmd(session.CmdForward))
	case "left":
		return m.execute(session.Cmd(session.CmdRewind))
	case "up":
		return m.execute(session.Cmd(session.CmdPrevious))
	case "down":
		return m.execute(session.Cmd(session.CmdNext))
	case "r":
		return m.execute(session.Command{Kind: session.CmdRepeat, Index: -1, Switch: session.SwitchToggle})
	case "s":
		return m.execute(session.Command{Kind: session.CmdShuffle, Index: -1, Switch: session.SwitchToggle})
	case "+", "=":
		return m.execute(session.Command{Kind: session.CmdVolume, Index: -1, Volume: m.sess.Volume() + 5})
	case "-":
		return m.execute(session.Command{Kind: session.CmdVolume, Index: -1, Volume: m.sess.Volume() - 5})
	case "c":
		return m.execute(session.Cmd(session.CmdClear))
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelPlaylist:
		switch msg.String() {
		case "j":
			m.playlistView.SelectNext(len(m.snap.Entries))
		case "k":
			m.playlistView.SelectPrev()
		case "g":
			m.playlistView.Select(m.snap.State.CurrentIndex, len(m.snap.Entries))
		case "enter":
			if len(m.snap.Entries) > 0 {
				cmd := session.Cmd(session.CmdPlay)
				cmd.Index = m.playlistView.Selected()
				return m.execute(cmd)
			}
		case "x", "delete":
			if len(m.snap.Entries) > 0 {
				cmd := session.Cmd(session.CmdRemove)
				cmd.Index = m.playlistView.Selected()
				return m.execute(cmd)
			}
		}
	case PanelHistory:
		switch msg.String() {
		case "j":
			m.historyView.ScrollDown()
		case "k":
			m.historyView.ScrollUp()
		}
	}

	return m, nil
}

func (m Model) handleAddKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showAdd = false
		m.addInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.addInput.Value())
		m.showAdd = false
		m.addInput.Blur()
		if value == "" {
			return m, nil
		}
		// One entry per prompt so paths may contain spaces.
		return m.execute(session.Command{Kind: session.CmdAdd, Index: -1, Args: []string{value}})
	}

	var inputCmd tea.Cmd
	m.addInput, inputCmd = m.addInput.Update(msg)
	return m, inputCmd
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showAdd {
		return m.renderAdd()
	}

	// Left: Now Playing (top), Playlist (bottom). Right: Shuffle History.
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 3

	nowPlaying := m.nowPlaying.Render(m.snap, leftWidth-2, topHeight-2, false)
	playlist := m.playlistView.Render(m.snap.Entries, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelPlaylist)
	history := m.historyView.Render(m.snap.History, m.snap.Entries, m.snap.State.IsShuffling,
		rightWidth-2, m.height-5, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, playlist)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, history)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  a:add  space:play/pause  ←/→:seek  ↑/↓:prev/next  r:repeat  s:shuffle")

	switch {
	case m.lastError != nil:
		text := "Error: " + m.lastError.Error()
		if suggestion := cerrors.GetSuggestion(m.lastError); suggestion != "" {
			text += " (" + suggestion + ")"
		}
		status = styles.ErrorText.Render(styles.Truncate(text, m.width-2))
	case m.message != "":
		status = styles.Muted.Render(styles.Truncate(m.message, m.width-2))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Cassette - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  a            Add file, folder or track link
  c            Clear playlist
  Tab          Switch panel

  Playback
  ────────
  Space        Play/Pause
  ←/→          Seek back/forward
  ↑            Previous track
  ↓            Next track
  r            Toggle repeat
  s            Toggle shuffle
  +/=, -       Volume up/down

  Playlist Panel
  ──────────────
  j/k          Move selection
  g            Select current track
  Enter        Play selected
  x, Delete    Remove selected

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderAdd() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Add to playlist"))
	b.WriteString("\n\n")
	b.WriteString(m.addInput.View())
	b.WriteString("\n\n")
	b.WriteString(styles.Dim.Render("Enter:add  Esc:cancel"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, sess *session.Session, loop *session.Loop, opts Options) error {
	model := NewModel(ctx, sess, loop, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
