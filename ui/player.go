package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/muesli/reflow/truncate"

	"github.com/lectify/lectify/lecture"
	"github.com/lectify/lectify/tts"
)

const statusMessageTimeout = 3 * time.Second

type keyMap struct {
	PlayPause key.Binding
	Stop      key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Copy      key.Binding
	Edit      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Copy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Stop, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Stop, k.Faster, k.Slower},
		{k.Copy, k.Edit, k.Help, k.Quit},
	}
}

type editorFinishedMsg struct{ err error }

// playerModel is the playback screen: subtitle (or code overlay), progress,
// and transport state, all driven by relay messages from the driver.
type playerModel struct {
	cfg    Config
	st     styles
	keys   keyMap
	help   help.Model
	bar    progress.Model
	spin   spinner.Model
	driver *tts.Driver

	lec      *lecture.Lecture
	segments []lecture.Segment

	width  int
	height int

	subtitle string
	wordIdx  int
	codeIdx  int
	codeView string

	pct     float64
	elapsed time.Duration
	total   time.Duration

	status string
	err    error
}

func newPlayerModel(cfg Config, lec *lecture.Lecture, segments []lecture.Segment, driver *tts.Driver) playerModel {
	m := playerModel{
		cfg:      cfg,
		st:       newStyles(cfg.HighlightMode),
		keys:     defaultKeyMap(),
		help:     help.New(),
		bar:      progress.New(progress.WithDefaultGradient()),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		driver:   driver,
		lec:      lec,
		segments: segments,
		wordIdx:  -1,
		codeIdx:  -1,
		width:    80,
		height:   24,
	}
	if chunks := driver.Chunks(); len(chunks) > 0 {
		m.subtitle = chunks[0].Text
	}
	return m
}

func (m playerModel) Init() tea.Cmd {
	// Reading aloud begins as soon as the player opens.
	play := func() tea.Msg {
		if err := m.driver.Play(); err != nil {
			return errMsg{err}
		}
		return nil
	}
	return tea.Batch(play, m.spin.Tick)
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(10, msg.Width-24)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case chunkShownMsg:
		m.subtitle = string(msg)
		m.wordIdx = -1
		return m, nil

	case wordHighlightedMsg:
		m.wordIdx = int(msg)
		return m, nil

	case codeBlockShownMsg:
		m.codeIdx = int(msg)
		m.codeView = ""
		if m.lec != nil && m.codeIdx >= 0 && m.codeIdx < len(m.lec.CodeBlocks) {
			view, err := renderCodeBlock(m.lec.CodeBlocks[m.codeIdx], m.contentWidth(), m.cfg.GlamourStyle)
			if err != nil {
				log.Warn("unable to render code block", "index", m.codeIdx, "err", err)
			} else {
				m.codeView = view
			}
		}
		return m, nil

	case codeBlockHiddenMsg:
		m.codeIdx = -1
		m.codeView = ""
		return m, nil

	case progressMsg:
		m.pct = float64(msg)
		return m, nil

	case timeUpdateMsg:
		m.elapsed = msg.elapsed
		m.total = msg.total
		return m, nil

	case playbackEndedMsg:
		m.wordIdx = -1
		return m.withStatus("finished")

	case lectureReloadedMsg:
		m.lec = msg.lec
		m.segments = msg.segments
		if err := m.driver.Load(msg.segments); err != nil {
			m.err = err
			return m, nil
		}
		m.codeIdx = -1
		m.codeView = ""
		m.wordIdx = -1
		m.pct = 0
		if chunks := m.driver.Chunks(); len(chunks) > 0 {
			m.subtitle = chunks[0].Text
		} else {
			m.subtitle = ""
		}
		return m.withStatus("reloaded")

	case editorFinishedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.cfg.Watch {
			// The file watcher delivers the reload.
			return m, nil
		}
		return m, m.reloadCmd()

	case statusMessageTimeoutMsg:
		m.status = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m playerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		if err := m.driver.TogglePlayPause(); err != nil {
			m.err = err
		}
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if err := m.driver.Stop(); err != nil {
			m.err = err
			return m, nil
		}
		m.pct = 0
		m.elapsed = 0
		return m.withStatus("stopped")

	case key.Matches(msg, m.keys.Faster):
		return m.adjustRate(0.25)

	case key.Matches(msg, m.keys.Slower):
		return m.adjustRate(-0.25)

	case key.Matches(msg, m.keys.Copy):
		return m.copyCurrent()

	case key.Matches(msg, m.keys.Edit):
		if m.cfg.Path == "" {
			return m.withStatus("no file to edit")
		}
		c, err := editor.Cmd("Lectify", m.cfg.Path)
		if err != nil {
			m.err = err
			return m, nil
		}
		c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
		return m, tea.ExecProcess(c, func(err error) tea.Msg {
			return editorFinishedMsg{err}
		})

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

// adjustRate nudges the speech rate; the driver applies it from the next
// chunk onward.
func (m playerModel) adjustRate(delta float64) (tea.Model, tea.Cmd) {
	m.driver.SetRate(m.driver.Rate() + delta)
	return m.withStatus(fmt.Sprintf("rate %.2fx", m.driver.Rate()))
}

func (m playerModel) copyCurrent() (tea.Model, tea.Cmd) {
	if m.codeIdx >= 0 && m.lec != nil && m.codeIdx < len(m.lec.CodeBlocks) {
		if err := clipboard.WriteAll(m.lec.CodeBlocks[m.codeIdx].Source); err != nil {
			m.err = err
			return m, nil
		}
		return m.withStatus("copied code block")
	}
	if m.subtitle == "" {
		return m, nil
	}
	if err := clipboard.WriteAll(m.subtitle); err != nil {
		m.err = err
		return m, nil
	}
	return m.withStatus("copied")
}

// reloadCmd re-parses the lecture off the event loop.
func (m playerModel) reloadCmd() tea.Cmd {
	path := m.cfg.Path
	return func() tea.Msg {
		src, err := os.ReadFile(path)
		if err != nil {
			return errMsg{err}
		}
		lec, err := lecture.Parse(src)
		if err != nil {
			return errMsg{err}
		}
		return lectureReloadedMsg{
			lec:      lec,
			segments: lecture.NewSegmenter().Segment(lec.Items),
		}
	}
}

func (m playerModel) withStatus(s string) (tea.Model, tea.Cmd) {
	m.status = s
	return m, tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{}
	})
}

func (m playerModel) contentWidth() int {
	w := m.width - 4
	if m.cfg.GlamourMaxWidth > 0 && w > int(m.cfg.GlamourMaxWidth) {
		w = int(m.cfg.GlamourMaxWidth)
	}
	return max(w, 10)
}

func (m playerModel) View() string {
	title := "Lectify"
	if m.lec != nil && m.lec.Title != "" {
		title = m.lec.Title
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		m.st.title.Render(truncate.StringWithTail(title, uint(max(20, m.width-20)), "…")),
		m.st.titleNote.Render(m.cfg.Engine),
	)

	var body string
	if m.codeView != "" {
		body = m.st.codeFrame.Render(m.codeView)
	} else {
		body = m.st.subtitle.Render(renderSubtitle(m.subtitle, m.wordIdx, m.contentWidth(), m.st))
	}

	bodyHeight := max(1, m.height-5)
	body = lipgloss.Place(m.width, bodyHeight, lipgloss.Left, lipgloss.Center, body)

	status := m.statusLine()

	helpView := m.help.View(m.keys)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, helpView)
}

func (m playerModel) statusLine() string {
	icon := "⏹"
	switch m.driver.Status() {
	case tts.StatusPlaying:
		icon = m.spin.View()
	case tts.StatusPaused:
		icon = "⏸"
	}

	left := fmt.Sprintf("%s %s / %s", icon, formatDuration(m.elapsed), formatDuration(m.total))
	line := left + " " + m.bar.ViewAs(m.pct)

	if m.err != nil {
		note := truncate.StringWithTail(m.err.Error(), uint(max(10, m.width-len(left)-4)), "…")
		line = left + " " + m.st.errText.Render(note)
	} else if m.status != "" {
		line += " " + m.st.statusNote.Render(m.status)
	}

	return m.st.statusBar.Width(m.width).Render(line)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
