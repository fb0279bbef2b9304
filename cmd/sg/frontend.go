package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gosuda/stargate/parser"
)

type model struct {
	app      appConfig
	viewport viewport.Model
	input    textinput.Model
	ready    bool
	status   string
	busy     bool
	exitCode int

	requests chan<- workerRequest
	events   <-chan tea.Msg

	lines   []string
	pending []string // continuation lines of an unfinished entry

	history []string
	histPos int

	// tab cycling state
	choices []string
	choice  int
}

var (
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	echoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
)

func newModel(app appConfig) model {
	ti := textinput.New()
	ti.Prompt = app.cfg.Prompt
	ti.CharLimit = 4096
	ti.Focus()
	return model{
		app:      app,
		viewport: viewport.New(80, 20),
		input:    ti,
		status:   "starting",
	}
}

func startWorker(app appConfig) tea.Cmd {
	return func() tea.Msg {
		requests := make(chan workerRequest)
		events := make(chan tea.Msg, 256)
		go runWorker(app, requests, events)
		return workerStartedMsg{requests: requests, events: events}
	}
}

func waitEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return workerStoppedMsg{}
		}
		return msg
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, startWorker(m.app))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		vh := msg.Height - 2
		if vh < 1 {
			vh = 1
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.ready = true
		m.refresh()
		return m, nil

	case workerStartedMsg:
		m.requests = msg.requests
		m.events = msg.events
		m.status = "ready"
		return m, waitEvent(m.events)

	case evalOutputMsg:
		m.appendLines(msg.out.Text)
		return m, waitEvent(m.events)

	case evalDoneMsg:
		m.busy = false
		m.status = "ready"
		r := msg.reply
		for _, line := range r.lines {
			m.appendLines(resultStyle.Render(line))
		}
		if r.err != nil {
			m.appendLines(errStyle.Render(r.err.Error()))
		}
		if r.quit {
			m.exitCode = r.code
			return m, tea.Quit
		}
		return m, waitEvent(m.events)

	case completionMsg:
		if msg.line != m.input.Value() || len(msg.candidates) == 0 {
			return m, waitEvent(m.events)
		}
		m.choices = msg.candidates
		m.choice = 0
		m.input.SetValue(m.choices[0])
		m.input.CursorEnd()
		m.status = fmt.Sprintf("%d matches", len(m.choices))
		return m, waitEvent(m.events)

	case workerStoppedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyTab {
		m.choices = nil
	}
	switch msg.Type {
	case tea.KeyCtrlC:
		if len(m.pending) > 0 || m.input.Value() != "" {
			m.pending = nil
			m.input.SetValue("")
			m.input.Prompt = m.app.cfg.Prompt
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyCtrlD:
		if m.input.Value() == "" && len(m.pending) == 0 {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyUp:
		if m.histPos > 0 {
			m.histPos--
			m.input.SetValue(m.history[m.histPos])
			m.input.CursorEnd()
		}
		return m, nil
	case tea.KeyDown:
		if m.histPos < len(m.history)-1 {
			m.histPos++
			m.input.SetValue(m.history[m.histPos])
		} else {
			m.histPos = len(m.history)
			m.input.SetValue("")
		}
		m.input.CursorEnd()
		return m, nil
	case tea.KeyTab:
		if m.busy || m.requests == nil {
			return m, nil
		}
		if len(m.choices) > 1 {
			m.choice = (m.choice + 1) % len(m.choices)
			m.input.SetValue(m.choices[m.choice])
			m.input.CursorEnd()
			return m, nil
		}
		return m, m.send(workerRequest{src: m.input.Value(), complete: true})
	case tea.KeyEnter:
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if m.busy || m.requests == nil {
		return m, nil
	}
	line := m.input.Value()
	m.appendLines(echoStyle.Render(m.input.Prompt + line))
	m.input.SetValue("")
	m.pending = append(m.pending, line)
	src := strings.Join(m.pending, "\n")

	if !strings.HasPrefix(strings.TrimSpace(src), ":") {
		if _, err := parser.ParseProgram(src); parser.IsIncomplete(err) {
			m.input.Prompt = contPrompt
			return m, nil
		}
	}
	m.pending = nil
	m.input.Prompt = m.app.cfg.Prompt
	if strings.TrimSpace(src) == "" {
		return m, nil
	}
	m.history = append(m.history, strings.ReplaceAll(src, "\n", " "))
	m.histPos = len(m.history)
	m.busy = true
	m.status = "running"
	return m, m.send(workerRequest{src: src})
}

func (m model) send(req workerRequest) tea.Cmd {
	requests := m.requests
	return func() tea.Msg {
		requests <- req
		return nil
	}
}

func (m model) View() string {
	if !m.ready {
		return "initializing..."
	}
	return strings.Join([]string{
		m.viewport.View(),
		m.input.View(),
		statusStyle.Render(m.status),
	}, "\n")
}

func (m *model) appendLines(text string) {
	m.lines = append(m.lines, strings.Split(text, "\n")...)
	m.refresh()
}

func (m *model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}
