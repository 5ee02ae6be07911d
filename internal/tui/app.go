// internal/tui/app.go
//
// Chat front-end for the agent. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/seekwell/seekwell/internal/graph"
	"github.com/seekwell/seekwell/internal/logging"
)

const welcomeText = "Tell me about your career, paste a job posting, or ask to start an interview for an application."

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	speakerYouStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	speakerAgentStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#98C379"))
	gateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
)

// replyMsg carries the agent's answer to a sent message back into Update.
type replyMsg struct {
	reply string
	err   error
}

type chatLine struct {
	speaker string
	text    string
}

// App is the chat application model. In bubbletea, this holds ALL your state.
type App struct {
	agent  *graph.Agent
	logger *logging.Logger

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model

	history []chatLine
	waiting bool
	err     error

	width  int
	height int
	ready  bool
}

// NewApp creates the chat application around a wired agent.
func NewApp(agent *graph.Agent, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	input := textarea.New()
	input.Placeholder = "Type a message and press Enter..."
	input.Prompt = "┃ "
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	app := &App{
		agent:  agent,
		logger: logger,
		input:  input,
		spin:   spin,
	}
	app.history = append(app.history, chatLine{speaker: "agent", text: welcomeText})
	if agent.Phase() == graph.PhaseAwaitingFeedback {
		app.history = append(app.history, chatLine{speaker: "agent", text: resumeGateText(agent)})
	}
	return app
}

func resumeGateText(agent *graph.Agent) string {
	var sb strings.Builder
	sb.WriteString("We left off with an interview panel awaiting your feedback:\n")
	for _, a := range agent.Analysts() {
		sb.WriteString(fmt.Sprintf("\n- %s (%s): %s", a.Name, a.Role, a.Description))
	}
	sb.WriteString("\n\nReply with feedback to revise the panel, or say \"approve\" to start the interviews.")
	return sb.String()
}

// Run starts the interactive program and blocks until it exits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textarea.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		chatHeight := max(5, msg.Height-a.input.Height()-6)
		if !a.ready {
			a.viewport = viewport.New(max(20, msg.Width-4), chatHeight)
			a.ready = true
		} else {
			a.viewport.Width = max(20, msg.Width-4)
			a.viewport.Height = chatHeight
		}
		a.input.SetWidth(max(20, msg.Width-4))
		a.refreshViewport()
		return a, nil

	case replyMsg:
		a.waiting = false
		if msg.err != nil {
			a.err = msg.err
			a.logger.Error("turn failed", logrus.Fields{"error": msg.err.Error()})
		} else {
			a.err = nil
			a.history = append(a.history, chatLine{speaker: "agent", text: msg.reply})
		}
		a.refreshViewport()
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "enter":
			return a.sendCurrentInput()
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.viewport, cmd = a.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) sendCurrentInput() (tea.Model, tea.Cmd) {
	if a.waiting {
		return a, nil
	}
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return a, nil
	}
	a.input.Reset()
	a.history = append(a.history, chatLine{speaker: "you", text: text})
	a.waiting = true
	a.err = nil
	a.refreshViewport()
	return a, tea.Batch(a.spin.Tick, a.sendCmd(text))
}

func (a *App) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.agent.HandleMessage(context.Background(), text)
		return replyMsg{reply: reply, err: err}
	}
}

func (a *App) refreshViewport() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderHistory())
	a.viewport.GotoBottom()
}

func (a *App) renderHistory() string {
	var sb strings.Builder
	for i, line := range a.history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch line.speaker {
		case "you":
			sb.WriteString(speakerYouStyle.Render("You"))
		default:
			sb.WriteString(speakerAgentStyle.Render("SeekWell"))
		}
		sb.WriteString("\n")
		sb.WriteString(line.text)
	}
	return sb.String()
}

// View renders the current state to a string.
func (a *App) View() string {
	if !a.ready {
		return "Starting..."
	}
	header := headerStyle.Render("⬡ SEEKWELL")
	status := a.statusLine()
	footer := footerStyle.Render("Enter → send    Esc → quit")
	return strings.Join([]string{header, status, a.viewport.View(), a.input.View(), footer}, "\n")
}

func (a *App) statusLine() string {
	switch {
	case a.err != nil:
		return errStyle.Render(fmt.Sprintf("⚠ %v", a.err))
	case a.waiting:
		return a.spin.View() + " thinking..."
	case a.agent.Phase() == graph.PhaseAwaitingFeedback:
		return gateStyle.Render("Interview panel awaiting your feedback")
	}
	return ""
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
