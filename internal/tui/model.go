package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/domain"
)

// SessionPort is the TUI-facing subset of the conversation session.
type SessionPort interface {
	LoadDocument(ctx context.Context, name string, data []byte) error
	Ask(ctx context.Context, question string) (domain.Message, error)
	ClearChat()
	Snapshot() domain.Snapshot
}

type buildDoneMsg struct {
	name string
	err  error
}

type answerMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx         context.Context
	session     SessionPort
	input       textinput.Model
	viewport    viewport.Model
	spin        spinner.Model
	status      string
	busy        bool
	showSources bool
	initialPath string
	ready       bool
}

// New creates a chat model. ctx bounds every build and ask issued from the
// UI, so quitting the program cancels in-flight provider calls. If
// initialPath is non-empty, that document is loaded as soon as the program
// starts.
func New(ctx context.Context, session SessionPort, initialPath string) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /open <file>"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:         ctx,
		session:     session,
		input:       ti,
		viewport:    viewport.New(0, 0),
		spin:        sp,
		status:      "No document loaded. /open <file> to start.",
		initialPath: initialPath,
	}
}

// Init starts the cursor blink and, if a document path was given on the
// command line, kicks off its build.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initialPath != "" {
		cmds = append(cmds, m.spin.Tick, m.loadCmd(m.initialPath))
	}
	return tea.Batch(cmds...)
}

func (m Model) loadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return buildDoneMsg{name: name, err: err}
		}
		return buildDoneMsg{name: name, err: m.session.LoadDocument(m.ctx, name, data)}
	}
}

func (m Model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Ask(m.ctx, question)
		return answerMsg{err: err}
	}
}

// Update handles key, window, and pipeline-completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header + doc line, input frame, status
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case buildDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Loaded %s. Ask away.", msg.name)
		}
		m.refresh()
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = "Answered. Ctrl+S toggles sources."
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+s":
			m.showSources = !m.showSources
			m.refresh()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "enter":
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.Reset()
			return m.submit(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	switch {
	case strings.HasPrefix(line, "/open "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/open "))
		if path == "" {
			m.status = "Usage: /open <file>"
			return m, nil
		}
		m.busy = true
		m.status = "Indexing " + filepath.Base(path) + "…"
		return m, tea.Batch(m.spin.Tick, m.loadCmd(path))
	case line == "/clear":
		m.session.ClearChat()
		m.status = "Chat cleared."
		m.refresh()
		return m, nil
	case line == "/quit":
		return m, tea.Quit
	case strings.HasPrefix(line, "/"):
		m.status = "Commands: /open <file>, /clear, /quit"
		return m, nil
	default:
		if !m.session.Snapshot().Ready {
			m.status = "Load a document first: /open <file>"
			return m, nil
		}
		m.busy = true
		m.status = "Thinking…"
		return m, tea.Batch(m.spin.Tick, m.askCmd(line))
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.session.Snapshot(), m.showSources, m.viewport.Width))
	m.viewport.GotoBottom()
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	snap := m.session.Snapshot()

	header := headerStyle.Render("Document Assistant")
	doc := "no document"
	if snap.DocumentName != "" {
		doc = snap.DocumentName
		if !snap.Ready {
			doc += " (building)"
		}
	}
	docLine := docStyle.Render(doc)

	status := m.status
	if m.busy {
		status = m.spin.View() + " " + status
	}

	return header + "  " + docLine + "\n" +
		transcriptStyle.Render(m.viewport.View()) + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(status)
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	docStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func renderTranscript(snap domain.Snapshot, showSources bool, width int) string {
	if len(snap.Messages) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, msg := range snap.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := userStyle.Render("You")
		if msg.Role == domain.RoleAssistant {
			label = assistantStyle.Render("Assistant")
		}
		b.WriteString(label + ": " + msg.Content)
		if msg.Role == domain.RoleAssistant && len(msg.Sources) > 0 {
			if showSources {
				for _, src := range msg.Sources {
					b.WriteString("\n" + sourceStyle.Render(fmt.Sprintf("  [segment %d] %s", src.Position+1, trim(src.Text, width))))
				}
			} else {
				b.WriteString("\n" + sourceStyle.Render(fmt.Sprintf("  (%d sources)", len(msg.Sources))))
			}
		}
	}
	return b.String()
}

func trim(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	limit := width - 16
	if limit < 20 {
		limit = 20
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
