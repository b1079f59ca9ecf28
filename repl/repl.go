// Package repl implements the interactive Read-Eval-Print Loop for the
// Sema assembler language.
//
// The REPL provides an interactive interface for users to enter
// S-expressions, have them compiled and evaluated, and see the results
// immediately. It uses the Charm libraries (Bubbletea, Bubbles, and
// Lipgloss) to create a modern terminal interface with syntax highlighting
// and command history.
//
// Key features:
//   - Interactive input and evaluation against a persistent session
//   - Multiline input keyed on unbalanced parentheses
//   - Command history with styled output for results and errors
//
// The main entry point is the Start function.
package repl

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dr8co/sema/interp"
	"github.com/dr8co/sema/lexer"
	"github.com/dr8co/sema/token"
)

const (
	// Prompt is the default prompt for the REPL.
	Prompt = ">> "

	// ContPrompt is the continuation prompt used in multiline input mode.
	ContPrompt = ".. "
)

// Options contains configuration options for the REPL.
type Options struct {
	NoColor bool // Disable syntax highlighting and colored output
	Debug   bool // Enable debug mode with more verbose output
}

// Start initializes and runs the REPL with the given username and options.
func Start(username string, options Options) {
	p := tea.NewProgram(initialModel(username, options))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

// Styling
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	atomStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	literalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	stringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	delimiterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))
)

// keywords highlighted by the REPL.
var keywordNames = map[string]bool{
	"def": true, "fun": true, "lambda": true, "quote": true, "if": true,
	"wrap": true, "def_syntax": true, "extend_syntax": true, "export": true,
	"label": true, "assemble": true, "import": true,
}

// evalResultMsg carries the outcome of an async evaluation.
type evalResultMsg struct {
	output  string
	isError bool
	elapsed time.Duration
}

// model represents the state of the application.
type model struct {
	textInput       textinput.Model
	history         []historyEntry
	session         *interp.Session
	username        string
	evaluating      bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
}

// historyEntry represents a single entry in the REPL history.
type historyEntry struct {
	input          string
	output         string
	isError        bool
	evaluationTime time.Duration
}

// applyStyle applies a lipgloss style to a string, respecting the NoColor
// option.
func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

// initialModel creates a new model with default values.
func initialModel(username string, options Options) model {
	ti := textinput.New()
	ti.Placeholder = "Enter an expression"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput: ti,
		history:   []historyEntry{},
		session:   interp.NewSession(),
		username:  username,
		spinner:   s,
		options:   options,
	}
}

// Init is the first function that will be called.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced checks if parentheses are balanced in the input.
func isBalanced(input string) bool {
	depth := 0
	inString := false
	quoted := false

	for _, char := range input {
		switch {
		case quoted:
			quoted = false
		case char == '\\' && inString:
			quoted = true
		case char == '"':
			inString = !inString
		case inString:
		case char == '(':
			depth++
		case char == ')':
			if depth == 0 {
				return false
			}
			depth--
		}
	}

	return depth == 0
}

// evalCmd evaluates source code asynchronously against the session.
func evalCmd(input string, session *interp.Session) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		result, err := session.Eval(input)
		elapsed := time.Since(start)

		if err != nil {
			return evalResultMsg{output: "!! " + err.Error(), isError: true, elapsed: elapsed}
		}
		return evalResultMsg{output: result.Inspect(), elapsed: elapsed}
	}
}

// Update handles all the updates to our model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			output:         msg.output,
			isError:        msg.isError,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit

		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline && m.multilineBuffer != "" {
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					m.isMultiline = false
					m.evaluating = true
					m.currentInput = buffer
					m.textInput.SetValue("")
					return m, evalCmd(buffer, m.session)
				}
				m.isMultiline = false
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")

				if isBalanced(m.multilineBuffer) {
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					m.isMultiline = false
					m.evaluating = true
					m.currentInput = buffer
					return m, evalCmd(buffer, m.session)
				}
				return m, nil
			}

			if !isBalanced(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}

			m.evaluating = true
			m.currentInput = input
			m.textInput.SetValue("")
			return m, evalCmd(input, m.session)
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}

	return m, cmd
}

// View renders the current UI.
func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " Sema Macro Assembler REPL "))
	s.WriteString("\n")

	if m.username != "" {
		s.WriteString(fmt.Sprintf("\nHello %s! Feel free to type in expressions\n", m.username))
	}
	s.WriteString("\n")

	for _, entry := range m.history {
		lines := strings.Split(entry.input, "\n")
		for i, line := range lines {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(m.highlightCode(line))
			s.WriteString("\n")
		}

		if entry.isError {
			s.WriteString(m.applyStyle(errorStyle, entry.output))
		} else {
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}

		if entry.evaluationTime > 10*time.Millisecond {
			s.WriteString(m.applyStyle(historyStyle, fmt.Sprintf(" (%.2fs)", entry.evaluationTime.Seconds())))
		}

		s.WriteString("\n\n")
	}

	if m.evaluating {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.highlightCode(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" Evaluating...")
		s.WriteString("\n\n")
	}

	if m.isMultiline && !m.evaluating {
		s.WriteString(m.applyStyle(historyStyle, "Current multiline input:\n"))
		s.WriteString(m.highlightCode(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.evaluating {
		prompt := Prompt
		if m.isMultiline {
			prompt = ContPrompt
		}
		if m.options.NoColor {
			m.textInput.Prompt = prompt
		} else {
			m.textInput.Prompt = promptStyle.Render(prompt)
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	helpText := "\nPress Esc or Ctrl+C/D to exit"
	if m.isMultiline {
		helpText += " | Multiline mode: Enter empty line to evaluate or continue typing"
	} else {
		helpText += " | Multiline input supported for unbalanced parentheses"
	}
	s.WriteString(m.applyStyle(historyStyle, helpText))

	return s.String()
}

// highlightCode applies token-driven syntax highlighting to a line of
// source code.
func (m model) highlightCode(source string) string {
	if m.options.NoColor {
		return source
	}

	l := lexer.New(source)
	var s strings.Builder

	last := ""
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}

		if needsSpace(last, tok) {
			s.WriteString(" ")
		}

		switch tok.Type {
		case token.LPAREN, token.RPAREN:
			s.WriteString(delimiterStyle.Render(tok.Literal))
		case token.ATOM:
			if keywordNames[tok.Literal] {
				s.WriteString(keywordStyle.Render(tok.Literal))
			} else {
				s.WriteString(atomStyle.Render(tok.Literal))
			}
		case token.INT, token.HEX, token.BITS, token.BOOLEAN:
			s.WriteString(literalStyle.Render(tok.Literal))
		case token.STRING:
			s.WriteString(stringStyle.Render(fmt.Sprintf("%q", tok.Literal)))
		case token.CHAR:
			s.WriteString(stringStyle.Render("'" + tok.Literal + "'"))
		default:
			s.WriteString(tok.Literal)
		}

		last = tok.Literal
	}

	return s.String()
}

// needsSpace decides where to re-insert spacing between rendered tokens.
func needsSpace(last string, tok token.Token) bool {
	if last == "" || last == "(" {
		return false
	}
	if tok.Type == token.RPAREN {
		return false
	}
	return true
}
