package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Printer writes session output: results, diagnostics, menus and echoed script lines.
type Printer struct {
	styles StyleProvider
	writer io.Writer
	mode   Mode

	mu sync.Mutex
}

// NewPrinter creates a Printer writing styled output to os.Stdout unless options say otherwise.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeStyled,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Println writes text followed by a newline. Empty lines only shape terminal layout and are
// dropped in JSON mode.
func (p *Printer) Println(text string) {
	if p.mode == ModeJSON && text == "" {
		return
	}
	p.output(SemanticPlain, text, true)
}

// Info writes an informational line, such as a usage hint.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Warning writes a warning line.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error writes a diagnostic line.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Result writes a calculation result line.
func (p *Printer) Result(text string) {
	p.output(SemanticResult, text, true)
}

// Highlight writes highlighted text without a newline.
func (p *Printer) Highlight(text string) {
	p.output(SemanticHighlight, text, false)
}

// Bold writes bold text without a newline.
func (p *Printer) Bold(text string) {
	p.output(SemanticBold, text, false)
}

// Prompt echoes one input line after the styled prompt, as if it had been typed.
func (p *Printer) Prompt(prompt, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == ModeJSON {
		p.write(p.renderJSON(SemanticCommand, line))
		return
	}
	p.write(p.render(SemanticCommand, prompt, false) + line + "\n")
}

func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == ModeJSON {
		p.write(p.renderJSON(semantic, text))
		return
	}
	p.write(p.render(semantic, text, addNewline))
}

func (p *Printer) write(text string) {
	_, _ = fmt.Fprint(p.writer, text)
}

// render styles text through the provider, or falls back to the plain symbol prefixes.
func (p *Printer) render(semantic SemanticType, text string, addNewline bool) string {
	var style TextStyle
	if p.mode == ModeStyled && p.styles != nil {
		style = p.styles.GetStyle(string(semantic))
	} else {
		style = plainStyle(semantic)
	}

	result := style.Render(text)
	if addNewline && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// jsonEvent is one line of JSON output.
type jsonEvent struct {
	Type    SemanticType `json:"type"`
	Message string       `json:"message"`
}

func (p *Printer) renderJSON(semantic SemanticType, text string) string {
	data, err := json.Marshal(jsonEvent{Type: semantic, Message: text})
	if err != nil {
		return text + "\n"
	}
	return string(data) + "\n"
}

// String returns a string representation for debugging.
func (p *Printer) String() string {
	return fmt.Sprintf("Printer{mode: %v, styled: %t, writer: %T}", p.mode, p.styles != nil, p.writer)
}
