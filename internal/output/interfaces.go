// Package output provides the console printer used by calcshell sessions.
// Styling is injected through StyleProvider so the printer never depends on the theme package.
package output

// StyleProvider is implemented by styling services such as the theme package.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type
	// ("info", "error", "result", "command", ...).
	GetStyle(semantic string) TextStyle

	// IsAvailable reports whether the provider can style text. When it returns false the
	// printer falls back to plain text.
	IsAvailable() bool
}

// TextStyle represents the capability to render text with styling.
type TextStyle interface {
	Render(text string) string
}

// Mode selects how a Printer renders its output.
type Mode int

const (
	// ModeStyled renders through the StyleProvider when one is available.
	ModeStyled Mode = iota

	// ModePlain renders plain text with symbol prefixes for diagnostics.
	ModePlain

	// ModeJSON writes one JSON object per output event, for scripted batch runs.
	ModeJSON
)

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text such as usage hints.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents recoverable problems, such as a failed history write.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents command diagnostics.
	SemanticError SemanticType = "error"

	// SemanticCommand represents command names and echoed input lines.
	SemanticCommand SemanticType = "command"
	// SemanticResult represents a calculation result.
	SemanticResult SemanticType = "result"

	// SemanticHighlight represents the active history file status line.
	SemanticHighlight SemanticType = "highlight"
	// SemanticBold represents the banner title.
	SemanticBold SemanticType = "bold"
)
