// Package theme turns the embedded YAML theme files into lipgloss styles for the console
// printer and the history table.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"

	"calcshell/internal/ledger"
	"calcshell/internal/output"
)

// PlainName is the theme used whenever styling is unavailable.
const PlainName = "plain"

// Theme defines color schemes and styles for text rendering.
type Theme struct {
	Name      string
	Command   lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Highlight lipgloss.Style
	Bold      lipgloss.Style
	Result    lipgloss.Style

	TableHeader     lipgloss.Style
	TableCell       lipgloss.Style
	TableBorder     lipgloss.Style
	TableDiagnostic lipgloss.Style
}

// textStyle adapts a lipgloss style to output.TextStyle.
type textStyle struct {
	style lipgloss.Style
}

func (s textStyle) Render(text string) string {
	return s.style.Render(text)
}

// IsPlain reports whether the theme applies no styling at all.
func (t *Theme) IsPlain() bool {
	return t == nil || t.Name == PlainName
}

// IsAvailable implements output.StyleProvider. The plain theme reports false so the printer
// falls back to its prefixed plain rendering.
func (t *Theme) IsAvailable() bool {
	return !t.IsPlain()
}

// GetStyle implements output.StyleProvider.
func (t *Theme) GetStyle(semantic string) output.TextStyle {
	if t.IsPlain() {
		return textStyle{style: lipgloss.NewStyle()}
	}
	switch output.SemanticType(semantic) {
	case output.SemanticCommand:
		return textStyle{style: t.Command}
	case output.SemanticSuccess:
		return textStyle{style: t.Success}
	case output.SemanticError:
		return textStyle{style: t.Error}
	case output.SemanticWarning:
		return textStyle{style: t.Warning}
	case output.SemanticInfo:
		return textStyle{style: t.Info}
	case output.SemanticHighlight:
		return textStyle{style: t.Highlight}
	case output.SemanticBold:
		return textStyle{style: t.Bold}
	case output.SemanticResult:
		return textStyle{style: t.Result}
	default:
		return textStyle{style: lipgloss.NewStyle()}
	}
}

// TableStyle returns the history table style for this theme.
func (t *Theme) TableStyle() ledger.TableStyle {
	if t.IsPlain() {
		return ledger.PlainTableStyle()
	}
	return ledger.TableStyle{
		Header:     t.TableHeader.Padding(0, 1),
		Cell:       t.TableCell.Padding(0, 1),
		Border:     t.TableBorder,
		Diagnostic: t.TableDiagnostic.Padding(0, 1),
	}
}

// CreateList creates a bulleted list with theme styling applied.
func (t *Theme) CreateList(items ...string) *list.List {
	l := list.New().Enumerator(list.Bullet)
	if !t.IsPlain() {
		l = l.EnumeratorStyle(t.Highlight.PaddingRight(1))
	}
	for _, item := range items {
		l.Item(item)
	}
	return l
}

func plainTheme() *Theme {
	return &Theme{
		Name:            PlainName,
		Command:         lipgloss.NewStyle(),
		Success:         lipgloss.NewStyle(),
		Error:           lipgloss.NewStyle(),
		Warning:         lipgloss.NewStyle(),
		Info:            lipgloss.NewStyle(),
		Highlight:       lipgloss.NewStyle(),
		Bold:            lipgloss.NewStyle(),
		Result:          lipgloss.NewStyle(),
		TableHeader:     lipgloss.NewStyle(),
		TableCell:       lipgloss.NewStyle(),
		TableBorder:     lipgloss.NewStyle(),
		TableDiagnostic: lipgloss.NewStyle(),
	}
}
