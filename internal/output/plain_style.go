package output

// prefixStyle renders plain text behind an optional symbol prefix.
type prefixStyle string

// Render implements TextStyle.
func (s prefixStyle) Render(text string) string {
	return string(s) + text
}

// plainStyle returns the unstyled rendering of a semantic type. Diagnostics keep a symbol
// so they stay distinguishable without color.
func plainStyle(semantic SemanticType) TextStyle {
	switch semantic {
	case SemanticSuccess:
		return prefixStyle("✓ ")
	case SemanticWarning:
		return prefixStyle("⚠ ")
	case SemanticError:
		return prefixStyle("✗ ")
	case SemanticInfo:
		return prefixStyle("ℹ ")
	default:
		return prefixStyle("")
	}
}
