package theme

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"calcshell/internal/data/embedded"
	"calcshell/internal/logger"
	"calcshell/internal/output"
)

// Service holds the themes loaded from the embedded YAML files.
type Service struct {
	themes map[string]*Theme
}

// NewService creates a Service with every embedded theme loaded. A theme file that fails to
// parse is replaced by an unstyled theme of the same name.
func NewService() *Service {
	s := &Service{themes: make(map[string]*Theme)}
	s.loadThemesFromYAML()
	return s
}

func (s *Service) loadThemesFromYAML() {
	themeFiles := map[string][]byte{
		"default": embedded.DefaultThemeData,
		"dark":    embedded.DarkThemeData,
		"light":   embedded.LightThemeData,
		PlainName: embedded.PlainThemeData,
	}

	for name, data := range themeFiles {
		theme, err := parseTheme(data)
		if err != nil {
			logger.Error("Failed to load theme", "theme", name, "error", err)
			fallback := plainTheme()
			fallback.Name = name
			s.themes[name] = fallback
			continue
		}
		s.themes[name] = theme
	}

	// Ensure we always have a plain theme as fallback
	s.themes[PlainName] = plainTheme()
}

func parseTheme(data []byte) (*Theme, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, fmt.Errorf("theme file has no name")
	}
	return convert(&file.Config), nil
}

func convert(config *Config) *Theme {
	return &Theme{
		Name:            config.Name,
		Command:         createStyle(config.Styles.Command),
		Success:         createStyle(config.Styles.Success),
		Error:           createStyle(config.Styles.Error),
		Warning:         createStyle(config.Styles.Warning),
		Info:            createStyle(config.Styles.Info),
		Highlight:       createStyle(config.Styles.Highlight),
		Bold:            createStyle(config.Styles.Bold),
		Result:          createStyle(config.Styles.Result),
		TableHeader:     createStyle(config.Styles.TableHeader),
		TableCell:       createStyle(config.Styles.TableCell),
		TableBorder:     createStyle(config.Styles.TableBorder),
		TableDiagnostic: createStyle(config.Styles.TableDiagnostic),
	}
}

// createStyle converts a StyleConfig to a lipgloss.Style.
func createStyle(config StyleConfig) lipgloss.Style {
	style := lipgloss.NewStyle()

	if color := parseColor(config.Foreground); color != nil {
		style = style.Foreground(color)
	}
	if color := parseColor(config.Background); color != nil {
		style = style.Background(color)
	}

	if config.Bold != nil && *config.Bold {
		style = style.Bold(true)
	}
	if config.Italic != nil && *config.Italic {
		style = style.Italic(true)
	}
	if config.Underline != nil && *config.Underline {
		style = style.Underline(true)
	}
	if config.Strikethrough != nil && *config.Strikethrough {
		style = style.Strikethrough(true)
	}

	return style
}

// parseColor parses a color value that can be a string or a map with light/dark keys.
func parseColor(value interface{}) lipgloss.TerminalColor {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return lipgloss.Color(v)
	case map[string]interface{}:
		light, hasLight := v["light"].(string)
		dark, hasDark := v["dark"].(string)
		if hasLight && hasDark {
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
		return nil
	default:
		return nil
	}
}

// AvailableThemes returns the loaded theme names in sorted order.
func (s *Service) AvailableThemes() []string {
	names := make([]string, 0, len(s.themes))
	for name := range s.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetThemeByName retrieves a theme by name with case-insensitive matching. It never fails:
// an unknown name logs at debug level and returns the plain theme.
func (s *Service) GetThemeByName(name string) *Theme {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", PlainName:
		return s.themes[PlainName]
	case "dark1":
		normalized = "dark"
	}
	if theme, exists := s.themes[normalized]; exists {
		return theme
	}
	logger.Debug("Invalid theme requested, using plain theme", "theme", name, "available", s.AvailableThemes())
	return s.themes[PlainName]
}

// Select returns the named theme unless the terminal profile cannot show colors, in which case
// the plain theme is returned.
func (s *Service) Select(name string, profile termenv.Profile) *Theme {
	if profile == termenv.Ascii {
		return s.themes[PlainName]
	}
	return s.GetThemeByName(name)
}

// SelectForTerminal returns the named theme, or the plain theme when stdout cannot show colors.
func (s *Service) SelectForTerminal(name string) *Theme {
	if !output.SupportsColor(os.Stdout) {
		return s.themes[PlainName]
	}
	return s.GetThemeByName(name)
}

var current atomic.Pointer[Theme]

// SetCurrent makes t the session-wide theme. A nil theme resets to plain.
func SetCurrent(t *Theme) {
	if t == nil {
		t = plainTheme()
	}
	current.Store(t)
}

// Current returns the session-wide theme, plain until SetCurrent is called.
func Current() *Theme {
	if t := current.Load(); t != nil {
		return t
	}
	return plainTheme()
}
