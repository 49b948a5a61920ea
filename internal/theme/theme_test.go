package theme

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcshell/internal/data/embedded"
	"calcshell/internal/output"
)

func TestNewService_LoadsEmbeddedThemes(t *testing.T) {
	s := NewService()

	assert.Equal(t, []string{"dark", "default", "light", "plain"}, s.AvailableThemes())
	for _, name := range []string{"default", "dark", "light"} {
		theme := s.GetThemeByName(name)
		assert.Equal(t, name, theme.Name)
		assert.True(t, theme.IsAvailable(), "%s theme provides styles", name)
	}
}

func TestGetThemeByName(t *testing.T) {
	s := NewService()

	tests := []struct {
		input string
		want  string
	}{
		{input: "dark", want: "dark"},
		{input: " DARK ", want: "dark"},
		{input: "dark1", want: "dark"},
		{input: "Light", want: "light"},
		{input: "default", want: "default"},
		{input: "", want: PlainName},
		{input: "plain", want: PlainName},
		{input: "solarized", want: PlainName},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, s.GetThemeByName(tt.input).Name)
		})
	}
}

func TestSelect_AsciiProfileForcesPlain(t *testing.T) {
	s := NewService()

	assert.Equal(t, PlainName, s.Select("dark", termenv.Ascii).Name)
	assert.Equal(t, "dark", s.Select("dark", termenv.TrueColor).Name)
}

func TestParseTheme(t *testing.T) {
	theme, err := parseTheme(embedded.DarkThemeData)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme.Name)
	assert.True(t, theme.Command.GetBold())
	assert.True(t, theme.TableDiagnostic.GetItalic())

	_, err = parseTheme([]byte("name: [broken"))
	assert.Error(t, err)

	_, err = parseTheme([]byte("styles: {}"))
	assert.Error(t, err, "a theme needs a name")
}

func TestParseColor(t *testing.T) {
	assert.Nil(t, parseColor(nil))
	assert.Nil(t, parseColor(""))
	assert.Nil(t, parseColor(42))
	assert.Nil(t, parseColor(map[string]interface{}{"light": "#fff"}))
	assert.NotNil(t, parseColor("#00ff00"))
	assert.NotNil(t, parseColor(map[string]interface{}{"light": "#fff", "dark": "#000"}))
}

func TestPlainTheme_PrinterFallsBack(t *testing.T) {
	plain := NewService().GetThemeByName(PlainName)
	assert.False(t, plain.IsAvailable())

	var buf bytes.Buffer
	output.NewPrinter(output.WithWriter(&buf), output.WithStyles(plain)).Error("Invalid input")
	assert.Equal(t, "✗ Invalid input\n", buf.String())
}

func TestGetStyle_RendersText(t *testing.T) {
	theme := NewService().GetThemeByName("default")

	for _, semantic := range []string{"command", "success", "error", "warning", "info", "highlight", "bold", "result", "plain"} {
		rendered := theme.GetStyle(semantic).Render("Result: 8")
		assert.Equal(t, "Result: 8", ansi.Strip(rendered), semantic)
	}
}

func TestTableStyle(t *testing.T) {
	s := NewService()

	assert.True(t, s.GetThemeByName(PlainName).TableStyle().Plain)
	assert.False(t, s.GetThemeByName("dark").TableStyle().Plain)
}

func TestCreateList(t *testing.T) {
	out := NewService().GetThemeByName(PlainName).CreateList("add", "history").String()

	assert.Contains(t, out, "add")
	assert.Contains(t, out, "history")
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestCurrent(t *testing.T) {
	t.Cleanup(func() { SetCurrent(nil) })

	SetCurrent(nil)
	assert.True(t, Current().IsPlain())

	dark := NewService().GetThemeByName("dark")
	SetCurrent(dark)
	assert.Same(t, dark, Current())
}
