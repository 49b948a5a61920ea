package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// mockStyleProvider wraps text in [semantic]...[/semantic] markers.
type mockStyleProvider struct {
	unavailable bool
}

func (m *mockStyleProvider) GetStyle(semantic string) TextStyle {
	return mockTextStyle(semantic)
}

func (m *mockStyleProvider) IsAvailable() bool {
	return !m.unavailable
}

type mockTextStyle string

func (m mockTextStyle) Render(text string) string {
	return "[" + string(m) + "]" + text + "[/" + string(m) + "]"
}

func TestPrinterPlainDiagnostics(t *testing.T) {
	buffer := &bytes.Buffer{}
	printer := NewPrinter(WithWriter(buffer), PlainText())

	printer.Info("Run <command> help to see usage details.")
	printer.Warning("Could not write history")
	printer.Error("Error: Division by zero.")
	printer.Println("History cleared.")

	expected := "ℹ Run <command> help to see usage details.\n" +
		"⚠ Could not write history\n" +
		"✗ Error: Division by zero.\n" +
		"History cleared.\n"
	if buffer.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buffer.String())
	}
}

func TestPrinterStyled(t *testing.T) {
	buffer := &bytes.Buffer{}
	printer := NewPrinter(WithWriter(buffer), WithStyles(&mockStyleProvider{}))

	printer.Bold("calcshell")
	printer.Result("Result: 8")
	printer.Error("Invalid input")

	expected := "[bold]calcshell[/bold][result]Result: 8[/result]\n[error]Invalid input[/error]\n"
	if buffer.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buffer.String())
	}
}

func TestPrinterResultPlain(t *testing.T) {
	buffer := &bytes.Buffer{}
	printer := NewPrinter(WithWriter(buffer), PlainText())

	printer.Result("Result: 2.5")
	printer.Highlight("[Active history file: data/history.csv]")

	if buffer.String() != "Result: 2.5\n[Active history file: data/history.csv]" {
		t.Errorf("Unexpected plain output: %q", buffer.String())
	}
}

func TestPrinterFallsBackToPlain(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
	}{
		{name: "unavailable provider", options: []Option{WithStyles(&mockStyleProvider{unavailable: true})}},
		{name: "nil provider", options: []Option{WithStyles(nil)}},
		{name: "plain text forced", options: []Option{WithStyles(&mockStyleProvider{}), PlainText()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := &bytes.Buffer{}
			printer := NewPrinter(append(tt.options, WithWriter(buffer))...)

			printer.Info("message")

			if buffer.String() != "ℹ message\n" {
				t.Errorf("Expected plain fallback, got %q", buffer.String())
			}
		})
	}
}

func TestPrinterPrompt(t *testing.T) {
	buffer := &bytes.Buffer{}
	NewPrinter(WithWriter(buffer), WithStyles(&mockStyleProvider{})).Prompt("calc> ", "add 5 3")
	if buffer.String() != "[command]calc> [/command]add 5 3\n" {
		t.Errorf("Unexpected styled prompt: %q", buffer.String())
	}

	buffer.Reset()
	NewPrinter(WithWriter(buffer), PlainText()).Prompt("calc> ", "add 5 3")
	if buffer.String() != "calc> add 5 3\n" {
		t.Errorf("Unexpected plain prompt: %q", buffer.String())
	}
}

func TestPrinterJSONMode(t *testing.T) {
	buffer := &bytes.Buffer{}
	printer := NewPrinter(WithWriter(buffer), WithStyles(&mockStyleProvider{}), JSON())

	printer.Prompt("calc> ", "divide 10 4")
	printer.Result("Result: 2.5")
	printer.Println("")
	printer.Error("Error: Division by zero.")

	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	expected := []jsonEvent{
		{Type: SemanticCommand, Message: "divide 10 4"},
		{Type: SemanticResult, Message: "Result: 2.5"},
		{Type: SemanticError, Message: "Error: Division by zero."},
	}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d JSON lines, got %d: %v", len(expected), len(lines), lines)
	}

	for i, line := range lines {
		var event jsonEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("Line %d is not JSON: %q: %v", i, line, err)
		}
		if event != expected[i] {
			t.Errorf("Line %d: expected %+v, got %+v", i, expected[i], event)
		}
	}
}

func TestPrinterString(t *testing.T) {
	printer := NewPrinter(WithWriter(&bytes.Buffer{}), PlainText())
	if !strings.Contains(printer.String(), "styled: false") {
		t.Errorf("Unexpected description: %s", printer.String())
	}
}

func BenchmarkPrinterPlainOutput(b *testing.B) {
	buffer := &bytes.Buffer{}
	printer := NewPrinter(WithWriter(buffer), PlainText())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		printer.Result("Result: 8")
		buffer.Reset()
	}
}
