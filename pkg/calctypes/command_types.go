package calctypes

import (
	"fmt"
	"strings"
)

// HelpInfo represents structured help information for a command.
type HelpInfo struct {
	Command     string        `json:"command"`            // Command name
	Description string        `json:"description"`        // Brief description of what the command does
	Usage       string        `json:"usage"`              // Usage syntax
	Arguments   []HelpArg     `json:"arguments,omitempty"` // Positional arguments
	Examples    []HelpExample `json:"examples,omitempty"`  // Usage examples
	Notes       []string      `json:"notes,omitempty"`     // Additional notes or warnings
}

// HelpArg describes one positional argument.
type HelpArg struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// HelpExample represents a usage example with explanation.
type HelpExample struct {
	Command     string `json:"command"`     // Example command
	Description string `json:"description"` // What this example demonstrates
}

// Text renders the help as plain text for the shell.
func (h HelpInfo) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Usage: %s\n", h.Usage)
	if h.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", h.Description)
	}

	if len(h.Arguments) > 0 {
		b.WriteString("\nArguments:\n")
		for _, arg := range h.Arguments {
			req := ""
			if arg.Required {
				req = " (required)"
			}
			fmt.Fprintf(&b, "  %-10s %s%s\n", arg.Name, arg.Description, req)
		}
	}

	if len(h.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range h.Examples {
			fmt.Fprintf(&b, "  %-28s %s\n", ex.Command, ex.Description)
		}
	}

	if len(h.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, note := range h.Notes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
