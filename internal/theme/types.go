package theme

// Config represents the theme configuration loaded from a YAML file.
type Config struct {
	// Name is the theme identifier (e.g., "default", "dark", "light", "plain")
	Name string `yaml:"name" json:"name"`

	// Description provides a brief description of the theme
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Styles Styles `yaml:"styles" json:"styles"`
}

// Styles defines the styling configuration for each semantic element.
type Styles struct {
	Command   StyleConfig `yaml:"command" json:"command"`
	Success   StyleConfig `yaml:"success" json:"success"`
	Error     StyleConfig `yaml:"error" json:"error"`
	Warning   StyleConfig `yaml:"warning" json:"warning"`
	Info      StyleConfig `yaml:"info" json:"info"`
	Highlight StyleConfig `yaml:"highlight" json:"highlight"`
	Bold      StyleConfig `yaml:"bold" json:"bold"`

	// Result styles the "Result: x" line of a calculation
	Result StyleConfig `yaml:"result" json:"result"`

	// History table elements
	TableHeader     StyleConfig `yaml:"table_header" json:"table_header"`
	TableCell       StyleConfig `yaml:"table_cell" json:"table_cell"`
	TableBorder     StyleConfig `yaml:"table_border" json:"table_border"`
	TableDiagnostic StyleConfig `yaml:"table_diagnostic" json:"table_diagnostic"`
}

// StyleConfig defines the styling for a single semantic element.
type StyleConfig struct {
	// Foreground color - can be hex color, named color, or adaptive color object
	Foreground interface{} `yaml:"foreground,omitempty" json:"foreground,omitempty"`

	// Background color - can be hex color, named color, or adaptive color object
	Background interface{} `yaml:"background,omitempty" json:"background,omitempty"`

	Bold          *bool `yaml:"bold,omitempty" json:"bold,omitempty"`
	Italic        *bool `yaml:"italic,omitempty" json:"italic,omitempty"`
	Underline     *bool `yaml:"underline,omitempty" json:"underline,omitempty"`
	Strikethrough *bool `yaml:"strikethrough,omitempty" json:"strikethrough,omitempty"`
}

// File represents a complete theme file loaded from YAML.
type File struct {
	Config `yaml:",inline" json:",inline"`
}
