package calctypes

// Executor is the first capability a command plugin must expose.
// Execute receives the whitespace-separated arguments that followed the command name
// and returns the text to show the user.
type Executor interface {
	Execute(args []string) (string, error)
}

// UsageProvider is the second capability a command plugin must expose.
type UsageProvider interface {
	Usage() string
}

// Handler is a registered command: anything that can execute and describe its usage.
// The registry checks both capabilities before accepting a plugin.
type Handler interface {
	Executor
	UsageProvider
}

// Describer is implemented by handlers that provide a one-line description for menus.
type Describer interface {
	Description() string
}

// HelpProvider is implemented by handlers that provide structured help.
type HelpProvider interface {
	HelpInfo() HelpInfo
}
