package output

import "io"

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithStyles renders through provider. A nil or unavailable provider leaves the printer plain.
func WithStyles(provider StyleProvider) Option {
	return func(p *Printer) {
		if provider != nil && provider.IsAvailable() {
			p.styles = provider
		}
	}
}

// WithWriter sets the destination writer. The default is os.Stdout.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// PlainText forces plain output even when a style provider is configured. Sessions use it
// for test mode and when stdout is not a terminal.
func PlainText() Option {
	return func(p *Printer) {
		p.mode = ModePlain
	}
}

// JSON switches the printer to one JSON object per line (calc batch --json).
func JSON() Option {
	return func(p *Printer) {
		p.mode = ModeJSON
	}
}
