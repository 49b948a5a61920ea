package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// IsTerminal reports whether stdout is a terminal. Sessions print plain text when it is not.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) == os.ModeCharDevice
}

// SupportsColor reports whether w can show colors. NO_COLOR, CLICOLOR and the terminal's
// advertised color profile are honoured.
func SupportsColor(w io.Writer) bool {
	return termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii
}
