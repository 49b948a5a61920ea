package shell

import (
	"strings"

	"github.com/abiosoft/ishell/v2"

	"calcshell/internal/logger"
)

// Shell is the subset of *ishell.Shell the interactive front end configures.
type Shell interface {
	NotFound(f func(*ishell.Context))
	Interrupt(f func(c *ishell.Context, count int, input string))
	EOF(f func(*ishell.Context))
	DeleteCmd(name string)
}

// Attach routes every input line of sh to the session. The built-in exit and help commands
// are removed so the session handles them.
func Attach(sh Shell, s *Session) {
	sh.DeleteCmd("exit")
	sh.DeleteCmd("help")
	sh.NotFound(ProcessInput(s))
	sh.Interrupt(func(c *ishell.Context, count int, _ string) {
		if count >= 2 {
			logger.Info("Interrupted, leaving the shell")
			c.Stop()
			return
		}
		c.Println("Press Ctrl-C once more to exit, or type 'exit'.")
	})
	sh.EOF(func(c *ishell.Context) {
		logger.Debug("EOF received, leaving the shell")
		c.Stop()
	})
}

// ProcessInput returns the ishell handler that runs one line through the session.
func ProcessInput(s *Session) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.RawArgs) == 0 {
			return
		}

		rawInput := strings.TrimSpace(strings.Join(c.RawArgs, " "))
		if rawInput == "" || strings.HasPrefix(rawInput, "#") {
			return
		}

		if s.Execute(rawInput) {
			c.Stop()
			return
		}
		s.PrintStatus()
	}
}
