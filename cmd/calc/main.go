// Package main provides the calcshell CLI application entry point.
// calcshell is an interactive exact-decimal calculator whose commands are plugins and whose
// history is kept in a CSV ledger.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abiosoft/ishell/v2"
	"github.com/abiosoft/readline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"calcshell/internal/config"
	"calcshell/internal/logger"
	"calcshell/internal/output"
	"calcshell/internal/shell"
	"calcshell/internal/version"
)

// scriptExtension is the required extension of batch scripts.
const scriptExtension = ".calc"

var (
	v   = viper.New()
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "calcshell - exact decimal calculator with a history ledger",
	Long: `calcshell is an interactive calculator. Arithmetic operations are pluggable commands and
every calculation is recorded in a CSV history file that can be loaded, saved, cleared and shown.`,
	Run: runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell mode",
	Run:   runShell,
}

// batchCmd represents the batch command for non-interactive script execution
var batchCmd = &cobra.Command{
	Use:   "batch <script.calc>",
	Short: "Execute a .calc script file in batch mode",
	Long: `Execute a .calc script file without entering interactive mode. Each non-empty line that
does not start with '#' is run as if typed at the prompt. Pending history is flushed at the end.`,
	Args: cobra.ExactArgs(1),
	Run:  runBatch,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		detailed, _ := cmd.Flags().GetBool("detailed")
		printVersion(cmd.OutOrStdout(), detailed)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	registerFlags(flags)
	if err := bindFlags(v, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flags: %v\n", err)
		os.Exit(1)
	}

	versionCmd.Flags().Bool("detailed", false, "Show build details")
	batchCmd.Flags().Bool("json", false, "Write one JSON object per output line")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

// registerFlags defines the configuration flags shared by every subcommand.
func registerFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: from the ENV profile, prod: warn]")
	flags.String("log-file", "", "Write logs to this file [default: calc.log]")
	flags.Bool("test-mode", false, "Run in deterministic test mode")
	flags.String("history-dir", "", "Directory for relative history files [default: data]")
	flags.String("history-file", "", "Active history file [default: history.csv]")
	flags.String("flush-policy", "", "History flush policy (flush-each|stage-then-flush)")
	flags.Int("flush-threshold", 0, "Flush staged history after this many records (0 disables)")
	flags.String("theme", "", "Color theme (default|dark|light|plain)")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file at exit")
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":       "log_level",
	"log-file":        "log_file",
	"test-mode":       "test_mode",
	"history-dir":     "history_dir",
	"history-file":    "history_file",
	"flush-policy":    "flush_policy",
	"flush-threshold": "flush_threshold",
	"theme":           "theme",
	"metrics-file":    "metrics_file",
}

// bindFlags binds every known flag to its configuration key. A flag overrides the key only
// when it is set on the command line.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("%s: %w", flag, err)
		}
	}
	return nil
}

func initConfig() {
	var err error
	cfg, err = config.Load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile, cfg.Env, cfg.TestMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runShell(_ *cobra.Command, _ []string) {
	logger.Info("Starting calcshell", "version", version.GetVersion())

	s, err := shell.NewSession(cfg, afero.NewOsFs())
	if err != nil {
		logger.Fatal("Failed to start session", "error", err)
	}

	sh := ishell.NewWithConfig(&readline.Config{
		Prompt:      "calc> ",
		HistoryFile: readlineHistoryPath(cfg),
	})
	shell.Attach(sh, s)

	s.Banner()
	s.PrintStatus()
	sh.Run()
	sh.Close()

	if err := s.Close(); err != nil {
		logger.Error("Session closed with errors", "error", err)
		os.Exit(1)
	}
}

func runBatch(cmd *cobra.Command, args []string) {
	scriptPath := args[0]

	logger.Info("Starting calcshell batch mode", "version", version.GetVersion(), "script", scriptPath)

	if err := validateScriptFile(scriptPath); err != nil {
		logger.Fatal("Script validation failed", "error", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	s, err := newBatchSession(cfg, afero.NewOsFs(), cmd.OutOrStdout(), jsonOut)
	if err != nil {
		logger.Fatal("Failed to start session", "error", err)
	}

	if err := executeBatchScript(scriptPath, s); err != nil {
		logger.Fatal("Script execution failed", "error", err)
	}

	if s.Failures() > 0 {
		logger.Warn("Script finished with failed commands", "script", scriptPath, "failures", s.Failures())
		os.Exit(1)
	}
	logger.Info("Script executed successfully", "script", scriptPath)
}

func validateScriptFile(scriptPath string) error {
	info, err := os.Stat(scriptPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("script file does not exist: %s", scriptPath)
	}
	if err != nil {
		return fmt.Errorf("cannot access script file %s: %w", scriptPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("script path is a directory: %s", scriptPath)
	}

	if ext := filepath.Ext(scriptPath); ext != scriptExtension {
		return fmt.Errorf("script file must have %s extension, got: %s", scriptExtension, ext)
	}

	return nil
}

// printVersion writes the one-line version, or the detailed build report, to w.
func printVersion(w io.Writer, detailed bool) {
	p := output.NewPrinter(output.WithWriter(w), output.PlainText())
	if detailed {
		p.Println(version.GetDetailedVersion())
		return
	}
	p.Println(version.GetFormattedVersion())
}

// newBatchSession builds the session for a batch run. With jsonOut every output event is
// written to w as one JSON object per line; otherwise the session prints as it does
// interactively.
func newBatchSession(cfg *config.Config, fs afero.Fs, w io.Writer, jsonOut bool) (*shell.Session, error) {
	if !jsonOut {
		return shell.NewSession(cfg, fs)
	}
	return shell.NewSession(cfg, fs, shell.WithPrinter(output.NewPrinter(output.WithWriter(w), output.JSON())))
}

// executeBatchScript runs the script through s and always closes the session so staged
// history is flushed.
func executeBatchScript(scriptPath string, s *shell.Session) error {
	f, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	runErr := s.RunScript(f)
	closeErr := s.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

// readlineHistoryPath returns where the interactive line history is kept, or "" to keep it in
// memory when the history directory cannot be created.
func readlineHistoryPath(cfg *config.Config) string {
	if err := os.MkdirAll(cfg.HistoryDir, 0755); err != nil {
		logger.Warn("Line history disabled", "dir", cfg.HistoryDir, "error", err)
		return ""
	}
	return filepath.Join(cfg.HistoryDir, ".calc_readline")
}
