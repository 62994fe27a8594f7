package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdawka/ggit/internal/log"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:           "ggit",
	Short:         "A minimal Git client: object store, smart-HTTP clone, checkout",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// RootCmd returns the root command, for tests that need to invoke it with
// captured output.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if debug || os.Getenv("GGIT_LOG_LEVEL") == "debug" {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		cmd.SetContext(log.ToContext(context.Background(), &slogLogger{slog.New(handler)}))
		return nil
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(hashObjectCmd)
	rootCmd.AddCommand(catFileCmd)
	rootCmd.AddCommand(writeTreeCmd)
	rootCmd.AddCommand(commitTreeCmd)
}

// slogLogger adapts *slog.Logger to the internal log.Logger interface the
// core packages log through.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, kv ...any) { s.l.Debug(msg, kv...) }
func (s *slogLogger) Info(msg string, kv ...any)  { s.l.Info(msg, kv...) }
func (s *slogLogger) Warn(msg string, kv ...any)  { s.l.Warn(msg, kv...) }
func (s *slogLogger) Error(msg string, kv ...any) { s.l.Error(msg, kv...) }
