package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docchat/internal/tui"
)

var chatDebugLog string

var chatCmd = &cobra.Command{
	Use:   "chat [file]",
	Short: "Interactive chat over a document",
	Long: `Start the interactive chat surface. Pass a file to load it on startup,
or use /open <file> inside the session. /clear empties the chat history,
Ctrl+S toggles the retrieved sources under each answer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatDebugLog, "log", "", "write debug logs to this file")
}

func runChat(cmd *cobra.Command, args []string) error {
	// the terminal belongs to the TUI; logs go to a file or nowhere
	logWriter := io.Writer(io.Discard)
	if chatDebugLog != "" {
		f, err := os.OpenFile(chatDebugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logWriter = f
	}
	log := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sess, err := newSession(log)
	if err != nil {
		return err
	}

	var initialPath string
	if len(args) == 1 {
		initialPath = args[0]
	}

	m := tui.New(cmd.Context(), sess, initialPath)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return err
	}
	return nil
}
