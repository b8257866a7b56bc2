package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	askQuestion    string
	askShowSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [file]",
	Short: "One-shot question against a document",
	Long: `Index the given file and answer a single question, printing the answer
and optionally the retrieved source segments.

Examples:
  docchat ask -q "what is the termination clause?" contract.pdf
  docchat ask -q "summarize the findings" --sources report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.Flags().BoolVar(&askShowSources, "sources", false, "print the retrieved source segments")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	sess, err := newSession(log)
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	ctx := cmd.Context()
	if err := sess.LoadDocument(ctx, filepath.Base(path), data); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	msg, err := sess.Ask(ctx, askQuestion)
	if err != nil {
		return err
	}

	fmt.Println(msg.Content)
	if askShowSources {
		fmt.Printf("\n--- %d sources ---\n", len(msg.Sources))
		for _, src := range msg.Sources {
			fmt.Printf("[segment %d] %s\n", src.Position+1, src.Text)
		}
	}
	return nil
}
