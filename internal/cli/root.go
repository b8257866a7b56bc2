package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/extract"
	"docchat/internal/mistral"
	"docchat/internal/session"
)

var (
	cfgFile string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Ask questions about a document, grounded in its own text",
	Long: `docchat indexes a PDF or text file into overlapping embedded segments
and answers questions by retrieving the most relevant segments and asking
the Mistral API for a grounded completion.

Example usage:
  docchat chat report.pdf            # interactive chat over a document
  docchat ask -q "who is liable?" contract.pdf`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadDefault()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// refuse to start without a credential rather than degrade later
		if _, err := cfg.APIKey(); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the CLI with the given context; cancellation propagates
// into in-flight builds and questions.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docchat.yaml)")
}

// newSession wires the full pipeline from config: chunker, extractor,
// Mistral gateway, and the conversation session.
func newSession(log *slog.Logger) (*session.Session, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	client, err := mistral.New(mistral.Config{
		APIKey:      key,
		BaseURL:     cfg.Provider.BaseURL,
		ChatModel:   cfg.Provider.ChatModel,
		EmbedModel:  cfg.Provider.EmbedModel,
		Temperature: *cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
		Timeout:     time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	ch, err := chunker.New(cfg.Chunking.Size, *cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}
	return session.New(ch, extract.New(), client, client, cfg.Retrieval.TopK, log), nil
}
