package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/logging"
	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

// EnrichWordsCommand runs one synchronous enrichment pass over pending words.
type EnrichWordsCommand struct {
	Limit int

	cfg  *config.Config
	dict dictionary.Client
}

func NewEnrichWordsCommand(cfg *config.Config) *EnrichWordsCommand {
	return &EnrichWordsCommand{cfg: cfg}
}

func (cmd *EnrichWordsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("enrich-words", flag.ContinueOnError)

	fs.IntVar(&cmd.Limit, "limit", 0, "Maximum number of words to look up (0 = all pending)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s enrich-words [-limit N]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Look up audio and definitions for catalog words still pending.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Limit < 0 {
		return fmt.Errorf("-limit must not be negative")
	}
	return nil
}

func (cmd *EnrichWordsCommand) Run() error {
	logger, err := logging.New(cmd.cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.NewDatabase(cmd.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	dict := cmd.dict
	if dict == nil {
		dict = dictionary.NewFreeDictionaryClient(dictionary.FreeDictionaryOptions{
			BaseURL:  cmd.cfg.Dictionary.BaseURL,
			Interval: cmd.cfg.Dictionary.RateLimit,
			Timeout:  cmd.cfg.Dictionary.Timeout,
		})
	}
	service := vocabulary.NewService(db.DB, dict, vocabulary.Config{
		LanguagePair: dictionary.LanguagePair{Source: cmd.cfg.Dictionary.SourceLang, Target: cmd.cfg.Dictionary.TargetLang},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := service.EnrichPending(ctx, cmd.Limit)
	if err != nil {
		return fmt.Errorf("enrichment stopped: %w", err)
	}

	logger.Info("enrichment finished", zap.String("provider", dict.Name()))
	fmt.Printf("Enriched %d of %d pending words (%d failed)\n", stats.Enriched, stats.Total, stats.Failed)
	return nil
}
