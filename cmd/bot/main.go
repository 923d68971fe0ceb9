package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/eliseohh/edupagebot/internal/bot"
	"github.com/eliseohh/edupagebot/internal/config"
	"github.com/eliseohh/edupagebot/internal/journal"
	"github.com/eliseohh/edupagebot/internal/portal"
)

var (
	envFile string
	debug   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "edubot",
		Short:         "Telegram front end for the EduPage school portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bot with long polling",
		RunE:  runServe,
	})
	root.AddCommand(newJournalCmd())
	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(debug || cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if err := cfg.Portal.Validate(); err != nil {
		logger.Warn("portal credentials incomplete", zap.Error(err))
	}
	session := portal.NewClient(cfg.Portal)
	logger.Info("portal session ready", zap.String("subdomain", session.Subdomain()))

	var j bot.Journal
	if cfg.JournalPath != "" {
		db, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer db.Close()
		j = db
		logger.Info("journal enabled", zap.String("path", cfg.JournalPath))
	}

	b, err := bot.New(bot.Config{
		Token:        cfg.Token,
		PollTimeout:  cfg.PollTimeout,
		FetchTimeout: cfg.FetchTimeout,
	}, session, j, logger)
	if err != nil {
		return fmt.Errorf("bot init failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.Start()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", zap.Error(context.Cause(ctx)))
		b.Stop()
		return nil
	})
	return g.Wait()
}
