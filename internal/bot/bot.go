// Package bot wires the purge engine to Discord: session lifecycle, command
// handling, the confirmation flow, and scheduled maintenance.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/purgebot/internal/config"
	"github.com/edgard/purgebot/internal/database"
	"github.com/edgard/purgebot/internal/purge"
)

// Bot owns the Discord session and every engine component.
type Bot struct {
	log       *slog.Logger
	cfg       *config.Config
	session   *discordgo.Session
	registry  *purge.Registry
	scanner   *purge.Scanner
	deleter   *purge.Deleter
	store     database.Store
	scheduler *Scheduler
	confirms  *confirmations
	reporter  reporter
	channels  func(channelID string) purge.Channel

	mu     sync.Mutex
	runCtx context.Context // operations spawned by handlers inherit this
}

// NewSession creates the Discord gateway session with the intents the purge
// command surface needs.
func NewSession(token string, logger *slog.Logger) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token cannot be empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	logger.Info("Discord session created")
	return session, nil
}

// New builds the bot and registers its gateway handlers.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	session *discordgo.Session,
	store database.Store,
	scheduler *Scheduler,
) *Bot {
	registry := purge.NewRegistry()

	b := &Bot{
		log:      logger.With("component", "bot"),
		cfg:      cfg,
		session:  session,
		registry: registry,
		scanner: purge.NewScanner(registry, logger, purge.ScannerConfig{
			PageSize:      cfg.Purge.PageSize,
			PagesPerPause: cfg.Purge.PagesPerPause,
			PagePause:     cfg.Purge.PagePause,
			RetryDelay:    cfg.Purge.RetryDelay,
			CaseSensitive: cfg.Purge.CaseSensitive,
		}),
		deleter: purge.NewDeleter(registry, logger, purge.DeleterConfig{
			BulkMaxAge:    cfg.Purge.BulkMaxAge,
			ChunkSize:     cfg.Purge.ChunkSize,
			ChunkPause:    cfg.Purge.ChunkPause,
			FallbackPause: cfg.Purge.FallbackPause,
			BatchSize:     cfg.Purge.BatchSize,
			GroupSize:     cfg.Purge.GroupSize,
			GroupPause:    cfg.Purge.GroupPause,
			BatchPause:    cfg.Purge.BatchPause,
		}),
		store:     store,
		scheduler: scheduler,
		confirms:  newConfirmations(),
		reporter:  newDiscordReporter(session, logger),
		channels: func(channelID string) purge.Channel {
			return newDiscordChannel(session, channelID)
		},
		runCtx: context.Background(),
	}

	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)
	return b
}

// Run opens the gateway connection and blocks until ctx is cancelled or a
// component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.runCtx = ctx
	b.mu.Unlock()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := b.session.Open(); err != nil {
			return fmt.Errorf("failed to open discord session: %w", err)
		}
		b.log.Info("Discord gateway connected")

		<-gCtx.Done()
		b.log.Info("Shutdown signal received, closing discord session...")
		if err := b.session.Close(); err != nil {
			b.log.Error("Error closing discord session", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gCtx.Done()
		b.log.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.log.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	b.log.Info("Bot stopped gracefully")
	return nil
}

func (b *Bot) operationContext() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runCtx
}
