package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/tutorpipe/internal/identity"
	"github.com/user/tutorpipe/internal/relay"
	"github.com/user/tutorpipe/pkg/llm"
	"github.com/user/tutorpipe/pkg/llm/openai"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat relay server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// defaultSystemPrompt is used when no prompt file is configured.
const defaultSystemPrompt = "You are a tutor helping a student learn to program. " +
	"Guide them toward the answer instead of writing the code for them."

func loadSystemPrompt(path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	return string(data), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	systemPrompt, err := loadSystemPrompt(cfg.Relay.SystemPromptPath)
	if err != nil {
		return err
	}

	provider := openai.New(&llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	idClient := identity.NewClient(cfg.Auth.IdentityBaseURL)
	auth := relay.NewAuthenticator(idClient, relay.AllowList{
		Emails:  cfg.Auth.AllowedEmails,
		Domains: cfg.Auth.AllowedDomains,
	}, time.Duration(cfg.Auth.CacheTTLMinutes)*time.Minute, slog.Default())

	server := relay.NewServer(auth, provider, relay.NewRenderer(),
		relay.NewEventLog(cfg.DataDir), idClient, systemPrompt, slog.Default())

	httpServer := &http.Server{
		Addr:    cfg.Relay.ListenAddr,
		Handler: server,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("relay listening",
			"addr", cfg.Relay.ListenAddr,
			"model", cfg.LLM.Model,
			"allowed_emails", len(cfg.Auth.AllowedEmails),
			"allowed_domains", len(cfg.Auth.AllowedDomains))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("relay server: %w", err)
	}
	slog.Info("relay stopped")
	return nil
}
