package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/tutorpipe/internal/chat"
	"github.com/user/tutorpipe/internal/relay"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive chat session through the relay",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	counter, err := chat.NewTokenCounter(cfg.LLM.Model)
	if err != nil {
		slog.Warn("token counter unavailable", "error", err)
	}

	client := relay.NewClient(cfg.Relay.BaseURL, cfg.Relay.Credential)
	session := chat.NewSession(client, pipe.bus, counter, slog.Default())

	fmt.Println("Chat session started. Ctrl-D to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		reply := session.HandleUserMessage(ctx, text)
		fmt.Println(reply)
	}

	fmt.Printf("Session ended after %d turns.\n", len(session.History()))
	pipe.drain()
	return scanner.Err()
}
