package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/tutorpipe/internal/config"
	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
	"github.com/user/tutorpipe/internal/exporter"
	"github.com/user/tutorpipe/internal/identity"
	"github.com/user/tutorpipe/internal/producer"
)

// pipeline is the capture-side assembly: the activity bus, one producer per
// event category, and the three exporters every producer delivers to.
type pipeline struct {
	bus       *editor.Bus
	source    *event.Source
	remote    *exporter.Remote
	producers []producer.Producer
}

// buildPipeline resolves the identity for the configured credential, creates
// session identifiers, and wires every producer to the console, file, and
// remote exporters.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	credential := cfg.Relay.Credential
	if credential == "" {
		return nil, fmt.Errorf("no credential configured (set relay.credential or GITHUB_TOKEN)")
	}

	machineID, err := event.LoadMachineID(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	sessionID := event.NewSessionID()

	idClient := identity.NewClient(cfg.Auth.IdentityBaseURL)
	username, err := idClient.Login(ctx, "Bearer "+credential)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	log := slog.Default()
	source := event.NewSource(sessionID, machineID, username)
	filter := producer.NewPathFilter(cfg.StorageRoot())
	bus := editor.NewBus()

	console := exporter.NewConsole(log)
	file := exporter.NewFile(cfg.StorageRoot(), source, log)
	remote := exporter.NewRemote(cfg.Relay.BaseURL, credential, username, log)

	producers := []producer.Producer{
		producer.NewDocumentOpen(source, filter, log),
		producer.NewDocumentSave(source, filter, log),
		producer.NewDocumentClose(source, filter, log),
		producer.NewExecution(source, log),
		producer.NewFileCreated(source, filter, log),
		producer.NewFileDeleted(source, filter, log),
		producer.NewFocus(source, filter, log),
		producer.NewKeystroke(source, filter, log),
		producer.NewChat(source, log),
	}
	for _, p := range producers {
		p.AddExporter(console)
		p.AddExporter(file)
		p.AddExporter(remote)
		p.Listen(bus)
	}

	log.Info("pipeline ready",
		"identity", username,
		"session_id", sessionID,
		"machine_id", machineID,
		"storage_root", cfg.StorageRoot())

	return &pipeline{bus: bus, source: source, remote: remote, producers: producers}, nil
}

// drain waits for dispatched occurrences and in-flight remote posts.
func (p *pipeline) drain() {
	p.bus.Wait()
	p.remote.Close()
}
