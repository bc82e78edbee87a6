package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parley/internal/adapter/realtime"
	"parley/internal/adapter/tui/chat"
	"parley/internal/adapter/tui/theme"
	"parley/internal/infra/config"
	"parley/internal/infra/logger"
	"parley/internal/infra/tracer"
	"parley/internal/usecase"
)

type cliFlags struct {
	ConfigPath string
	AgentID    string
	ServiceURL string
	APIKey     string
}

func parseFlags() cliFlags {
	var flags cliFlags
	flag.StringVar(&flags.ConfigPath, "config", "./config.yaml", "config file path")
	flag.StringVar(&flags.AgentID, "agent", "", "agent ID (overrides config)")
	flag.StringVar(&flags.ServiceURL, "url", "", "service URL (overrides config)")
	flag.StringVar(&flags.APIKey, "key", "", "API key (overrides config)")
	flag.Usage = showUsage
	flag.Parse()
	return flags
}

func showUsage() {
	fmt.Fprintln(os.Stderr, `parley - terminal chat client for conversational AI agents

USAGE:
    parley [FLAGS]

FLAGS:
    --config PATH   Config file path (default: ./config.yaml)
    --agent ID      Agent ID (overrides config)
    --url URL       Service URL (overrides config)
    --key KEY       API key (overrides config)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: PARLEY_* variables override config

EXAMPLES:
    parley                          # Run with config.yaml
    parley --agent agent-123        # Talk to a specific agent
    PARLEY_API_KEY=... parley       # Key from the environment`)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config
	flags := parseFlags()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if flags.AgentID != "" {
		cfg.Agent.ID = flags.AgentID
	}
	if flags.ServiceURL != "" {
		cfg.Service.URL = flags.ServiceURL
	}
	if flags.APIKey != "" {
		cfg.Service.APIKey = flags.APIKey
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	if cfg.Agent.Name != "" {
		theme.SymbolBot = cfg.Agent.Name
	}

	// 3. Session: realtime client behind a circuit breaker
	client := realtime.NewClient(realtime.Options{
		URL:         cfg.Service.URL,
		APIKey:      cfg.Service.APIKey,
		DialTimeout: cfg.Service.DialTimeout,
		SendRate:    cfg.Service.SendRatePerSec,
		Logger:      log,
	})
	session := realtime.NewBreakerSession(client, realtime.BreakerConfig{}, log)

	// 4. Controller + transcript
	transcript := usecase.NewTranscript()
	controller := usecase.NewController(session, transcript, cfg.Agent.ID, log)

	// 5. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 6. TUI
	ui := chat.NewTUI(controller, cfg.Agent.Name, cfg.UI.MaxRenderedTurns, log)

	log.Info("starting parley",
		"agent_id", cfg.Agent.ID,
		"service_url", cfg.Service.URL,
	)

	runErr := ui.Run(ctx)

	// 7. Teardown: end the remote session before exiting.
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	controller.Close(closeCtx)

	return runErr
}
