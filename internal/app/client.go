package app

import (
	"fmt"
	"net/http"

	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-tasks/internal/client"
	"github.com/adanyl0v/go-tasks/internal/config"
	"github.com/adanyl0v/go-tasks/internal/session"
	"github.com/adanyl0v/go-tasks/internal/tui"
)

// RunClient reads the client env, wires the API client and session and
// blocks in the terminal UI until the user quits.
func RunClient() error {
	cfg, err := config.NewEnvReader().ReadClient()
	if err != nil {
		return fmt.Errorf("read client env: %w", err)
	}

	logPath, err := cfg.LogFilePath()
	if err != nil {
		return fmt.Errorf("resolve log file: %w", err)
	}
	logger, logFile, err := NewFileLogger(logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	tokenPath, err := cfg.TokenFilePath()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to resolve token file")
		return err
	}
	tokens, err := client.OpenFileStore(tokenPath)
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", tokenPath).
			Msg("failed to open token file")
		return err
	}

	c, err := client.New(logger, &http.Client{Timeout: cfg.HTTPTimeout}, cfg.APIURL, tokens)
	if err != nil {
		logger.Error().
			Err(err).
			Str("api_url", cfg.APIURL).
			Msg("failed to create api client")
		return err
	}
	logger.Info().
		Str("api_url", cfg.APIURL).
		Msg("starting client")

	return tui.Run(tui.Deps{
		Logger:  logger,
		Session: session.NewManager(logger, c),
		Tasks:   client.NewTaskService(c),
		Labels:  client.NewLabelService(c),
	})
}
