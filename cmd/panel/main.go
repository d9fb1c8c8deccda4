package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mhartley/notifeed/internal/app"
	"github.com/mhartley/notifeed/internal/panel"
	"github.com/mhartley/notifeed/internal/tui"
	"github.com/mhartley/notifeed/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifeed-panel", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var (
		configPath string
		serverURL  string
		userID     string
		logPath    string
	)
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")
	fs.StringVar(&serverURL, "server", "", "Feed server base URL (overrides configuration)")
	fs.StringVar(&userID, "user", "", "User identity for feed requests (overrides configuration)")
	fs.StringVar(&logPath, "log-file", "", "Write logs to this file (disabled by default)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if serverURL != "" {
		cfg.Panel.BaseURL = serverURL
	}
	if userID != "" {
		cfg.Panel.UserID = userID
	}
	if strings.TrimSpace(cfg.Panel.BaseURL) == "" {
		return errors.New("panel base URL is required (set panel.base_url or pass -server)")
	}
	if strings.TrimSpace(cfg.Panel.UserID) == "" {
		return errors.New("panel user identity is required (set panel.user_id or pass -user)")
	}

	// Stderr is part of the terminal UI, so logs go to a file or nowhere.
	if logPath != "" {
		if err := logger.InitFile(cfg.Server.LogLevel, logPath); err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}
		defer logger.Sync() // best effort
	}

	client := panel.NewClient(cfg.Panel.BaseURL, cfg.Panel.UserID,
		panel.WithTimeout(cfg.Panel.RequestTimeout),
	)

	surface := tui.NewSurface()
	p := panel.New(client, surface,
		panel.WithInterval(cfg.Panel.PollInterval),
		panel.WithVisibleRows(cfg.Panel.VisibleRows),
	)
	program := tea.NewProgram(tui.NewModel(ctx, p), tea.WithContext(ctx), tea.WithAltScreen())
	surface.Bind(program)

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()

	pollDone := make(chan error, 1)
	go func() {
		pollDone <- p.Run(pollCtx)
	}()

	_, runErr := program.Run()

	cancelPoll()
	if err := <-pollDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("poll loop terminated", zap.Error(err))
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal program: %w", runErr)
	}

	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}
