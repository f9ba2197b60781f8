package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/history"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/logger"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/tui"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/version"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetInfo().Banner("tcui"))
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Terminal output belongs to the UI; log only when writing to a file.
	log := logger.Discard()
	switch cfg.Logging.Output {
	case "", "stdout", "stderr":
	default:
		if log, err = logger.New(&cfg.Logging, "tcui"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	}

	store, err := history.New(&cfg.History, &cfg.Redis, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore(store, log)

	model := tui.New(tui.Options{
		Engine:  cfg.Engine,
		History: store,
		Logger:  log,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.WithError(err).Error("UI exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeStore(store, log)
		os.Exit(1)
	}
}

func closeStore(store history.Store, log *logrus.Logger) {
	if err := store.Close(); err != nil {
		log.WithError(err).Warn("Failed to close history store")
	}
}
