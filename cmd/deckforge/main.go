// cmd/deckforge/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jason-s-yu/deckforge/internal/apiclient"
	"github.com/jason-s-yu/deckforge/internal/config"
	"github.com/jason-s-yu/deckforge/internal/logging"
)

// app is the state shared by every subcommand, built in PersistentPreRunE.
type app struct {
	cfg    config.Client
	logger *logrus.Logger
	client *apiclient.Client
	// closeLog releases the TUI log file, if any.
	closeLog func() error
}

var (
	configPath string
	apiURL     string
	logLevel   string
	plain      bool

	deckforge = &app{}
)

var rootCmd = &cobra.Command{
	Use:   "deckforge",
	Short: "Generate Commander decks with the agent generation service",
	Long: `deckforge submits Commander deck generation requests, follows each job's
live agent log until it completes, and shows the finished deck grouped by card type.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return deckforge.init(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if deckforge.closeLog != nil {
			return deckforge.closeLog()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (or set DECKFORGE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "generation service base URL (or set DECKFORGE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (or set DECKFORGE_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "print progress as plain text instead of the full-screen view")

	rootCmd.AddCommand(commanderCmd, generateCmd, newCmd, watchCmd, deckCmd, decksCmd, inventoryCmd)
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	a.cfg = cfg

	if usesTerminalUI(cmd) {
		logger, closeFn, err := logging.ForTerminalUI(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		a.logger, a.closeLog = logger, closeFn
	} else {
		a.logger = logging.New(cfg.LogLevel, os.Stderr)
	}

	a.client, err = apiclient.New(cfg.APIURL,
		apiclient.WithLogger(a.logger),
		apiclient.WithTimeout(cfg.RequestTimeout),
	)
	return err
}

// usesTerminalUI reports whether cmd takes over the screen.
func usesTerminalUI(cmd *cobra.Command) bool {
	if plain {
		return false
	}
	switch cmd.Name() {
	case "watch", "new":
		return true
	case "generate":
		return !noWatch
	}
	return false
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
