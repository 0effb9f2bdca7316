// Package cmd provides the CLI commands for dotnet-monitor.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AntonPalyok/dotnet-monitor/internal/config"
	"github.com/AntonPalyok/dotnet-monitor/internal/domain/auth"
	"github.com/AntonPalyok/dotnet-monitor/internal/domain/output"
	"github.com/AntonPalyok/dotnet-monitor/internal/i18n"
	"github.com/AntonPalyok/dotnet-monitor/internal/service"
)

var (
	cfgFile  string
	langFlag string
)

var rootCmd = &cobra.Command{
	Use:   "dotnet-monitor",
	Short: "dotnet-monitor - API key provisioning for the monitoring service",
	Long: `dotnet-monitor provisions API keys for the monitoring service.

A generated key has two halves: a token that clients send in the
Authorization header, and a subject plus public key that the server
stores to verify it. The token is shown once and never stored.

Configuration:
  Config is loaded from dotnet-monitor.yaml in the current directory,
  $HOME/.dotnet-monitor/, or /etc/dotnet-monitor/.

  Environment variables can override config values with the DOTNET_MONITOR_ prefix.
  Example: DOTNET_MONITOR_GENERATE_KEY_OUTPUT=shell

Commands:
  generatekey   Generate an API key and the settings that accept it
  verifykey     Check a token against a subject and public key
  version       Print version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It exits with status 1 on any error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dotnet-monitor.yaml)")
	rootCmd.PersistentFlags().StringVar(&langFlag, "language", "",
		fmt.Sprintf("message language: %s (default: %s)", strings.Join(i18n.Locales(), ", "), config.DefaultLanguage))
}

func initConfig() {
	config.InitViper(cfgFile)
	bindFlags()
}

// bindFlags maps flags onto config keys. A flag only overrides the file and
// environment when it is set on the command line.
func bindFlags() {
	_ = viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language"))
	_ = viper.BindPFlag("generate_key.output", generateKeyCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("generate_key.key_type", generateKeyCmd.Flags().Lookup("key-type"))
}

// newLogger returns a text logger on w. stdout is reserved for command output.
func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// newAPIKeyService wires the key generator, message catalogue and renderer
// selected by cfg.
func newAPIKeyService(cfg *config.ToolConfig, logger *slog.Logger) (*service.APIKeyService, *i18n.Catalog, error) {
	catalog, err := i18n.New(cfg.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("load messages: %w", err)
	}

	generator, err := auth.NewKeyGenerator(auth.KeyKind(cfg.GenerateKey.KeyType))
	if err != nil {
		return nil, nil, err
	}

	renderer := output.NewRenderer(catalog, config.NewPathFlattener(cfg.GenerateKey.Environment))
	return service.NewAPIKeyService(generator, renderer, logger), catalog, nil
}
