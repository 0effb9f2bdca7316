package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonPalyok/dotnet-monitor/internal/config"
	"github.com/AntonPalyok/dotnet-monitor/internal/domain/output"
)

var (
	generateKeyOutput  string
	generateKeyKeyType string
)

var generateKeyCmd = &cobra.Command{
	Use:     "generatekey",
	Aliases: []string{"generate-key"},
	Short:   "Generate an API key and the settings that accept it",
	Long: `Generate a new API key for the monitoring service.

The output contains the Authorization header clients must send and the
server settings (Authentication:MonitorApiKey:Subject and PublicKey) that
accept it, written in the requested format:

  json         settings document to merge into the server's settings file
  text         human-readable subject and public key
  cmd          Windows command shell "set" statements
  powershell   PowerShell "$env:" assignments
  shell        POSIX shell "export" statements

The token is printed once. Only the subject and public key belong in the
server configuration.

Examples:
  # JSON settings (default)
  dotnet-monitor generatekey

  # POSIX shell exports
  dotnet-monitor generatekey -o shell

  # Random token verified by an argon2id hash instead of a signed JWT
  dotnet-monitor generatekey --key-type opaque`,
	Args: cobra.NoArgs,
	RunE: runGenerateKey,
}

func init() {
	generateKeyCmd.Flags().StringVarP(&generateKeyOutput, "output", "o", "",
		fmt.Sprintf("output format: %s (default: json)", strings.Join(output.Names(), ", ")))
	generateKeyCmd.Flags().StringVar(&generateKeyKeyType, "key-type", "", "key type: jwt or opaque (default: jwt)")
	rootCmd.AddCommand(generateKeyCmd)
}

func runGenerateKey(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Parse before generating anything so an unknown format writes nothing.
	format, err := output.ParseOutputFormat(cfg.GenerateKey.Output)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	svc, _, err := newAPIKeyService(cfg, logger)
	if err != nil {
		return err
	}

	text, err := svc.GenerateKey(cmd.Context(), format)
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), text)
	return err
}
