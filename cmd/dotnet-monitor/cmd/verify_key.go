package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonPalyok/dotnet-monitor/internal/config"
)

var (
	verifyKeyToken     string
	verifyKeySubject   string
	verifyKeyPublicKey string
)

var verifyKeyCmd = &cobra.Command{
	Use:     "verifykey",
	Aliases: []string{"verify-key"},
	Short:   "Check a token against a subject and public key",
	Long: `Check that a token was issued for the given subject and matches the
public key stored in the server configuration.

Exits with status 0 when the token is valid and 1 otherwise.

Security note: a token passed with --token appears in shell history.
Pass --token - to read it from standard input instead.

Example:
  dotnet-monitor verifykey --subject "$SUBJECT" --public-key "$PUBLIC_KEY" --token - < token.txt`,
	Args: cobra.NoArgs,
	RunE: runVerifyKey,
}

func init() {
	verifyKeyCmd.Flags().StringVar(&verifyKeyToken, "token", "", "token to verify, or - to read it from stdin")
	verifyKeyCmd.Flags().StringVar(&verifyKeySubject, "subject", "", "subject from the server configuration")
	verifyKeyCmd.Flags().StringVar(&verifyKeyPublicKey, "public-key", "", "public key from the server configuration")
	_ = verifyKeyCmd.MarkFlagRequired("token")
	_ = verifyKeyCmd.MarkFlagRequired("subject")
	_ = verifyKeyCmd.MarkFlagRequired("public-key")
	rootCmd.AddCommand(verifyKeyCmd)
}

func runVerifyKey(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	token := verifyKeyToken
	if token == "-" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read token from stdin: %w", err)
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		return errors.New("token is required")
	}

	svc, catalog, err := newAPIKeyService(cfg, logger)
	if err != nil {
		return err
	}

	if err := svc.VerifyKey(cmd.Context(), token, verifyKeySubject, verifyKeyPublicKey); err != nil {
		return fmt.Errorf("verify api key: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), catalog.T("verify_key_valid", map[string]any{"Subject": verifyKeySubject}))
	return nil
}
