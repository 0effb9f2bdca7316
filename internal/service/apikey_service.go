// Package service wires key generation and rendering for the CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/AntonPalyok/dotnet-monitor/internal/domain/auth"
	"github.com/AntonPalyok/dotnet-monitor/internal/domain/output"
)

// APIKeyService issues API keys and renders them for the operator.
type APIKeyService struct {
	generator auth.KeyGenerator
	renderer  *output.Renderer
	logger    *slog.Logger
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(generator auth.KeyGenerator, renderer *output.Renderer, logger *slog.Logger) *APIKeyService {
	return &APIKeyService{
		generator: generator,
		renderer:  renderer,
		logger:    logger,
	}
}

// GenerateKey issues a new key and returns the text block presenting it in
// format. The format is checked before any key material is generated, so an
// unknown format returns *output.UnknownFormatError and no output. A context
// cancelled before the call returns ctx.Err().
func (s *APIKeyService) GenerateKey(ctx context.Context, format output.OutputFormat) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !format.IsValid() {
		return "", &output.UnknownFormatError{Value: format.String()}
	}

	key, err := s.generator.Generate()
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}

	text, err := s.renderer.Render(key, format)
	if err != nil {
		return "", err
	}

	s.logger.Debug("api key generated",
		"key", key,
		"public_key_fingerprint", Fingerprint(key.PublicKey),
		"format", format.String(),
	)
	return text, nil
}

// VerifyKey checks a token against the stored subject and public key.
func (s *APIKeyService) VerifyKey(ctx context.Context, token, subject, publicKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := auth.VerifyKey(token, subject, publicKey); err != nil {
		s.logger.Debug("api key rejected",
			"subject", subject,
			"public_key_fingerprint", Fingerprint(publicKey),
			"error", err,
		)
		return err
	}
	s.logger.Debug("api key verified",
		"subject", subject,
		"kind", string(auth.DetectKeyKind(publicKey)),
	)
	return nil
}

// Fingerprint returns a short, non-secret identifier of a public key for
// correlating log lines with server configuration.
func Fingerprint(publicKey string) string {
	return strconv.FormatUint(xxhash.Sum64String(publicKey), 16)
}
