// Package auth contains the domain types and logic for monitor API keys.
package auth

import (
	"log/slog"
)

// APIKeyScheme is the Authorization header scheme clients present API keys with.
const APIKeyScheme = "Bearer"

// Claims carried by JWT API keys.
const (
	// APIKeyAudience is the audience of every issued token.
	APIKeyAudience = "https://github.com/dotnet/dotnet-monitor"
	// APIKeyIssuer identifies tokens minted by the generatekey command.
	APIKeyIssuer = "https://github.com/dotnet/dotnet-monitor/generatekey+MonitorApiKey"
)

// KeyKind identifies how an API key is verified.
type KeyKind string

const (
	// KeyKindJWT is a signed JWT verified by an ECDSA public key (JWK).
	KeyKindJWT KeyKind = "jwt"
	// KeyKindOpaque is a random token verified by an argon2id hash.
	KeyKindOpaque KeyKind = "opaque"
)

// IsValid returns true if the kind is a known key kind.
func (k KeyKind) IsValid() bool {
	switch k {
	case KeyKindJWT, KeyKindOpaque:
		return true
	default:
		return false
	}
}

// GeneratedKey is a freshly issued API key.
type GeneratedKey struct {
	// Token is sent by clients in the Authorization header. It is shown once
	// and must never be stored server-side.
	Token string
	// Subject correlates the token with its server-side record.
	Subject string
	// PublicKey is stored server-side to verify presentations of Token.
	PublicKey string
	// Kind is the key kind that produced this key.
	Kind KeyKind
}

// LogValue implements slog.LogValuer. The token is never logged.
func (k *GeneratedKey) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subject", k.Subject),
		slog.String("kind", string(k.Kind)),
	)
}
