package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

const (
	// opaqueKeyPrefix is the prefix of every opaque token.
	opaqueKeyPrefix = "dm_"

	// opaqueKeyRandomBytes is the number of random bytes in an opaque token (64 hex chars).
	opaqueKeyRandomBytes = 32
)

// KeyGenerator issues new API keys.
type KeyGenerator interface {
	Generate() (*GeneratedKey, error)
}

// NewKeyGenerator returns the generator for kind.
func NewKeyGenerator(kind KeyKind) (KeyGenerator, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyType, kind)
	}
	if kind == KeyKindOpaque {
		return NewOpaqueKeyGenerator(nil), nil
	}
	return NewJWTKeyGenerator(nil), nil
}

// JWTKeyGenerator issues ES384-signed JWTs. Each key uses a fresh P-384 key
// pair whose private half is discarded once the token is signed.
type JWTKeyGenerator struct {
	rand io.Reader
}

// NewJWTKeyGenerator creates a JWTKeyGenerator reading entropy from r.
// A nil r uses crypto/rand.
func NewJWTKeyGenerator(r io.Reader) *JWTKeyGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &JWTKeyGenerator{rand: r}
}

// Generate issues a new key. PublicKey is the unpadded base64url encoding of
// the public JWK.
func (g *JWTKeyGenerator) Generate() (*GeneratedKey, error) {
	subject, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return nil, fmt.Errorf("generate subject: %w", err)
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P384(), g.rand)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Audience: jwt.ClaimStrings{APIKeyAudience},
		Issuer:   APIKeyIssuer,
		Subject:  subject.String(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodES384, claims).SignedString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	publicKey, err := encodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}

	return &GeneratedKey{
		Token:     token,
		Subject:   subject.String(),
		PublicKey: publicKey,
		Kind:      KeyKindJWT,
	}, nil
}

// encodePublicKey exports pub as a JWK and base64url encodes its JSON form.
func encodePublicKey(pub *ecdsa.PublicKey) (string, error) {
	key, err := jwk.FromRaw(pub)
	if err != nil {
		return "", fmt.Errorf("export public key: %w", err)
	}
	data, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// OpaqueKeyGenerator issues random tokens whose public key is an argon2id hash.
type OpaqueKeyGenerator struct {
	rand   io.Reader
	params *argon2id.Params
}

// NewOpaqueKeyGenerator creates an OpaqueKeyGenerator reading entropy from r.
// A nil r uses crypto/rand. Hash salts always come from crypto/rand.
func NewOpaqueKeyGenerator(r io.Reader) *OpaqueKeyGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &OpaqueKeyGenerator{rand: r, params: argon2idParams}
}

// Generate issues a new key.
// Token format: dm_ + 64 random hex characters.
func (g *OpaqueKeyGenerator) Generate() (*GeneratedKey, error) {
	subject, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return nil, fmt.Errorf("generate subject: %w", err)
	}

	b := make([]byte, opaqueKeyRandomBytes)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return nil, fmt.Errorf("generate random bytes: %w", err)
	}
	token := opaqueKeyPrefix + hex.EncodeToString(b)

	hash, err := argon2id.CreateHash(token, g.params)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}

	return &GeneratedKey{
		Token:     token,
		Subject:   subject.String(),
		PublicKey: hash,
		Kind:      KeyKindOpaque,
	}, nil
}
