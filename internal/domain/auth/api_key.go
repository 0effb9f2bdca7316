package auth

import (
	"crypto/ecdsa"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// ErrInvalidKey is returned when a token does not match its public key.
var ErrInvalidKey = errors.New("invalid api key")

// ErrUnknownKeyType is returned when a key kind or public key format is unrecognized.
var ErrUnknownKeyType = errors.New("unknown key type")

// ErrMalformedPublicKey is returned when a public key cannot be decoded.
var ErrMalformedPublicKey = errors.New("malformed public key")

// argon2idParams defines OWASP minimum parameters for Argon2id.
// Memory: 47 MiB, Iterations: 1, Parallelism: 1
var argon2idParams = &argon2id.Params{
	Memory:      47 * 1024, // 47 MiB (OWASP minimum: 46 MiB)
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// DetectKeyKind identifies the key kind from a stored public key.
// Returns KeyKindOpaque for argon2id PHC hashes, KeyKindJWT for base64url
// encoded JWKs and an empty kind for anything else.
func DetectKeyKind(publicKey string) KeyKind {
	if strings.HasPrefix(publicKey, "$argon2id$") {
		return KeyKindOpaque
	}
	if publicKey == "" {
		return ""
	}
	if _, err := base64.RawURLEncoding.DecodeString(publicKey); err == nil {
		return KeyKindJWT
	}
	return ""
}

// VerifyKey checks that token was issued for subject and matches publicKey.
// Returns nil on match, ErrInvalidKey (wrapped) on mismatch, ErrUnknownKeyType
// or ErrMalformedPublicKey when publicKey cannot be used.
func VerifyKey(token, subject, publicKey string) error {
	if token == "" || subject == "" {
		return ErrInvalidKey
	}

	switch DetectKeyKind(publicKey) {
	case KeyKindJWT:
		return verifyJWT(token, subject, publicKey)
	case KeyKindOpaque:
		match, err := safeArgon2idCompare(token, publicKey)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
		}
		if !match {
			return ErrInvalidKey
		}
		return nil
	default:
		return ErrUnknownKeyType
	}
}

// verifyJWT validates signature, method and claims of an ES384 token.
func verifyJWT(token, subject, publicKey string) error {
	pub, err := decodePublicKey(publicKey)
	if err != nil {
		return err
	}

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES384.Alg()}),
		jwt.WithAudience(APIKeyAudience),
		jwt.WithIssuer(APIKeyIssuer),
		jwt.WithSubject(subject),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}

// decodePublicKey reverses encodePublicKey.
func decodePublicKey(publicKey string) (*ecdsa.PublicKey, error) {
	data, err := base64.RawURLEncoding.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	pub, ok := raw.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: want EC public key, got %T", ErrMalformedPublicKey, raw)
	}
	return pub, nil
}

// safeArgon2idCompare wraps argon2id.ComparePasswordAndHash with panic recovery.
// The underlying argon2 library panics on malformed hashes with invalid
// parameters (e.g. t=0 rounds, p=0 parallelism).
func safeArgon2idCompare(token, storedHash string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = false
			err = fmt.Errorf("invalid argon2id hash parameters: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(token, storedHash)
}
