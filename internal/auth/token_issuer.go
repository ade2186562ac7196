package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL = 12 * time.Hour
	operatorSubject = "operator"
	tokenIssuer     = "botadmin-auth"
	tokenAudience   = "botadmin-api"
)

var (
	errMissingSigningSecret = errors.New("signing secret must be provided")
	errMissingAccessKey     = errors.New("access key must be configured")
	// ErrInvalidAccessKey rejects a login attempt with the wrong key.
	ErrInvalidAccessKey = errors.New("invalid access key")
)

// TokenIssuerConfig configures the operator session token issuer.
type TokenIssuerConfig struct {
	SigningSecret []byte
	AccessKey     string
	TokenTTL      time.Duration
	Clock         func() time.Time
}

// TokenIssuer exchanges the operator access key for short-lived session JWTs
// and validates them on protected routes.
type TokenIssuer struct {
	config TokenIssuerConfig
	clock  func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with sane defaults.
func NewTokenIssuer(cfg TokenIssuerConfig) *TokenIssuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TokenIssuer{
		config: TokenIssuerConfig{
			SigningSecret: cfg.SigningSecret,
			AccessKey:     cfg.AccessKey,
			TokenTTL:      ttl,
			Clock:         clock,
		},
		clock: clock,
	}
}

// VerifyAccessKey checks a raw access key, the credential both the operator
// login and the bot heartbeat present.
func (i *TokenIssuer) VerifyAccessKey(accessKey string) error {
	if i.config.AccessKey == "" {
		return errMissingAccessKey
	}
	if subtle.ConstantTimeCompare([]byte(accessKey), []byte(i.config.AccessKey)) != 1 {
		return ErrInvalidAccessKey
	}
	return nil
}

// IssueSessionToken checks the supplied access key and produces a signed JWT
// plus its expiry in seconds.
func (i *TokenIssuer) IssueSessionToken(accessKey string) (string, int64, error) {
	if len(i.config.SigningSecret) == 0 {
		return "", 0, errMissingSigningSecret
	}
	if err := i.VerifyAccessKey(accessKey); err != nil {
		return "", 0, err
	}

	now := i.clock().UTC()
	expiresAt := now.Add(i.config.TokenTTL).UTC()

	registered := jwt.RegisteredClaims{
		Subject:   operatorSubject,
		Issuer:    tokenIssuer,
		Audience:  []string{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, registered)
	signed, err := token.SignedString(i.config.SigningSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(expiresAt.Sub(now).Seconds()), nil
}

// ValidateToken ensures the session JWT is well formed and returns the
// subject.
func (i *TokenIssuer) ValidateToken(tokenString string) (string, error) {
	if len(i.config.SigningSecret) == 0 {
		return "", errMissingSigningSecret
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", token.Method.Alg())
			}
			return i.config.SigningSecret, nil
		},
		jwt.WithAudience(tokenAudience),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(i.clock),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("subject claim must be provided")
	}
	return claims.Subject, nil
}
