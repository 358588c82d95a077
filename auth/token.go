package auth

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

type AuthConfig struct {
	// Secret used to sign access tokens, a random one is generated when empty
	// which invalidates tokens on every restart.
	TokenSecret string `yaml:"tokenSecret"`
	// Token lifetime in seconds
	TokenExpiry int `yaml:"tokenExpiry"`
	// Minimum seconds between user store backups, backups are off when
	// BackupCount is zero
	BackupFrequency int `yaml:"backupFrequency"`
	BackupCount     int `yaml:"backupCount"`
}

// ---------------------------

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenIssuer(cfg AuthConfig) (*TokenIssuer, error) {
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		log.Warn().Msg("tokenSecret not set, using ephemeral secret")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("could not generate token secret: %w", err)
		}
	}
	expiry := time.Duration(cfg.TokenExpiry) * time.Second
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &TokenIssuer{secret: secret, expiry: expiry, now: time.Now}, nil
}

func (ti *TokenIssuer) Issue(username string) (string, error) {
	now := ti.now()
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the username the token was
// issued for. A leading "Bearer " is tolerated.
func (ti *TokenIssuer) Verify(token string) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(ti.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return "", fmt.Errorf("%w: missing username", ErrInvalidToken)
	}
	return claims.Username, nil
}
