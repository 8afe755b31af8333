package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSigningKey = errors.New("no JWT signing key")

// JWT signs table access tokens with HS256. Without a configured secret a
// random one is generated, so tokens do not survive a restart.
type JWT struct {
	Secret        string   `json:"secret"`
	SecretFile    string   `json:"secret_file"`
	TokenLifetime Duration `json:"token_lifetime"`

	key []byte
}

type TableClaims struct {
	TableID string `json:"table_id"`
	jwt.RegisteredClaims
}

func NewJWT(secret []byte, lifetime time.Duration) *JWT {
	return &JWT{TokenLifetime: Duration{lifetime}, key: secret}
}

func (j *JWT) loadSecret() error {
	lookupString("JWT_SECRET", &j.Secret)
	lookupString("JWT_SECRET_FILE", &j.SecretFile)

	switch {
	case j.Secret != "":
		j.key = []byte(j.Secret)
	case j.SecretFile != "":
		data, err := os.ReadFile(j.SecretFile)
		if err != nil {
			return fmt.Errorf("unable to read JWT secret file: %w", err)
		}
		j.key = []byte(strings.TrimSpace(string(data)))
	default:
		j.key = make([]byte, 32)
		if _, err := rand.Read(j.key); err != nil {
			return fmt.Errorf("unable to generate JWT secret: %w", err)
		}
	}
	if len(j.key) == 0 {
		return ErrNoSigningKey
	}
	return nil
}

func (j *JWT) Sign(tableID string, now time.Time) (string, error) {
	if len(j.key) == 0 {
		return "", ErrNoSigningKey
	}
	claims := TableClaims{
		TableID: tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TokenLifetime.Duration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
}

func (j *JWT) Parse(tokenString string) (*TableClaims, error) {
	if len(j.key) == 0 {
		return nil, ErrNoSigningKey
	}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&TableClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TableClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
