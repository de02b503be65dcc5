// Package video issues the access tokens clients present to the hosted
// video service when they join a town's room.
package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotConfigured = errors.New("video credentials not configured")

// Config holds the hosted account credentials.
type Config struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
	TTL          time.Duration
}

// Grants scope a token to one identity in one room.
type Grants struct {
	Identity string     `json:"identity"`
	Video    VideoGrant `json:"video"`
}

type VideoGrant struct {
	Room string `json:"room"`
}

// Claims is the payload of an access token.
type Claims struct {
	Grants Grants `json:"grants"`
	jwt.RegisteredClaims
}

// JWTProvider signs access tokens with the account's API key.
type JWTProvider struct {
	cfg Config
	now func() time.Time
}

func NewJWTProvider(cfg Config) *JWTProvider {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &JWTProvider{cfg: cfg, now: time.Now}
}

// TokenForTown returns a token admitting playerID to the room named townID.
func (p *JWTProvider) TokenForTown(_ context.Context, townID, playerID string) (string, error) {
	if p.cfg.APIKeySecret == "" || p.cfg.APIKeySID == "" || p.cfg.AccountSID == "" {
		return "", ErrNotConfigured
	}

	now := p.now()
	claims := &Claims{
		Grants: Grants{
			Identity: playerID,
			Video:    VideoGrant{Room: townID},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", p.cfg.APIKeySID, now.Unix()),
			Issuer:    p.cfg.APIKeySID,
			Subject:   p.cfg.AccountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"
	signed, err := token.SignedString([]byte(p.cfg.APIKeySecret))
	if err != nil {
		return "", fmt.Errorf("signing video token: %w", err)
	}
	return signed, nil
}

// Parse validates a token issued by p and returns its claims.
func (p *JWTProvider) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(p.cfg.APIKeySecret), nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// DevProvider hands out placeholder tokens for local development, where
// no video service is reachable.
type DevProvider struct{}

func (DevProvider) TokenForTown(_ context.Context, townID, playerID string) (string, error) {
	return "dev:" + townID + ":" + playerID, nil
}
