package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoSecret     = errors.New("token secret is not configured")
)

// Claims are the token claims issued by the backend. The subject is the
// ledger's user id.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Config holds configuration for the auth service
type Config struct {
	// Secret is the HS256 key shared with the backend that issues tokens
	Secret string
	Issuer string
	// TokenTTL applies to tokens minted by Issue
	TokenTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Issuer:   "lanova",
		TokenTTL: 24 * time.Hour,
	}
}

// Service verifies bearer tokens and mints development tokens
type Service struct {
	clock  clock.Clock
	secret []byte
	issuer string
	ttl    time.Duration
}

// New creates a new AuthService
func New(clock clock.Clock, cfg Config) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		clock:  clock,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
	}
}

// ValidateToken verifies a token's signature and expiry and returns the caller
func (s *Service) ValidateToken(tokenString string) (*model.Player, error) {
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	role := claims.Role
	if role == "" {
		role = "user"
	}
	return &model.Player{
		ID:          model.PlayerID(claims.Subject),
		DisplayName: claims.Name,
		Role:        role,
	}, nil
}

// Issue mints a signed token for a player
func (s *Service) Issue(player model.Player) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	now := s.clock.Now()
	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: player.DisplayName,
		Role: player.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(player.ID),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	ValidateToken(token string) (*model.Player, error)
	Issue(player model.Player) (string, time.Time, error)
}

var _ ServiceInterface = (*Service)(nil)
