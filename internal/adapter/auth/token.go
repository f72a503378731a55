package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type Claims struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates the HS256 tokens carried in the
// Authorization header.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{cfg: cfg, now: time.Now}
}

func (m *TokenManager) Issue(user domain.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.TTL)

	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Principal validates the token and returns the caller it identifies.
func (m *TokenManager) Principal(tokenString string) (domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithIssuer(m.cfg.Issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, ErrExpiredToken
		}
		return domain.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 || !claims.Role.Valid() {
		return domain.Principal{}, ErrInvalidToken
	}

	return domain.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
