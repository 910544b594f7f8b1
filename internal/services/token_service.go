package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"agroterra/internal/models"
)

// SessionClaims is the payload of an issued access token.
type SessionClaims struct {
	AccountID int    `json:"account_id"`
	Email     string `json:"email"`
	RoleID    int    `json:"role_id"`
	jwt.RegisteredClaims
}

// TokenService issues the bearer token handed out once the two-factor step
// completes. Pure function of the account identity at issue time.
type TokenService interface {
	Issue(acc *models.Account) (string, error)
	Parse(tokenStr string) (*SessionClaims, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewTokenService(secret []byte, ttl time.Duration, clock clockwork.Clock) TokenService {
	return &tokenService{secret: secret, ttl: ttl, clock: clock}
}

func (s *tokenService) Issue(acc *models.Account) (string, error) {
	now := s.clock.Now().UTC()
	claims := &SessionClaims{
		AccountID: acc.ID,
		Email:     acc.Email,
		RoleID:    acc.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.clock.Now().UTC() }))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}
