package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AuthService wraps the slow one-way password hash. PIN hashing is a
// separate, fast primitive (see pin.go); the two must not be mixed up.
type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(plain, hash string) bool
}

type authService struct {
	cost int
}

func NewAuthService() AuthService {
	return &authService{cost: bcrypt.DefaultCost}
}

func (s *authService) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt generate: %w", err)
	}
	return string(b), nil
}

func (s *authService) CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
