package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/model"
)

const tokenAlphabet = "0123456789"

// Service verifies the admin token gating host-only operations. The token
// is held only as a bcrypt hash after issuing.
type Service struct {
	token string
	hash  []byte
}

// New creates an auth Service around the given admin token. An empty token
// generates a fresh 4-digit one.
func New(rnd random.Random, token string) (*Service, error) {
	if token == "" {
		token = rnd.String(4, tokenAlphabet)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin token: %w", err)
	}
	return &Service{token: token, hash: hash}, nil
}

// Token returns the issued token, for showing to the host once at startup
func (s *Service) Token() string {
	return s.token
}

// Verify checks a presented token against the issued one
func (s *Service) Verify(token string) error {
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(token)); err != nil {
		return model.ErrNotAuthorized
	}
	return nil
}
