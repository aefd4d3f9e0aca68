package service

import (
	"fmt"
	"log/slog"

	"github.com/kese-app/goldday/internal/auth"
	"github.com/kese-app/goldday/internal/models"
)

// SessionService issues participant session tokens. There are no user
// accounts: the wallet address is the identity, and the token just binds a
// nickname to it for the duration of a session.
type SessionService struct {
	jwt *auth.JWTManager
}

// NewSessionService creates a SessionService signing with the given manager.
func NewSessionService(jwt *auth.JWTManager) *SessionService {
	return &SessionService{jwt: jwt}
}

// IssueToken creates a session token for the given wallet address.
func (s *SessionService) IssueToken(address, nickname string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("%w: address required", models.ErrValidation)
	}
	token, err := s.jwt.Generate(address, nickname)
	if err != nil {
		slog.Error("IssueToken failed", "address", address, "error", err)
		return "", err
	}
	slog.Info("Session issued", "address", address)
	return token, nil
}
