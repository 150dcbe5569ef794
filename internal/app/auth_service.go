package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ketotrack/internal/domain"
)

const minPasswordLen = 6

// Sessions is the identity holder that AuthService signs users into.
type Sessions interface {
	SignIn(uid string)
	SignOut()
}

// AuthService handles email/password accounts and drives the identity provider.
type AuthService struct {
	accounts domain.AccountRepository
	sessions Sessions
}

// NewAuthService creates a new authentication service.
func NewAuthService(accounts domain.AccountRepository, sessions Sessions) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
	}
}

// SignUp creates an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account := domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.sessions.SignIn(account.ID)
	return &account, nil
}

// SignIn checks credentials and signs the account in.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil || account == nil {
		return nil, ErrInvalidCredentials
	}
	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.sessions.SignIn(account.ID)
	return account, nil
}

// SignInWithSubject signs in a user already authenticated elsewhere (e.g. via SSO).
func (s *AuthService) SignInWithSubject(uid string) error {
	if uid == "" {
		return errors.New("empty subject")
	}
	s.sessions.SignIn(uid)
	return nil
}

// SignOut ends the current session.
func (s *AuthService) SignOut() {
	s.sessions.SignOut()
}
