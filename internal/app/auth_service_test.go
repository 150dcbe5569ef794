package app

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"ketotrack/internal/domain"
)

type mockAccountRepo struct {
	getByEmailFn func(ctx context.Context, email string) (*domain.Account, error)
	createFn     func(ctx context.Context, a domain.Account) error
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAccountRepo) Create(ctx context.Context, a domain.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return nil
}

type recordingSessions struct {
	signedIn  []string
	signedOut int
}

func (s *recordingSessions) SignIn(uid string) { s.signedIn = append(s.signedIn, uid) }
func (s *recordingSessions) SignOut()          { s.signedOut++ }

func TestAuthService_SignIn_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	accounts := &mockAccountRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.Account, error) {
			if email != "amy@example.com" {
				t.Errorf("expected trimmed email, got %q", email)
			}
			return &domain.Account{ID: "uid-1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	sessions := &recordingSessions{}

	svc := NewAuthService(accounts, sessions)
	account, err := svc.SignIn(ctx, " amy@example.com ", password)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if account.ID != "uid-1" {
		t.Errorf("expected uid-1, got %s", account.ID)
	}
	if len(sessions.signedIn) != 1 || sessions.signedIn[0] != "uid-1" {
		t.Errorf("expected uid-1 signed in, got %v", sessions.signedIn)
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	accounts := &mockAccountRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.Account, error) {
			return &domain.Account{ID: "uid-1", PasswordHash: string(hash)}, nil
		},
	}
	sessions := &recordingSessions{}

	_, err := NewAuthService(accounts, sessions).SignIn(context.Background(), "amy@example.com", "wrong")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(sessions.signedIn) != 0 {
		t.Error("failed sign-in must not start a session")
	}
}

func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	_, err := NewAuthService(&mockAccountRepo{}, &recordingSessions{}).SignIn(context.Background(), "nobody@example.com", "whatever")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignUp(t *testing.T) {
	var created domain.Account
	accounts := &mockAccountRepo{
		createFn: func(ctx context.Context, a domain.Account) error {
			created = a
			return nil
		},
	}
	sessions := &recordingSessions{}

	account, err := NewAuthService(accounts, sessions).SignUp(context.Background(), "amy@example.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID == "" || account.ID != created.ID {
		t.Errorf("expected generated id to be stored, got %q / %q", account.ID, created.ID)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1")) != nil {
		t.Error("stored hash does not match password")
	}
	if len(sessions.signedIn) != 1 || sessions.signedIn[0] != account.ID {
		t.Errorf("expected new account signed in, got %v", sessions.signedIn)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc := NewAuthService(&mockAccountRepo{}, &recordingSessions{})
	if _, err := svc.SignUp(context.Background(), "amy@example.com", "123"); err != ErrWeakPassword {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := svc.SignUp(context.Background(), "not-an-email", "secret1"); err != ErrInvalidEmail {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}

	taken := NewAuthService(&mockAccountRepo{
		createFn: func(context.Context, domain.Account) error { return domain.ErrAccountExists },
	}, &recordingSessions{})
	if _, err := taken.SignUp(context.Background(), "amy@example.com", "secret1"); err != domain.ErrAccountExists {
		t.Errorf("expected ErrAccountExists, got %v", err)
	}
}

func TestAuthService_SSOAndSignOut(t *testing.T) {
	sessions := &recordingSessions{}
	svc := NewAuthService(&mockAccountRepo{}, sessions)

	if err := svc.SignInWithSubject(""); err == nil {
		t.Error("expected error for empty subject")
	}
	if err := svc.SignInWithSubject("oidc|42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.SignOut()

	if len(sessions.signedIn) != 1 || sessions.signedOut != 1 {
		t.Errorf("unexpected session calls: in=%v out=%d", sessions.signedIn, sessions.signedOut)
	}
}
