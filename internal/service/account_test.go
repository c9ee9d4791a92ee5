package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/auth"
	"github.com/sakif/symvora/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int

	// set to simulate a database failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return apperror.Conflict("user", user.Email)
	}
	f.nextID++
	user.ID = "user-" + string(rune('0'+f.nextID))
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	f.byID[user.ID] = &stored
	f.byEmail[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateName(_ context.Context, id, name string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.Name = name
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = hash
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAccountService(t *testing.T, repo *fakeUserRepo) *AccountService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAccountService(repo, ts, auth.NewPasswordServiceWithCost(bcrypt.MinCost), discardLogger())
}

func mustSignUp(t *testing.T, svc *AccountService) *AuthResult {
	t.Helper()
	res, err := svc.SignUp(context.Background(), "Ada", "Ada@Example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	return res
}

// =========================================================================
// SignUp
// =========================================================================

func TestSignUp_CreatesUserAndToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)

	res := mustSignUp(t, svc)

	if res.User.Email != "ada@example.com" {
		t.Errorf("Email = %q, want lower-cased address", res.User.Email)
	}
	if res.User.PasswordHash == "secret1" || !strings.HasPrefix(res.User.PasswordHash, "$2") {
		t.Errorf("PasswordHash = %q, want a bcrypt hash", res.User.PasswordHash)
	}

	userID, err := svc.ValidateToken(res.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if userID != res.User.ID {
		t.Errorf("token subject = %q, want %q", userID, res.User.ID)
	}
}

func TestSignUp_Validation(t *testing.T) {
	svc := newTestAccountService(t, newFakeUserRepo())

	tests := []struct {
		name, userName, email, password, wantMsg string
	}{
		{"missing field", "", "ada@example.com", "secret1", "Please fill all fields"},
		{"bad email", "Ada", "ada-at-example", "secret1", "Enter a valid email"},
		{"short password", "Ada", "ada@example.com", "12345", "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.userName, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("SignUp() error = %v, want ErrValidation", err)
			}
			if got := apperror.MessageOf(err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc := newTestAccountService(t, newFakeUserRepo())
	mustSignUp(t, svc)

	_, err := svc.SignUp(context.Background(), "Other", "ADA@example.com", "secret2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("SignUp() error = %v, want ErrConflict", err)
	}
}

func TestSignUp_RepositoryFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("disk full")
	svc := newTestAccountService(t, repo)

	_, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "secret1")
	if err == nil || errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("SignUp() error = %v, want a plain storage error", err)
	}
}

// =========================================================================
// Login
// =========================================================================

func TestLogin(t *testing.T) {
	svc := newTestAccountService(t, newFakeUserRepo())
	created := mustSignUp(t, svc)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"correct, mixed case email", " ADA@example.com ", "secret1", nil},
		{"wrong password", "ada@example.com", "secret2", apperror.ErrUnauthorized},
		{"unknown email", "bob@example.com", "secret1", apperror.ErrUnauthorized},
		{"blank", "", "", apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if res.User.ID != created.User.ID || res.Token == "" {
				t.Errorf("Login() = %+v", res)
			}
		})
	}
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	svc := newTestAccountService(t, newFakeUserRepo())
	mustSignUp(t, svc)

	_, errWrong := svc.Login(context.Background(), "ada@example.com", "nope-nope")
	_, errUnknown := svc.Login(context.Background(), "who@example.com", "nope-nope")

	if apperror.MessageOf(errWrong) != apperror.MessageOf(errUnknown) {
		t.Errorf("messages differ: %q vs %q", apperror.MessageOf(errWrong), apperror.MessageOf(errUnknown))
	}
}

// =========================================================================
// Profile
// =========================================================================

func TestUpdateName(t *testing.T) {
	svc := newTestAccountService(t, newFakeUserRepo())
	res := mustSignUp(t, svc)

	u, err := svc.UpdateName(context.Background(), res.User.ID, "  Ada L.  ")
	if err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}
	if u.Name != "Ada L." || u.Email != "ada@example.com" {
		t.Errorf("UpdateName() = %+v", u)
	}

	if _, err := svc.UpdateName(context.Background(), res.User.ID, "   "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("UpdateName(blank) error = %v, want ErrValidation", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc := newTestAccountService(t, newFakeUserRepo())
	res := mustSignUp(t, svc)
	ctx := context.Background()

	if err := svc.UpdatePassword(ctx, res.User.ID, "wrong-current", "newpass"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("UpdatePassword(wrong current) error = %v, want ErrUnauthorized", err)
	}
	if err := svc.UpdatePassword(ctx, res.User.ID, "secret1", "123"); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("UpdatePassword(short) error = %v, want ErrValidation", err)
	}
	if err := svc.UpdatePassword(ctx, res.User.ID, "secret1", "newpass"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "secret1"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("old password still works: %v", err)
	}
	if _, err := svc.Login(ctx, "ada@example.com", "newpass"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	svc := newTestAccountService(t, newFakeUserRepo())
	res := mustSignUp(t, svc)

	u, err := svc.GetUserByID(context.Background(), res.User.ID)
	if err != nil || u.Email != "ada@example.com" {
		t.Fatalf("GetUserByID() = %+v, %v", u, err)
	}
	if _, err := svc.GetUserByID(context.Background(), ""); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("GetUserByID(\"\") error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.GetUserByID(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(ghost) error = %v, want ErrNotFound", err)
	}
}
