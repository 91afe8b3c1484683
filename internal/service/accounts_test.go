package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/auth"
	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository/sqlite"
)

// newTestAccounts wires an AccountService against a fresh in-memory database.
// bcrypt cost 4 keeps the hashing fast in tests.
func newTestAccounts(t *testing.T) (*AccountService, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewAccountService(db, auth.NewPasswordServiceForTest(4), tokens, logger), db
}

// =========================================================================
// REGISTER
// =========================================================================

func TestRegister(t *testing.T) {
	accounts, _ := newTestAccounts(t)

	user, err := accounts.Register(context.Background(), "  alice  ", "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want trimmed", user.Username)
	}
	if user.Role != model.RoleGuest {
		t.Errorf("Role = %q, want guest", user.Role)
	}
	if user.PasswordHash == "hunter2" || user.PasswordHash == "" {
		t.Error("password stored unhashed or not at all")
	}
}

func TestRegister_Validation(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"blank username", "  ", "hunter2"},
		{"long username", strings.Repeat("a", MaxUsernameLength+1), "hunter2"},
		{"short password", "alice", "12345"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := accounts.Register(ctx, tc.username, "", tc.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	if _, err := accounts.Register(ctx, "alice", "", "hunter2"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := accounts.Register(ctx, "alice", "", "hunter2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate Register() error = %v, want ErrConflict", err)
	}
}

func TestRegister_EmailOptional(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if _, err := accounts.Register(ctx, name, "", "hunter2"); err != nil {
			t.Fatalf("Register(%q) without email error = %v", name, err)
		}
	}
}

// =========================================================================
// LOGIN
// =========================================================================

func TestLogin(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	registered, err := accounts.Register(ctx, "alice", "", "hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, user, err := accounts.Login(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Error("Login() returned an empty token")
	}
	if user.ID != registered.ID {
		t.Errorf("user.ID = %q, want %q", user.ID, registered.ID)
	}
}

// Wrong password and unknown username yield the same error, so login
// responses do not reveal which accounts exist.
func TestLogin_UniformFailure(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	if _, err := accounts.Register(ctx, "alice", "", "hunter2"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, _, errWrongPass := accounts.Login(ctx, "alice", "wrong")
	_, _, errNoUser := accounts.Login(ctx, "nobody", "whatever")

	if !errors.Is(errWrongPass, apperror.ErrValidation) {
		t.Errorf("wrong password error = %v, want ErrValidation", errWrongPass)
	}
	if !errors.Is(errNoUser, apperror.ErrValidation) {
		t.Errorf("unknown user error = %v, want ErrValidation", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Errorf("failure messages differ: %q vs %q (leaks account existence)",
			errWrongPass.Error(), errNoUser.Error())
	}
}

// =========================================================================
// ADMIN BOOTSTRAP
// =========================================================================

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	accounts, db := newTestAccounts(t)
	ctx := context.Background()

	if err := accounts.EnsureAdmin(ctx, "admin", "admin"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	admin, err := db.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("bootstrapped user role = %q, want admin", admin.Role)
	}

	// Second start is a no-op and must not overwrite the stored hash,
	// even with a different password configured.
	if err := accounts.EnsureAdmin(ctx, "admin", "different-password"); err != nil {
		t.Fatalf("second EnsureAdmin() error = %v", err)
	}
	again, err := db.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if again.PasswordHash != admin.PasswordHash {
		t.Error("EnsureAdmin() overwrote the existing password hash")
	}
}

func TestEnsureAdmin_LoginWorks(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	if err := accounts.EnsureAdmin(ctx, "admin", "admin"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	_, user, err := accounts.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login() as bootstrapped admin error = %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", user.Role)
	}
}
