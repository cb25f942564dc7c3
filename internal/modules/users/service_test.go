package users

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func registerInput() RegisterInput {
	return RegisterInput{
		FirstName: "Judy",
		LastName:  "Chue",
		BirthDate: "1998-04-12",
		Email:     "Judy@Example.com",
		Password:  "correct horse battery",
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	u, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "judy@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}

	var stored User
	if err := db.First(&stored, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in the clear")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("not a bcrypt hash: %q", stored.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	in := registerInput()
	in.Email = "JUDY@example.com" // case differs, same account
	_, err := svc.Register(context.Background(), in)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Conflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatal(err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		u, err := svc.Login(context.Background(), "judy@example.com", "correct horse battery")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if u.FirstName != "Judy" {
			t.Errorf("user mismatch: %+v", u)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "judy@example.com", "nope")
		assertUnauthorized(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "correct horse battery")
		assertUnauthorized(t, err)
	})
}

// Both failure modes must present identically so the endpoint does not reveal
// which emails are registered.
func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Unauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if ae.PublicMsg != "Invalid email or password." {
		t.Errorf("message = %q", ae.PublicMsg)
	}
}

func TestListOrdersByCreation(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		in := registerInput()
		in.Email = email
		if _, err := svc.Register(context.Background(), in); err != nil {
			t.Fatal(err)
		}
	}

	out, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}
