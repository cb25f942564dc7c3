package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type RegisterInput struct {
	FirstName string
	LastName  string
	BirthDate string
	Email     string
	Password  string
}

// Register stores a new account. Passwords are bcrypt-hashed; the hash never
// leaves this package.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var existing User
	err := s.db.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		return User{}, apperr.ConflictErr("Email is already registered.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, apperr.Wrap(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, apperr.Wrap(err)
	}

	u := User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		BirthDate:    in.BirthDate,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isDup(err) {
			return User{}, apperr.ConflictErr("Email is already registered.")
		}
		return User{}, apperr.Wrap(err)
	}
	return u, nil
}

// Login verifies credentials. Unknown email and wrong password both come back
// unauthorized; the public message does not say which.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u User
	err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, apperr.UnauthorizedErr("Invalid email or password.")
	}
	if err != nil {
		return User{}, apperr.Wrap(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, apperr.UnauthorizedErr("Invalid email or password.")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

func isDup(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
