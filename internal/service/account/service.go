package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"promptdesk/internal/models"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// ErrStoreUnavailable reports that the credential database never connected.
// Callers surface it as a retry-later notice instead of failing the process.
var ErrStoreUnavailable = errors.New("database not connected, please try again later")

// Expected signup/login outcomes, reported verbatim to the user.
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service owns user records in the credential store.
type Service struct {
	db *sql.DB
}

// NewService builds the credential store adapter. db may be nil when the
// store failed to connect at startup; every operation checks the sentinel.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Register validates the signup form and creates the user record.
// Validation failures have no side effects.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (*models.User, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}
	username = strings.TrimSpace(username)

	if username != "" {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if exists {
			return nil, ErrUsernameTaken
		}
	}
	if username == "" || password == "" || confirm == "" {
		return nil, ErrFieldsRequired
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, string(hash), now,
	)
	if err != nil {
		// the unique constraint backstops the racy existence check
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return &models.User{ID: id, Username: username, PasswordHash: string(hash), CreatedAt: now}, nil
}

// Login verifies the credentials and returns the matching identity.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID loads a user record by primary key.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}
	if id <= 0 {
		return nil, errors.New("invalid user id")
	}
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}
