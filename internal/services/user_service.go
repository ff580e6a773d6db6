package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carhive/carhive-be/internal/apierr"
	"github.com/carhive/carhive-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	SignUp(email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
}

// UserService provides signup and login over the users table.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// SignUp registers a new user, hashing their password before storage.
// Plaintext passwords are never persisted.
func (s *UserService) SignUp(email, password string) (models.User, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return models.User{}, apierr.Wrap(apierr.Internal, "failed to check existing user", err)
	}
	if count > 0 {
		return models.User{}, apierr.New(apierr.Conflict, "User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apierr.Wrap(apierr.Internal, "failed to hash password", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    fromMillis(toMillis(time.Now())),
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, email, password_hash, created_at) VALUES(?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, toMillis(user.CreatedAt),
	)
	if err != nil {
		// The pre-check races with concurrent signups; the UNIQUE
		// constraint is the real guard.
		if isUniqueViolation(err) {
			return models.User{}, apierr.New(apierr.Conflict, "User already exists")
		}
		return models.User{}, apierr.Wrap(apierr.Internal, "failed to create user", err)
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown emails and wrong
// passwords produce the same error so callers cannot tell them apart.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	var user models.User
	var createdAt int64
	row := s.db.QueryRow("SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apierr.New(apierr.Unauthorized, "Invalid credentials")
		}
		return models.User{}, apierr.Wrap(apierr.Internal, "failed to load user", err)
	}
	user.CreatedAt = fromMillis(createdAt)

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apierr.New(apierr.Unauthorized, "Invalid credentials")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
