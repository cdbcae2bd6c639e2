package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postbase/postbase/internal/models"
)

// ErrInvalidCredentials is returned when email or password do not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Auth handles user accounts and credential checks
type Auth struct {
	pool *pgxpool.Pool
}

// NewAuth creates a new Auth instance
func NewAuth(pool *pgxpool.Pool) *Auth {
	return &Auth{pool: pool}
}

// RegisterUser creates a new user account
func (a *Auth) RegisterUser(ctx context.Context, email, password, name string) (*models.User, error) {
	// Check if user already exists
	var existingID uuid.UUID
	err := a.pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("user with email %s already exists", email)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.New()
	now := time.Now()

	_, err = a.pool.Exec(ctx,
		"INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		userID, email, passwordHash, name, models.RoleUser, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return a.GetUserByID(ctx, userID.String())
}

// GetUserByID retrieves a user by ID
func (a *Auth) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := a.pool.QueryRow(ctx,
		"SELECT id, email, password_hash, name, role, created_at, updated_at FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (a *Auth) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := a.pool.QueryRow(ctx,
		"SELECT id, email, password_hash, name, role, created_at, updated_at FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// LoginUser verifies credentials and returns the user
func (a *Auth) LoginUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
