package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postbase/postbase/internal/apperrors"
	"github.com/postbase/postbase/internal/models"
	"github.com/postbase/postbase/internal/query"
)

// ErrUserNotFound is returned when a user does not exist.
var ErrUserNotFound = errors.New("user not found")

var userColumns = []string{"id", "email", "name", "role", "created_at", "updated_at"}

// UserService handles user administration operations
type UserService struct {
	pool *pgxpool.Pool
}

// NewUserService creates a new UserService
func NewUserService(pool *pgxpool.Pool) *UserService {
	return &UserService{pool: pool}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, email, name, role, created_at, updated_at FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListUsers executes a validated list intent against the users table.
func (s *UserService) ListUsers(ctx context.Context, intent query.QueryIntent) ([]*models.User, PageInfo, error) {
	plan := query.Compile(intent, query.Options{
		Dialect:      query.DialectPostgres,
		DefaultOrder: []query.OrderBy{{Field: "created_at", Direction: "desc"}},
	})

	sqlStr, args, err := query.BuildSelect("users", userColumns, plan)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, PageInfo{}, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to read users: %w", err)
	}

	if plan.Mode == query.ModeCursor {
		next := ""
		if len(users) == plan.Limit && len(users) > 0 {
			next = userCursorValue(users[len(users)-1], plan.CursorField)
		}
		return users, cursorPageInfo(intent, next), nil
	}

	countSQL, countArgs, err := query.BuildCount("users", plan)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to count users: %w", err)
	}
	return users, offsetPageInfo(intent, total), nil
}

func userCursorValue(user *models.User, field string) string {
	switch field {
	case "id":
		return user.ID.String()
	case "email":
		return user.Email
	case "name":
		return user.Name
	case "created_at":
		return user.CreatedAt.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// UpdateUser updates a user's name and role
func (s *UserService) UpdateUser(ctx context.Context, id, name, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid role %q", role))
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET name = $1, role = $2, updated_at = $3 WHERE id = $4",
		name, role, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}

	return s.GetUserByID(ctx, id)
}

// DeleteUser deletes a user and their posts
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
