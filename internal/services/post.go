package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postbase/postbase/internal/apperrors"
	"github.com/postbase/postbase/internal/models"
	"github.com/postbase/postbase/internal/query"
)

// ErrPostNotFound is returned when a post does not exist.
var ErrPostNotFound = errors.New("post not found")

var postColumns = []string{"id", "user_id", "title", "body", "status", "created_at", "updated_at"}

// PostService handles post operations
type PostService struct {
	pool *pgxpool.Pool
}

// NewPostService creates a new PostService
func NewPostService(pool *pgxpool.Pool) *PostService {
	return &PostService{pool: pool}
}

// CreatePost creates a new post owned by userID
func (s *PostService) CreatePost(ctx context.Context, userID uuid.UUID, title, body, status string) (*models.Post, error) {
	if status == "" {
		status = models.PostStatusDraft
	}
	if !models.ValidPostStatus(status) {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid post status %q", status))
	}

	postID := uuid.New()
	now := time.Now()

	_, err := s.pool.Exec(ctx,
		"INSERT INTO posts (id, user_id, title, body, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		postID, userID, title, body, status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return s.GetPostByID(ctx, postID.String())
}

// GetPostByID retrieves a post by ID
func (s *PostService) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.pool.QueryRow(ctx,
		"SELECT id, user_id, title, body, status, created_at, updated_at FROM posts WHERE id = $1",
		id,
	).Scan(&post.ID, &post.UserID, &post.Title, &post.Body, &post.Status, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListPosts executes a validated list intent against the posts table and
// returns the rows plus pagination metadata.
func (s *PostService) ListPosts(ctx context.Context, intent query.QueryIntent) ([]*models.Post, PageInfo, error) {
	plan := query.Compile(intent, query.Options{
		Dialect:      query.DialectPostgres,
		DefaultOrder: []query.OrderBy{{Field: "created_at", Direction: "desc"}},
	})

	sqlStr, args, err := query.BuildSelect("posts", postColumns, plan)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.Title, &post.Body, &post.Status, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, PageInfo{}, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to read posts: %w", err)
	}

	if plan.Mode == query.ModeCursor {
		next := ""
		if len(posts) == plan.Limit && len(posts) > 0 {
			next = postCursorValue(posts[len(posts)-1], plan.CursorField)
		}
		return posts, cursorPageInfo(intent, next), nil
	}

	countSQL, countArgs, err := query.BuildCount("posts", plan)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to count posts: %w", err)
	}
	return posts, offsetPageInfo(intent, total), nil
}

// postCursorValue extracts the cursor key value from the last row of a page.
func postCursorValue(post *models.Post, field string) string {
	switch field {
	case "id":
		return post.ID.String()
	case "title":
		return post.Title
	case "status":
		return post.Status
	case "created_at":
		return post.CreatedAt.Format(time.RFC3339Nano)
	case "updated_at":
		return post.UpdatedAt.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// UpdatePost updates a post's title, body and status
func (s *PostService) UpdatePost(ctx context.Context, id, title, body, status string) (*models.Post, error) {
	if !models.ValidPostStatus(status) {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid post status %q", status))
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE posts SET title = $1, body = $2, status = $3, updated_at = $4 WHERE id = $5",
		title, body, status, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrPostNotFound
	}

	return s.GetPostByID(ctx, id)
}

// DeletePost deletes a post
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IsPostOwner checks if a user owns a post
func (s *PostService) IsPostOwner(ctx context.Context, postID string, userID uuid.UUID) (bool, error) {
	var ownerID uuid.UUID
	err := s.pool.QueryRow(ctx, "SELECT user_id FROM posts WHERE id = $1", postID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrPostNotFound
		}
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return ownerID == userID, nil
}
