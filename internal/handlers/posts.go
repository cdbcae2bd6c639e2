package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postbase/postbase/internal/middleware"
	"github.com/postbase/postbase/internal/models"
	"github.com/postbase/postbase/internal/query"
	"github.com/postbase/postbase/internal/services"
)

// postListPolicy is the allowlist for GET /api/posts. Fields and operators
// not declared here are rejected by query.Validate.
var postListPolicy = query.FieldPolicy{
	SortColumns:   []string{"title", "status", "created_at", "updated_at"},
	SearchColumns: []string{"title", "body"},
	FilterRules: []query.FilterRule{
		{Field: "user_id", Equals: true},
		{Field: "status", Equals: true, Validate: func(values []string) bool {
			for _, v := range values {
				if !models.ValidPostStatus(v) {
					return false
				}
			}
			return true
		}},
		{Field: "title", Contains: true},
		{Field: "created_at", Range: []query.RangeOp{
			query.RangeGte, query.RangeLte, query.RangeGt, query.RangeLt, query.RangeBetween,
		}},
	},
	PageSizeBounds: query.Bounds{Min: 1, Max: 100},
}

// PostHandler handles post endpoints
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a post creation request
type CreatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Status string `json:"status"`
}

// UpdatePostRequest represents a post update request
type UpdatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Status string `json:"status"`
}

// ListPosts lists posts filtered, sorted and paginated by the request's query
// parameters, within the bounds of postListPolicy.
func (h *PostHandler) ListPosts(c *gin.Context) {
	intent := query.Parse(c.Request.URL.Query())
	sanitized, err := query.Validate(intent, postListPolicy)
	if err != nil {
		respondError(c, err)
		return
	}

	posts, page, err := h.postService.ListPosts(c.Request.Context(), sanitized)
	if err != nil {
		respondError(c, err)
		return
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	c.JSON(http.StatusOK, gin.H{"data": posts, "pagination": page})
}

// CreatePost creates a new post owned by the authenticated user
func (h *PostHandler) CreatePost(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), user.ID, req.Title, req.Body, req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPostByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost updates a post; only the owner or an admin may update
func (h *PostHandler) UpdatePost(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if !h.canModify(c, postID, user) {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), postID, req.Title, req.Body, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post; only the owner or an admin may delete
func (h *PostHandler) DeletePost(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if !h.canModify(c, postID, user) {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// canModify checks owner-or-admin access, writing the error response if denied.
func (h *PostHandler) canModify(c *gin.Context, postID string, user *models.User) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	isOwner, err := h.postService.IsPostOwner(c.Request.Context(), postID, user.ID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !isOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}
