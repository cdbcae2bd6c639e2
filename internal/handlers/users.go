package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postbase/postbase/internal/models"
	"github.com/postbase/postbase/internal/query"
	"github.com/postbase/postbase/internal/services"
)

// userListPolicy is the allowlist for GET /api/users (admin only).
var userListPolicy = query.FieldPolicy{
	SortColumns:   []string{"name", "email", "created_at"},
	SearchColumns: []string{"name", "email"},
	FilterRules: []query.FilterRule{
		{Field: "role", Equals: true, Validate: func(values []string) bool {
			for _, v := range values {
				if v != models.RoleUser && v != models.RoleAdmin {
					return false
				}
			}
			return true
		}},
		{Field: "created_at", Range: []query.RangeOp{
			query.RangeGte, query.RangeLte, query.RangeBetween,
		}},
	},
	PageSizeBounds: query.Bounds{Min: 1, Max: 50},
}

// UserHandler handles user administration endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateUserRequest represents a user update request
type UpdateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// ListUsers lists users filtered, sorted and paginated by the request's query
// parameters, within the bounds of userListPolicy.
func (h *UserHandler) ListUsers(c *gin.Context) {
	intent := query.Parse(c.Request.URL.Query())
	sanitized, err := query.Validate(intent, userListPolicy)
	if err != nil {
		respondError(c, err)
		return
	}

	users, page, err := h.userService.ListUsers(c.Request.Context(), sanitized)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "pagination": page})
}

// GetUser retrieves a user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// UpdateUser updates a user's name and role
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and role are required"})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), req.Name, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

// DeleteUser deletes a user
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
