package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/postbase/postbase/internal/middleware"
	"github.com/postbase/postbase/internal/models"
	"github.com/postbase/postbase/internal/services"
	"github.com/postbase/postbase/internal/storage"
)

// AttachmentHandler handles post attachment storage.
type AttachmentHandler struct {
	client      *storage.Client
	postService *services.PostService
}

// NewAttachmentHandler creates an AttachmentHandler.
func NewAttachmentHandler(client *storage.Client, postService *services.PostService) *AttachmentHandler {
	return &AttachmentHandler{client: client, postService: postService}
}

// safeKey returns the object key from the path param and false if invalid.
func safeKey(pathParam string) (string, bool) {
	key := strings.TrimPrefix(strings.TrimSpace(pathParam), "/")
	if key == "" {
		return "", false
	}
	if strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func (h *AttachmentHandler) available(c *gin.Context) bool {
	if h.client == nil || !h.client.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage service not configured"})
		return false
	}
	return true
}

// postExists loads the post, writing a 404 if it does not exist.
func (h *AttachmentHandler) post(c *gin.Context) (*models.Post, bool) {
	post, err := h.postService.GetPostByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return post, true
}

// List returns a post's attachments. GET /api/posts/:id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	if !h.available(c) {
		return
	}
	post, ok := h.post(c)
	if !ok {
		return
	}
	objects, err := h.client.ListObjects(c.Request.Context(), post.ID.String())
	if err != nil {
		if err == storage.ErrDisabled {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage service not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"objects": objects})
}

// Get streams an attachment. GET /api/posts/:id/attachments/*path
func (h *AttachmentHandler) Get(c *gin.Context) {
	if !h.available(c) {
		return
	}
	post, ok := h.post(c)
	if !ok {
		return
	}
	key, ok := safeKey(c.Param("path"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing object path"})
		return
	}
	result, err := h.client.GetObject(c.Request.Context(), post.ID.String(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	defer result.Reader.Close()
	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := result.Size
	if size < 0 {
		size = 0
	}
	c.DataFromReader(http.StatusOK, size, contentType, result.Reader, nil)
}

// Put uploads an attachment. PUT /api/posts/:id/attachments/*path — body is the file bytes.
// Only the post owner or an admin may upload.
func (h *AttachmentHandler) Put(c *gin.Context) {
	if !h.available(c) {
		return
	}
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	post, ok := h.post(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin && post.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	key, ok := safeKey(c.Param("path"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing object path"})
		return
	}
	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	body := c.Request.Body
	if body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body required"})
		return
	}
	err := h.client.PutObject(c.Request.Context(), post.ID.String(), key, body, c.Request.ContentLength, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

// Delete removes an attachment. DELETE /api/posts/:id/attachments/*path
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if !h.available(c) {
		return
	}
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	post, ok := h.post(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin && post.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	key, ok := safeKey(c.Param("path"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing object path"})
		return
	}
	if err := h.client.DeleteObject(c.Request.Context(), post.ID.String(), key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": key})
}
