package handlers

import (
	"net/http"
	"strconv"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/dto"
	apierrors "github.com/fremontasb/fremont-api/internal/errors"
	"github.com/fremontasb/fremont-api/internal/middleware"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/fremontasb/fremont-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// PostHandler serves the post feed and post management.
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// ListPosts returns published posts of the user's organizations, newest first.
// Can filter by organization.
func (h *PostHandler) ListPosts(c *gin.Context) {
	h.listPosts(c, h.postService.ListPosts)
}

// ListManagedPosts returns all posts, drafts included, of the organizations the user manages.
func (h *PostHandler) ListManagedPosts(c *gin.Context) {
	h.listPosts(c, h.postService.ListManagedPosts)
}

func (h *PostHandler) listPosts(c *gin.Context, list func(access.Actor, services.ListPostsInput) (*services.ListPostsResult, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	input := services.ListPostsInput{Pagination: utils.GetPaginationParams(c)}
	if raw := c.Query("organization"); raw != "" {
		orgID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization")
			return
		}
		input.OrganizationID = &orgID
	}

	result, err := list(actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPostListResponse(result.Posts, input.Pagination.Page, input.Pagination.Limit, result.Total))
}

// GetPost returns a published post of one of the user's organizations
func (h *PostHandler) GetPost(c *gin.Context) {
	h.getPost(c, access.ActionView)
}

// GetManagedPost returns a post, draft or not, of an organization the user manages
func (h *PostHandler) GetManagedPost(c *gin.Context) {
	h.getPost(c, access.ActionManage)
}

func (h *PostHandler) getPost(c *gin.Context, action access.Action) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	post, err := h.postService.GetPost(actor, middleware.IDParam(c, "id"), action)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPostDTO(*post))
}

// CreatePost creates a post; a published post notifies the organization's members
func (h *PostHandler) CreatePost(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreatePostRequest struct {
		Organization uint64 `json:"organization" binding:"required"`
		Title        string `json:"title" binding:"required"`
		Content      string `json:"content"`
		Published    bool   `json:"published"`
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	post, err := h.postService.CreatePost(actor, services.CreatePostInput{
		OrganizationID: req.Organization,
		Title:          req.Title,
		Content:        req.Content,
		Published:      req.Published,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPostDTO(*post))
}

// UpdatePost updates a post; publishing a draft notifies the organization's members
func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type UpdatePostRequest struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		Published *bool   `json:"published"`
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	post, err := h.postService.UpdatePost(actor, middleware.IDParam(c, "id"), services.UpdatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPostDTO(*post))
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(actor, middleware.IDParam(c, "id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post deleted successfully",
	})
}
