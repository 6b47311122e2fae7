package handlers

import (
	"net/http"

	"github.com/fremontasb/fremont-api/internal/dto"
	apierrors "github.com/fremontasb/fremont-api/internal/errors"
	"github.com/fremontasb/fremont-api/internal/middleware"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserHandler serves user profiles and the memberships and device tokens nested under them.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns the users visible to the requester
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// GetUser returns a user with its organizations
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, memberships, err := h.userService.GetUser(actor, middleware.IDParam(c, "user"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user, memberships))
}

// UpdateUser changes the graduation year and re-enrolls the user
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		GradYear nullable[int] `json:"grad_year"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(actor, middleware.IDParam(c, "user"), services.UpdateProfileInput{
		GradYear:      req.GradYear.Value,
		ClearGradYear: req.GradYear.cleared(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ListMemberships returns the user's active memberships
func (h *UserHandler) ListMemberships(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	memberships, err := h.userService.ListMemberships(actor, middleware.IDParam(c, "user"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"memberships": dto.ToMembershipDTOs(memberships),
	})
}

// GetMembership returns one of the user's memberships
func (h *UserHandler) GetMembership(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	member, err := h.userService.GetMembership(actor, middleware.IDParam(c, "user"), middleware.IDParam(c, "organization"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMembershipDTO(*member))
}

// JoinOrganization adds the user to a club
func (h *UserHandler) JoinOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type JoinRequest struct {
		Organization uint64 `json:"organization" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.userService.JoinOrganization(actor, middleware.IDParam(c, "user"), req.Organization)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMembershipDTO(*member))
}

// LeaveOrganization removes the user from a club
func (h *UserHandler) LeaveOrganization(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.userService.LeaveOrganization(actor, middleware.IDParam(c, "user"), middleware.IDParam(c, "organization")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDeviceTokens returns the user's push tokens
func (h *UserHandler) ListDeviceTokens(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tokens, err := h.userService.ListDeviceTokens(actor, middleware.IDParam(c, "user"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": dto.ToDeviceTokenDTOs(tokens),
	})
}

// RegisterDeviceToken stores a push token for the user
func (h *UserHandler) RegisterDeviceToken(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type TokenRequest struct {
		Token string `json:"token"`
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	token, err := h.userService.RegisterDeviceToken(actor, middleware.IDParam(c, "user"), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDeviceTokenDTO(*token))
}
