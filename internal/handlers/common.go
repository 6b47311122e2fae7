package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/constants"
	apierrors "github.com/fremontasb/fremont-api/internal/errors"
	"github.com/fremontasb/fremont-api/internal/middleware"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/gin-gonic/gin"
)

// currentActor returns the requester set by middleware.LoadActor, responding 401 when missing.
func currentActor(c *gin.Context) (access.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return access.Actor{}, false
	}
	return actor, true
}

// respondError maps service errors onto API error responses.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, validationErr.Fields)
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrTokenRequired):
		apierrors.BadRequest(c, "Token is required")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "Email already registered")
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, "Already a member of this organization")
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, "")
	case errors.Is(err, services.ErrMembershipNotJoinable):
		apierrors.Forbidden(c, "Only clubs can be joined or left")
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrPostNotFound):
		apierrors.NotFound(c, "Post not found")
	case errors.Is(err, services.ErrMembershipNotFound):
		apierrors.NotFound(c, "Membership not found")
	case errors.Is(err, services.ErrLinkNotFound):
		apierrors.NotFound(c, "Link not found")
	default:
		apierrors.InternalError(c, err)
	}
}

// nullable tells an explicit JSON null apart from an absent field.
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// cleared reports whether the field was sent as null.
func (n nullable[T]) cleared() bool {
	return n.Set && n.Value == nil
}
