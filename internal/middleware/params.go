package middleware

import (
	"fmt"
	"strconv"

	"github.com/fremontasb/fremont-api/internal/constants"
	apierrors "github.com/fremontasb/fremont-api/internal/errors"
	"github.com/gin-gonic/gin"
)

func paramKey(name string) string {
	return "param:" + name
}

// RequireIDParams parses the named path parameters as unsigned IDs
func RequireIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			id, err := strconv.ParseUint(c.Param(name), 10, 64)
			if err != nil {
				apierrors.BadRequest(c, fmt.Sprintf("Invalid %s ID", name))
				c.Abort()
				return
			}
			c.Set(paramKey(name), id)
		}
		c.Next()
	}
}

// ResolveUserParam parses the :user path parameter, accepting "me" for the
// authenticated user. It must run after LoadActor.
func ResolveUserParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("user")
		if raw == constants.MeAlias {
			actor, ok := GetActor(c)
			if !ok {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}
			c.Set(paramKey("user"), actor.UserID)
			c.Next()
			return
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid user ID")
			c.Abort()
			return
		}
		c.Set(paramKey("user"), id)
		c.Next()
	}
}

// IDParam returns a path ID parsed by RequireIDParams or ResolveUserParam
func IDParam(c *gin.Context, name string) uint64 {
	return c.GetUint64(paramKey(name))
}
