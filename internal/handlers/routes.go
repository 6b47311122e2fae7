package handlers

import (
	"net/http"

	"github.com/fremontasb/fremont-api/internal/config"
	"github.com/fremontasb/fremont-api/internal/middleware"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Services bundles the services the HTTP handlers call into.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Organizations *services.OrganizationService
	Posts         *services.PostService
}

// AppVersion returns the static client compatibility descriptor.
func AppVersion(version config.AppVersionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"android": version.Android,
			"ios":     version.IOS,
		})
	}
}

// RegisterRoutes mounts the API on r. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, svc Services, version config.AppVersionConfig) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	orgHandler := NewOrganizationHandler(svc.Organizations)
	postHandler := NewPostHandler(svc.Posts)

	authenticated := []gin.HandlerFunc{middleware.RequireAuth(), middleware.LoadActor(svc.Auth)}
	id := middleware.RequireIDParams("id")

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Fremont API is running",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/app-version", AppVersion(version))

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(authenticated...)
		{
			users.GET("", userHandler.ListUsers)

			user := users.Group("/:user")
			user.Use(middleware.ResolveUserParam())
			{
				user.GET("", userHandler.GetUser)
				user.PATCH("", userHandler.UpdateUser)
				user.GET("/memberships", userHandler.ListMemberships)
				user.POST("/memberships", userHandler.JoinOrganization)
				user.GET("/memberships/:organization", middleware.RequireIDParams("organization"), userHandler.GetMembership)
				user.DELETE("/memberships/:organization", middleware.RequireIDParams("organization"), userHandler.LeaveOrganization)
				user.GET("/tokens", userHandler.ListDeviceTokens)
				user.POST("/tokens", userHandler.RegisterDeviceToken)
			}
		}

		orgs := api.Group("/orgs")
		orgs.Use(authenticated...)
		{
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.GET("/:id", id, orgHandler.GetOrganization)
		}

		posts := api.Group("/posts")
		posts.Use(authenticated...)
		{
			posts.GET("", postHandler.ListPosts)
			posts.GET("/:id", id, postHandler.GetPost)
		}

		manage := api.Group("/manage")
		manage.Use(authenticated...)
		{
			manage.GET("/orgs", orgHandler.ListManagedOrganizations)
			manage.POST("/orgs", orgHandler.CreateOrganization)
			manage.GET("/orgs/:id", id, orgHandler.GetManagedOrganization)
			manage.PATCH("/orgs/:id", id, orgHandler.UpdateOrganization)
			manage.DELETE("/orgs/:id", id, orgHandler.DeleteOrganization)
			manage.POST("/orgs/:id/links", id, orgHandler.AddLink)
			manage.DELETE("/orgs/:id/links/:link_id", middleware.RequireIDParams("id", "link_id"), orgHandler.DeleteLink)

			manage.GET("/posts", postHandler.ListManagedPosts)
			manage.POST("/posts", postHandler.CreatePost)
			manage.GET("/posts/:id", id, postHandler.GetManagedPost)
			manage.PATCH("/posts/:id", id, postHandler.UpdatePost)
			manage.DELETE("/posts/:id", id, postHandler.DeletePost)
		}
	}
}
