package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fcihub/studauth/internal/app/controllers"
	"github.com/fcihub/studauth/internal/middleware"
)

// SetupRouter configures all application routes.
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")

	// Public auth routes
	api.POST("/register", authController.Register)
	api.POST("/login", authController.Login)

	// Authenticated routes
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.RequireToken())
	{
		authenticated.POST("/logout", authController.Logout)
		authenticated.GET("/user", userController.GetUser)
		authenticated.POST("/update-profile", userController.UpdateProfile)
		authenticated.POST("/update-photo", userController.UpdatePhoto)
	}

	// Health check endpoint (public)
	router.GET("/up", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
