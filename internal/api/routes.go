package api

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler into the gin engine.
func SetupRoutes(
	router *gin.Engine,
	tokenLifetime time.Duration,
	cookieDomain string,
	cookieSecure bool,
	authService service.AuthService,
	profileService service.ProfileService,
	planService service.PlanService,
	sessionService service.SessionService,
	chatService service.ChatService,
	modelService service.ModelService,
) {
	authHandler := NewAuthHandler(authService, tokenLifetime, cookieDomain, cookieSecure)
	profileHandler := NewProfileHandler(profileService)
	planHandler := NewPlanHandler(planService)
	sessionHandler := NewSessionHandler(sessionService)
	chatHandler := NewChatHandler(chatService)
	modelHandler := NewModelHandler(modelService)

	authMiddleware := AuthMiddleware(authService.GetJWTSecret())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	protected := router.Group("/api")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		me := protected.Group("/me")
		{
			me.GET("/profile", profileHandler.Get)
			me.PUT("/profile", profileHandler.Put)
			me.POST("/avatar-upload-url", profileHandler.AvatarUploadURL)
			me.GET("/avatar-url", profileHandler.AvatarDownloadURL)
		}

		plans := protected.Group("/plans")
		{
			plans.POST("/generate-workout", planHandler.GenerateWorkout)
			plans.POST("/generate-diet", planHandler.GenerateDiet)
			plans.GET("/active", planHandler.GetActive)
			plans.GET("", planHandler.List)
			plans.POST("/workout-image", planHandler.WorkoutImage)
			plans.POST("/diet-image", planHandler.DietImage)
		}

		sessions := protected.Group("/workout-sessions")
		{
			sessions.POST("", sessionHandler.Start)
			sessions.PATCH("/:id", sessionHandler.Update)
			sessions.GET("", sessionHandler.List)
		}

		chat := protected.Group("/chat")
		{
			chat.POST("", chatHandler.Send)
			chat.GET("", chatHandler.History)
		}

		admin := protected.Group("/ai-models")
		admin.Use(RoleMiddleware(domain.RoleAdmin))
		{
			admin.POST("", modelHandler.Create)
			admin.GET("", modelHandler.List)
			admin.GET("/:id", modelHandler.Get)
			admin.PUT("/:id", modelHandler.Update)
			admin.DELETE("/:id", modelHandler.Delete)
		}
	}
}
