package handler

import (
	"time"

	"noteshare/middleware"
	"noteshare/services"
	"noteshare/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Uploaded names are unique, so the bytes behind a URL never change.
const uploadMaxAge = 24 * time.Hour

// Services is everything the routes depend on.
type Services struct {
	Users       *usecase.UserService
	Notes       *usecase.NotesService
	Favorites   *usecase.FavoritesService
	Comments    *usecase.CommentsService
	Storage     services.Storage
	Health      map[string]HealthCheck
	MaxBodySize int64
}

func SetupRouter(s *Services) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestTracingMiddleware(),
		middleware.RequestLogger(),
		middleware.EnhancedRecoveryMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(),
		middleware.SecurityHeaders(),
	)
	if s.MaxBodySize > 0 {
		router.Use(middleware.RequestSizeLimiter(s.MaxBodySize))
	}

	router.GET("/health", func(c *gin.Context) {
		HealthHandler(c, s.Health)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(services.PublicUploadPath+":filename", middleware.CacheControlMiddleware(uploadMaxAge), func(c *gin.Context) {
		ServeUploadHandler(c, s.Storage)
	})

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		public.POST("/register", func(c *gin.Context) {
			RegistrationHandler(c, s.Users)
		})
		public.POST("/login", func(c *gin.Context) {
			LoginHandler(c, s.Users)
		})
	}

	// Protected routes (authentication required)
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(s.Users))
	{
		protected.POST("/logout", func(c *gin.Context) {
			LogoutHandler(c, s.Users)
		})
		protected.GET("/sessions", func(c *gin.Context) {
			GetActiveSessions(c, s.Users)
		})

		profile := protected.Group("/profile")
		{
			profile.GET("", func(c *gin.Context) {
				GetUserProfileHandler(c, s.Users)
			})
			profile.PUT("", func(c *gin.Context) {
				UpdateProfileHandler(c, s.Users)
			})
			profile.DELETE("", func(c *gin.Context) {
				DeleteUserHandler(c, s.Users)
			})
			profile.GET("/stats", func(c *gin.Context) {
				GetUserStatsHandler(c, s.Users)
			})
			profile.POST("/2fa/setup", func(c *gin.Context) {
				Generate2FASecretHandler(c, s.Users)
			})
			profile.POST("/2fa/enable", func(c *gin.Context) {
				Enable2FAHandler(c, s.Users)
			})
			profile.POST("/2fa/disable", func(c *gin.Context) {
				Disable2FAHandler(c, s.Users)
			})
		}

		notes := protected.Group("/notes")
		{
			notes.GET("", func(c *gin.Context) {
				GetUserNotesHandler(c, s.Notes)
			})
			notes.GET("/search", func(c *gin.Context) {
				SearchNotesHandler(c, s.Notes)
			})
			notes.GET("/all", func(c *gin.Context) {
				GetAllNotesHandler(c, s.Notes)
			})
			notes.GET("/all/search", func(c *gin.Context) {
				SearchAllNotesHandler(c, s.Notes)
			})
			notes.POST("", func(c *gin.Context) {
				CreateNoteHandler(c, s.Notes)
			})
			notes.PUT("/:id", func(c *gin.Context) {
				UpdateNoteHandler(c, s.Notes)
			})
			notes.DELETE("/:id", func(c *gin.Context) {
				DeleteNoteHandler(c, s.Notes)
			})
		}

		protected.POST("/upload", func(c *gin.Context) {
			UploadImageHandler(c, s.Notes)
		})

		protected.GET("/favorites", func(c *gin.Context) {
			GetFavoritesHandler(c, s.Favorites)
		})
		protected.POST("/favorites/:noteId", func(c *gin.Context) {
			ToggleFavoriteHandler(c, s.Favorites)
		})

		protected.GET("/comments/:noteId", func(c *gin.Context) {
			GetCommentsHandler(c, s.Comments)
		})
		protected.POST("/comments/:noteId", func(c *gin.Context) {
			AddCommentHandler(c, s.Comments)
		})
		protected.DELETE("/comments/:id", func(c *gin.Context) {
			DeleteCommentHandler(c, s.Comments)
		})
	}

	return router
}
