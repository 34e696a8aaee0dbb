package api

import (
	"github.com/dorian/quill/internal/api/handler"
	"github.com/dorian/quill/internal/api/middleware"
	"github.com/dorian/quill/internal/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	creationService *service.CreationService,
	resolver middleware.CallerResolver,
	usage middleware.UsageReader,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	aiHandler := handler.NewAIHandler(creationService)
	userHandler := handler.NewUserHandler(creationService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Authenticated API routes
	api := r.Group("/api")
	api.Use(middleware.Auth(resolver, usage))
	{
		ai := api.Group("/ai")
		{
			ai.POST("/generate-article", aiHandler.GenerateArticle)
			ai.POST("/generate-blog-title", aiHandler.GenerateBlogTitle)
			ai.POST("/generate-image", aiHandler.GenerateImage)
			ai.POST("/remove-image-background", aiHandler.RemoveBackground)
			ai.POST("/remove-image-object", aiHandler.RemoveObject)
			ai.POST("/resume-review", aiHandler.ReviewResume)
		}

		user := api.Group("/user")
		{
			user.GET("/get-user-creations", userHandler.GetUserCreations)
			user.GET("/get-published-creations", userHandler.GetPublishedCreations)
			user.POST("/toggle-like-creation", userHandler.ToggleLikeCreation)
		}
	}

	return r
}
