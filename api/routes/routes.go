package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rafflehq/raffle-backend/internal/config"
	"github.com/rafflehq/raffle-backend/internal/handlers"
	"github.com/rafflehq/raffle-backend/internal/middleware"
	"github.com/rafflehq/raffle-backend/pkg/jwt"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler       *handlers.AuthHandler
	RaffleHandler     *handlers.RaffleHandler
	SubmissionHandler *handlers.SubmissionHandler
	StatsHandler      *handlers.StatsHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, tokens *jwt.TokenService, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
			auth.POST("/register", deps.AuthHandler.Register)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokens))
	{
		raffles := protected.Group("/raffles")
		{
			raffles.GET("", deps.RaffleHandler.ListRaffles)
			raffles.GET("/current", deps.RaffleHandler.GetCurrentRaffle)
			raffles.GET("/:id", deps.RaffleHandler.GetRaffleByID)
			raffles.POST("", deps.RaffleHandler.CreateRaffle)
			raffles.PUT("/:id", deps.RaffleHandler.UpdateRaffle)
			raffles.DELETE("/:id", deps.RaffleHandler.DeleteRaffle)
			raffles.POST("/:id/numbers", deps.RaffleHandler.GenerateNumbers)
			raffles.GET("/:id/tickets", deps.RaffleHandler.ListTickets)
			raffles.GET("/:id/tickets/approved", deps.RaffleHandler.ListApprovedTickets)
			raffles.GET("/:id/stats", deps.StatsHandler.GetStats)
		}

		submissions := protected.Group("/submissions")
		{
			submissions.POST("", deps.SubmissionHandler.CreateSubmission)
			submissions.GET("", deps.SubmissionHandler.ListSubmissions)
			submissions.GET("/:id", deps.SubmissionHandler.GetSubmissionByID)
			submissions.PATCH("/:id", deps.SubmissionHandler.ReviewSubmission)
		}
	}

	return router
}
