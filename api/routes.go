package api

import (
	"github.com/LuckyYaduvanshi5/clash-cash-arena/api/handlers"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/api/middleware"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/config"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"

	"github.com/gin-gonic/gin"
)

// Services are the domain services exposed over HTTP
type Services struct {
	Settlement  interfaces.SettlementService
	Accounts    interfaces.AccountService
	Leaderboard interfaces.LeaderboardService
	Platform    interfaces.PlatformService
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg *config.Config, services Services) *gin.Engine {
	if cfg.IsProduction() || cfg.Environment == "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	SetupRoutes(router, cfg, services)
	return router
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, services Services) {
	v1 := router.Group("/api/v1")
	v1.GET("/health", handlers.HealthCheck)

	authed := v1.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret), middleware.RegisterOnFirstUse(services.Accounts))
	{
		matches := authed.Group("/matches")
		{
			matches.POST("", handlers.CreateMatch(services.Settlement))
			matches.GET("/open", handlers.ListOpenMatches(services.Settlement))
			matches.GET("/mine", handlers.ListMyMatches(services.Settlement))
			matches.GET("/:id", handlers.GetMatch(services.Settlement))
			matches.POST("/:id/join", handlers.JoinMatch(services.Settlement))
			matches.POST("/:id/result", handlers.SubmitResult(services.Settlement))
			matches.POST("/:id/dispute", handlers.FlagDispute(services.Settlement))
		}

		account := authed.Group("/account")
		{
			account.GET("", handlers.GetAccount(services.Accounts))
			account.POST("/funds", handlers.AddFunds(services.Accounts))
			account.GET("/history", handlers.AccountHistory(services.Accounts))
		}

		authed.GET("/leaderboard", handlers.Leaderboard(services.Leaderboard))
		authed.GET("/platform/stats", middleware.RequireAdmin(cfg.AdminUserIDs), handlers.PlatformStats(services.Platform))
	}
}
