package handlers

import (
	"net/http"
	"strconv"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/api/middleware"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type addFundsRequest struct {
	Amount int64 `json:"amount"`
}

// GetAccount returns the caller's wallet
func GetAccount(accounts interfaces.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accounts.GetOrRegister(c.Request.Context(), middleware.IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// AddFunds tops up the caller's wallet
func AddFunds(accounts interfaces.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addFundsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "amount required")
			return
		}

		account, err := accounts.AddFunds(c.Request.Context(), middleware.IdentityFrom(c).UserID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Funds added!", "account": account})
	}
}

// AccountHistory returns recent balance changes for the caller
func AccountHistory(accounts interfaces.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := accounts.History(c.Request.Context(), middleware.IdentityFrom(c).UserID, queryLimit(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": nonNil(history)})
	}
}

// Leaderboard ranks players by wins
func Leaderboard(leaderboard interfaces.LeaderboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := leaderboard.Top(c.Request.Context(), queryLimit(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": nonNil(entries)})
	}
}

// PlatformStats reports operator totals
func PlatformStats(platform interfaces.PlatformService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := platform.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// queryLimit parses ?limit=, leaving 0 (service default) when absent or malformed
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
