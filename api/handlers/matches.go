package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/api/middleware"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type createMatchRequest struct {
	EntryFee int64 `json:"entryFee"`
}

type submitResultRequest struct {
	WinnerID string `json:"winnerId" binding:"required"`
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

// CreateMatch escrows the caller's entry fee and opens a match
func CreateMatch(settlement interfaces.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "entryFee required")
			return
		}

		match, err := settlement.CreateMatch(c.Request.Context(), middleware.IdentityFrom(c), req.EntryFee)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, match)
	}
}

// ListOpenMatches returns matches the caller could join
func ListOpenMatches(settlement interfaces.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		matches, err := settlement.ListOpenMatches(c.Request.Context(), middleware.IdentityFrom(c).UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": nonNil(matches)})
	}
}

// ListMyMatches returns the caller's matches
func ListMyMatches(settlement interfaces.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		matches, err := settlement.ListUserMatches(c.Request.Context(), middleware.IdentityFrom(c).UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": nonNil(matches)})
	}
}

// GetMatch returns a single match
func GetMatch(settlement interfaces.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		match, err := settlement.GetMatch(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// JoinMatch takes the open seat
func JoinMatch(settlement interfaces.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		match, err := settlement.JoinMatch(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// SubmitResult reports the winner. A settled match whose payout could not be
// applied yet is answered with 202; the reconciler finishes it.
func SubmitResult(settlement interfaces.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitResultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "winnerId required")
			return
		}

		match, err := settlement.SubmitResult(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c).UserID, req.WinnerID)
		if errors.Is(err, entities.ErrSettlementPending) {
			c.JSON(http.StatusAccepted, match)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// FlagDispute holds an in-progress match in escrow for review
func FlagDispute(settlement interfaces.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req disputeRequest
		// The reason is optional, so an empty body is fine
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "invalid request body")
			return
		}

		match, err := settlement.FlagDispute(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c).UserID, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
