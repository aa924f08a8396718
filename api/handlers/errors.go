package handlers

import (
	"errors"
	"net/http"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Checked in order; the first errors.Is match wins
var errorMappings = []errorMapping{
	{entities.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds", "Insufficient funds"},
	{entities.ErrInvalidEntryFee, http.StatusBadRequest, "invalid_entry_fee", "Invalid entry fee"},
	{entities.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "Invalid amount"},
	{entities.ErrNotFound, http.StatusNotFound, "not_found", "Match not found"},
	{entities.ErrAlreadyFull, http.StatusConflict, "match_full", "Match full"},
	{entities.ErrConflict, http.StatusConflict, "conflict", "You cannot join your own match"},
	{entities.ErrNotParticipant, http.StatusForbidden, "not_participant", "Only match participants can do that"},
	{entities.ErrInvalidState, http.StatusConflict, "invalid_state", "The match cannot do that right now"},
}

// respondError writes the {"error","message"} body for err
func respondError(c *gin.Context, err error) {
	var conflict *entities.ResultConflictError
	if errors.As(err, &conflict) && conflict.DisputeRaised {
		c.JSON(http.StatusConflict, gin.H{"error": "dispute_raised", "message": "Result disputed"})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.code, "message": m.message})
			return
		}
	}

	log.WithFields(log.Fields{
		"path":  c.FullPath(),
		"error": err,
	}).Error("Unhandled request error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Something went wrong"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": message})
}
