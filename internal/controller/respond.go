package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/org-voting-system/internal/middleware"
	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/services"
)

type caller struct {
	UserID         string
	OrganizationID string
	Role           string
}

func (c caller) isAdmin() bool { return c.Role == models.RoleAdmin }

func callerFrom(c *gin.Context) caller {
	return caller{
		UserID:         c.GetString(middleware.KeyUserID),
		OrganizationID: c.GetString(middleware.KeyOrganizationID),
		Role:           c.GetString(middleware.KeyRole),
	}
}

// respondError maps service errors onto HTTP responses. Anything unexpected
// is logged and reported as a 500 without details.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var inputErr *services.InputError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Reasons})
	case errors.Is(err, services.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"errors": []string{services.MsgAlreadyVoted}})
	case errors.Is(err, services.ErrElectionNotFound),
		errors.Is(err, services.ErrVoterNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBallotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrVoterExists),
		errors.Is(err, services.ErrVoterHasVoted),
		errors.Is(err, services.ErrElectionHasVotes),
		errors.Is(err, services.ErrOptionsLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
