package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/services"
)

// VotePayload carries the selected options. An empty list is reported as a
// validation reason, not a binding error.
type VotePayload struct {
	OptionIDs []string `json:"option_ids"`
}

type ballotResponse struct {
	ID               string `json:"id"`
	SelectedOptionID string `json:"selected_option_id"`
	VerificationHash string `json:"verification_hash"`
}

type VoteController struct {
	voting    *services.VotingService
	elections *services.ElectionService
	tally     *services.TallyService
}

func NewVoteController(voting *services.VotingService, elections *services.ElectionService, tally *services.TallyService) *VoteController {
	return &VoteController{voting: voting, elections: elections, tally: tally}
}

func (v *VoteController) voteRequest(c *gin.Context) (services.VoteRequest, bool) {
	var payload VotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote payload"})
		return services.VoteRequest{}, false
	}
	who := callerFrom(c)
	return services.VoteRequest{
		ElectionID:     c.Param("id"),
		OptionIDs:      payload.OptionIDs,
		UserID:         who.UserID,
		OrganizationID: who.OrganizationID,
		IPAddress:      c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	}, true
}

func (v *VoteController) Available(c *gin.Context) {
	who := callerFrom(c)
	elections, err := v.voting.GetAvailableElections(c.Request.Context(), who.UserID, who.OrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"elections": elections})
}

func (v *VoteController) Get(c *gin.Context) {
	election, err := v.elections.GetElection(c.Request.Context(), callerFrom(c).OrganizationID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"election": election})
}

func (v *VoteController) Validate(c *gin.Context) {
	req, ok := v.voteRequest(c)
	if !ok {
		return
	}
	result, err := v.voting.ValidateVote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (v *VoteController) Cast(c *gin.Context) {
	req, ok := v.voteRequest(c)
	if !ok {
		return
	}
	votes, err := v.voting.CastVote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	ballots := make([]ballotResponse, 0, len(votes))
	for _, vote := range votes {
		ballots = append(ballots, ballotResponse{
			ID:               vote.ID,
			SelectedOptionID: vote.SelectedOptionID,
			VerificationHash: vote.VerificationHash,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded successfully", "ballots": ballots})
}

func (v *VoteController) HasVoted(c *gin.Context) {
	who := callerFrom(c)
	if _, err := v.elections.GetElection(c.Request.Context(), who.OrganizationID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	voted, err := v.voting.HasUserVoted(c.Request.Context(), c.Param("id"), who.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_voted": voted})
}

// Results are visible to administrators, and to members once the election
// is public.
func (v *VoteController) Results(c *gin.Context) {
	who := callerFrom(c)
	results, err := v.tally.GetElectionResults(c.Request.Context(), c.Param("id"), who.OrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !who.isAdmin() && !results.Election.IsPublic {
		respondError(c, services.ErrNotPermitted)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (v *VoteController) Verify(c *gin.Context) {
	receipt, err := v.voting.VerifyBallot(c.Request.Context(), c.Param("hash"), callerFrom(c).OrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func statusFilter(c *gin.Context) (*models.ElectionStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status := models.ElectionStatus(raw)
	switch status {
	case models.StatusScheduled, models.StatusActive, models.StatusCompleted, models.StatusCancelled:
		return &status, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
	return nil, false
}
