package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/services"
)

type OptionInput struct {
	Text     string `json:"text" binding:"required"`
	ImageURL string `json:"image_url"`
}

type CreateElectionInput struct {
	Title                 string        `json:"title" binding:"required"`
	Description           string        `json:"description"`
	StartDate             time.Time     `json:"start_date" binding:"required"`
	EndDate               time.Time     `json:"end_date" binding:"required"`
	Category              string        `json:"category"`
	MaxVotesPerUser       int           `json:"max_votes_per_user"`
	IsPublic              bool          `json:"is_public"`
	RequiresVoterRegistry bool          `json:"requires_voter_registry"`
	Options               []OptionInput `json:"options" binding:"dive"`
}

func (in OptionInput) params() models.OptionParams {
	return models.OptionParams{Text: in.Text, ImageURL: in.ImageURL}
}

// ElectionController serves the administrative election endpoints.
type ElectionController struct {
	elections *services.ElectionService
}

func NewElectionController(elections *services.ElectionService) *ElectionController {
	return &ElectionController{elections: elections}
}

func (e *ElectionController) Create(c *gin.Context) {
	var input CreateElectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if input.MaxVotesPerUser == 0 {
		input.MaxVotesPerUser = models.MinVotesPerUser
	}

	who := callerFrom(c)
	params := models.ElectionParams{
		OrganizationID:        who.OrganizationID,
		Title:                 input.Title,
		Description:           input.Description,
		StartDate:             input.StartDate,
		EndDate:               input.EndDate,
		Category:              input.Category,
		MaxVotesPerUser:       input.MaxVotesPerUser,
		IsPublic:              input.IsPublic,
		RequiresVoterRegistry: input.RequiresVoterRegistry,
		CreatedBy:             who.UserID,
	}
	for _, op := range input.Options {
		params.Options = append(params.Options, op.params())
	}

	election, err := e.elections.CreateElection(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Election created", "election": election})
}

func (e *ElectionController) List(c *gin.Context) {
	status, ok := statusFilter(c)
	if !ok {
		return
	}
	elections, err := e.elections.ListElections(c.Request.Context(), callerFrom(c).OrganizationID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"elections": elections})
}

func (e *ElectionController) AddOption(c *gin.Context) {
	var input OptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	option, err := e.elections.AddOption(c.Request.Context(), callerFrom(c).OrganizationID, c.Param("id"), input.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"option": option})
}

func (e *ElectionController) Cancel(c *gin.Context) {
	who := callerFrom(c)
	election, err := e.elections.CancelElection(c.Request.Context(), who.OrganizationID, c.Param("id"), who.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Election cancelled", "election": election})
}

func (e *ElectionController) Delete(c *gin.Context) {
	purge := false
	if raw := c.Query("purge"); raw != "" {
		var err error
		if purge, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purge value"})
			return
		}
	}

	who := callerFrom(c)
	if err := e.elections.DeleteElection(c.Request.Context(), who.OrganizationID, c.Param("id"), who.UserID, purge); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Election deleted successfully"})
}

type RegisterMemberInput struct {
	ID         string `json:"id" binding:"required"`
	NationalID string `json:"national_id" binding:"required"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// RegisterMember adds a member to the caller's organization.
func (e *ElectionController) RegisterMember(c *gin.Context) {
	var input RegisterMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	user := &models.User{
		ID:             input.ID,
		OrganizationID: callerFrom(c).OrganizationID,
		NationalID:     input.NationalID,
		Name:           input.Name,
		Role:           input.Role,
	}
	if err := e.elections.RegisterMember(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}
