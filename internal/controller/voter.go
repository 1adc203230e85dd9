package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/org-voting-system/internal/services"
)

type AddVoterInput struct {
	UserID string `json:"user_id" binding:"required"`
	Notes  string `json:"notes"`
}

type BulkAddInput struct {
	NationalIDs []string `json:"national_ids" binding:"required"`
}

type EligibilityInput struct {
	IsEligible *bool `json:"is_eligible" binding:"required"`
}

type VoterController struct {
	registry *services.RegistryService
}

func NewVoterController(registry *services.RegistryService) *VoterController {
	return &VoterController{registry: registry}
}

func (v *VoterController) List(c *gin.Context) {
	var hasVoted *bool
	if raw := c.Query("has_voted"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid has_voted value"})
			return
		}
		hasVoted = &parsed
	}

	voters, err := v.registry.ListVoters(c.Request.Context(), callerFrom(c).OrganizationID, c.Param("id"), hasVoted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voters": voters})
}

func (v *VoterController) Add(c *gin.Context) {
	var input AddVoterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	who := callerFrom(c)
	voter, err := v.registry.AddVoter(c.Request.Context(), who.OrganizationID, c.Param("id"), input.UserID, who.UserID, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"voter": voter})
}

func (v *VoterController) BulkAdd(c *gin.Context) {
	var input BulkAddInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	who := callerFrom(c)
	result, err := v.registry.BulkAddVoters(c.Request.Context(), who.OrganizationID, c.Param("id"), input.NationalIDs, who.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (v *VoterController) Remove(c *gin.Context) {
	who := callerFrom(c)
	if err := v.registry.RemoveVoter(c.Request.Context(), who.OrganizationID, c.Param("id"), c.Param("userId"), who.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Voter removed"})
}

func (v *VoterController) SetEligibility(c *gin.Context) {
	var input EligibilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	who := callerFrom(c)
	err := v.registry.SetEligibility(c.Request.Context(), who.OrganizationID, c.Param("id"), c.Param("userId"), *input.IsEligible, who.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Eligibility updated", "is_eligible": *input.IsEligible})
}

func (v *VoterController) Stats(c *gin.Context) {
	stats, err := v.registry.Stats(c.Request.Context(), callerFrom(c).OrganizationID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
