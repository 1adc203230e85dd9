package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ElectionVoter is an entry of an election's eligibility registry.
// HasVoted only ever goes from false to true, in the transaction that records
// the voter's ballots.
type ElectionVoter struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	ElectionID string    `json:"election_id" gorm:"type:char(36);not null;uniqueIndex:idx_election_voter,priority:1"`
	UserID     string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_election_voter,priority:2"`
	IsEligible bool      `json:"is_eligible" gorm:"not null"`
	HasVoted   bool      `json:"has_voted" gorm:"not null;index"`
	AddedAt    time.Time `json:"added_at" gorm:"not null"`
	AddedBy    string    `json:"added_by" gorm:"type:varchar(64)"`
	Notes      string    `json:"notes,omitempty" gorm:"type:text"`
}

func (ElectionVoter) TableName() string {
	return "election_voters"
}

func (v *ElectionVoter) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func NewElectionVoter(electionID, userID, addedBy, notes string, now time.Time) *ElectionVoter {
	return &ElectionVoter{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		UserID:     userID,
		IsEligible: true,
		AddedAt:    now.UTC(),
		AddedBy:    addedBy,
		Notes:      notes,
	}
}
