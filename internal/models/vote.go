package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is one ballot in the ledger. Rows are never updated.
//
// BallotIndex numbers the ballots of one user in one election from zero, so
// the unique (election_id, user_id, ballot_index) index lets the database
// reject a second cast batch by the same user even when two batches race.
type Vote struct {
	ID               string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID           string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_votes_ballot,priority:2;uniqueIndex:idx_votes_choice,priority:2"`
	ElectionID       string    `json:"election_id" gorm:"type:char(36);not null;uniqueIndex:idx_votes_ballot,priority:1;uniqueIndex:idx_votes_choice,priority:1"`
	SelectedOptionID string    `json:"selected_option_id" gorm:"type:char(36);not null;index;uniqueIndex:idx_votes_choice,priority:3"`
	BallotIndex      int       `json:"-" gorm:"not null;uniqueIndex:idx_votes_ballot,priority:3"`
	VerificationHash string    `json:"verification_hash" gorm:"type:char(64);not null;uniqueIndex"`
	IPAddress        string    `json:"-" gorm:"size:64"`
	UserAgent        string    `json:"-" gorm:"size:512"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null"`
}

var ErrVoteImmutable = errors.New("votes cannot be modified")

func (Vote) TableName() string {
	return "votes"
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// BeforeUpdate keeps ledger rows immutable through the ORM.
func (v *Vote) BeforeUpdate(tx *gorm.DB) error {
	return ErrVoteImmutable
}

// NewVerificationHash derives a ballot identifier from the voter, the
// election, the cast time and a random salt. It does not cover the option.
func NewVerificationHash(userID, electionID string, castAt time.Time) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(electionID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(castAt.UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(uuid.NewString()))
	return hex.EncodeToString(h.Sum(nil))
}
