package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ElectionStatus string

const (
	StatusScheduled ElectionStatus = "scheduled"
	StatusActive    ElectionStatus = "active"
	StatusCompleted ElectionStatus = "completed"
	StatusCancelled ElectionStatus = "cancelled"
)

const (
	MinVotesPerUser = 1
	MaxVotesPerUser = 10
	MaxTitleLength  = 255

	MinOptionsWhenOpen = 2
)

var (
	ErrInvalidWindow   = errors.New("end date must be after start date")
	ErrInvalidQuota    = fmt.Errorf("max votes per user must be between %d and %d", MinVotesPerUser, MaxVotesPerUser)
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	ErrOrgRequired     = errors.New("organization id is required")
	ErrTooFewOptions   = errors.New("an election that opens immediately needs at least two options")
	ErrAlreadyFinished = errors.New("election is already completed or cancelled")
)

type Election struct {
	ID                    string         `json:"id" gorm:"type:char(36);primaryKey"`
	OrganizationID        string         `json:"organization_id" gorm:"type:varchar(64);not null;index"`
	Title                 string         `json:"title" gorm:"size:255;not null"`
	Description           string         `json:"description" gorm:"type:text"`
	StartDate             time.Time      `json:"start_date" gorm:"not null;index"`
	EndDate               time.Time      `json:"end_date" gorm:"not null;index"`
	Status                ElectionStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Category              string         `json:"category" gorm:"size:64"`
	MaxVotesPerUser       int            `json:"max_votes_per_user" gorm:"not null;default:1"`
	IsPublic              bool           `json:"is_public" gorm:"not null;default:false"`
	RequiresVoterRegistry bool           `json:"requires_voter_registry" gorm:"not null;default:false"`
	CreatedBy             string         `json:"created_by" gorm:"type:varchar(64)"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`

	Options []ElectionOption `json:"options,omitempty" gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE"`
	Votes   []Vote           `json:"-" gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE"`
	Voters  []ElectionVoter  `json:"-" gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE"`
}

func (Election) TableName() string {
	return "elections"
}

func (e *Election) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ElectionParams holds the administrator-supplied fields of a new election.
type ElectionParams struct {
	OrganizationID        string
	Title                 string
	Description           string
	StartDate             time.Time
	EndDate               time.Time
	Category              string
	MaxVotesPerUser       int
	IsPublic              bool
	RequiresVoterRegistry bool
	CreatedBy             string
	Options               []OptionParams
}

// NewElection validates params and returns an election whose status is
// derived from now. Option order follows the order of params.Options. A
// scheduled election may start with no options.
func NewElection(params ElectionParams, now time.Time) (*Election, error) {
	title := strings.TrimSpace(params.Title)
	switch {
	case strings.TrimSpace(params.OrganizationID) == "":
		return nil, ErrOrgRequired
	case title == "":
		return nil, ErrTitleRequired
	case len([]rune(title)) > MaxTitleLength:
		return nil, ErrTitleTooLong
	case !params.EndDate.After(params.StartDate):
		return nil, ErrInvalidWindow
	case params.MaxVotesPerUser < MinVotesPerUser || params.MaxVotesPerUser > MaxVotesPerUser:
		return nil, ErrInvalidQuota
	}

	election := &Election{
		ID:                    uuid.NewString(),
		OrganizationID:        params.OrganizationID,
		Title:                 title,
		Description:           params.Description,
		StartDate:             params.StartDate.UTC(),
		EndDate:               params.EndDate.UTC(),
		Category:              params.Category,
		MaxVotesPerUser:       params.MaxVotesPerUser,
		IsPublic:              params.IsPublic,
		RequiresVoterRegistry: params.RequiresVoterRegistry,
		CreatedBy:             params.CreatedBy,
	}
	election.Status = StatusForTime(election.StartDate, election.EndDate, now)
	// options can be added later only while the election is scheduled
	if election.Status != StatusScheduled && len(params.Options) < MinOptionsWhenOpen {
		return nil, ErrTooFewOptions
	}

	for i, op := range params.Options {
		option, err := NewElectionOption(election.ID, op, i)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i+1, err)
		}
		election.Options = append(election.Options, *option)
	}
	return election, nil
}

// StatusForTime is the status a non-cancelled election must have at now.
func StatusForTime(start, end, now time.Time) ElectionStatus {
	switch {
	case now.Before(start):
		return StatusScheduled
	case now.Before(end):
		return StatusActive
	default:
		return StatusCompleted
	}
}

// ConsistentAt reports whether the stored status agrees with the clock.
func (e *Election) ConsistentAt(now time.Time) bool {
	if e.Status == StatusCancelled {
		return true
	}
	return e.Status == StatusForTime(e.StartDate, e.EndDate, now)
}

// IsOpenAt reports whether ballots may be accepted at now. The time window is
// checked as well as the status because the status lags the sweep.
func (e *Election) IsOpenAt(now time.Time) bool {
	return e.Status == StatusActive && !now.Before(e.StartDate) && now.Before(e.EndDate)
}

func (e *Election) IsTerminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusCancelled
}

// Cancel moves the election to cancelled. Elections that are completed, or
// whose window has already elapsed at now, cannot be cancelled.
func (e *Election) Cancel(now time.Time) error {
	if e.IsTerminal() || !now.Before(e.EndDate) {
		return ErrAlreadyFinished
	}
	e.Status = StatusCancelled
	return nil
}
