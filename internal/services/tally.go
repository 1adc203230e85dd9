package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/repositories"
)

type OptionResult struct {
	OptionID   string  `json:"option_id"`
	Text       string  `json:"text"`
	ImageURL   *string `json:"image_url,omitempty"`
	OrderIndex int     `json:"order_index"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type ElectionResults struct {
	Election   *models.Election `json:"election"`
	Results    []OptionResult   `json:"results"`
	TotalVotes int64            `json:"total_votes"`
}

// TallyService computes results from the ledger on every call.
type TallyService struct {
	repos *repositories.Repositories
}

func NewTallyService(repos *repositories.Repositories) *TallyService {
	return &TallyService{repos: repos}
}

func (s *TallyService) GetElectionResults(ctx context.Context, electionID, organizationID string) (*ElectionResults, error) {
	election, err := s.repos.Elections.FindByID(ctx, electionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrElectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load election: %w", err)
	}
	if election.OrganizationID != organizationID {
		return nil, ErrElectionNotFound
	}

	rows, err := s.repos.Votes.Tally(ctx, election.ID)
	if err != nil {
		return nil, fmt.Errorf("tally election %s: %w", election.ID, err)
	}
	return &ElectionResults{
		Election:   election,
		Results:    Tally(rows),
		TotalVotes: totalVotes(rows),
	}, nil
}

// Tally turns raw option counts into results. Percentages are rounded to two
// decimals and are all zero when there are no votes.
func Tally(rows []repositories.OptionCount) []OptionResult {
	total := totalVotes(rows)
	results := make([]OptionResult, 0, len(rows))
	for _, row := range rows {
		result := OptionResult{
			OptionID:   row.OptionID,
			Text:       row.Text,
			ImageURL:   row.ImageURL,
			OrderIndex: row.OrderIndex,
			Votes:      row.Votes,
		}
		if total > 0 {
			result.Percentage = math.Round(float64(row.Votes)*10000/float64(total)) / 100
		}
		results = append(results, result)
	}
	return results
}

func totalVotes(rows []repositories.OptionCount) int64 {
	var total int64
	for _, row := range rows {
		total += row.Votes
	}
	return total
}
