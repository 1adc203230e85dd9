package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/repositories"
)

// Bulk registration row outcomes.
const (
	BulkAdded   = "added"
	BulkSkipped = "skipped"
	BulkError   = "error"
)

type BulkRowResult struct {
	NationalID string `json:"national_id"`
	UserID     string `json:"user_id,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

type BulkResult struct {
	Added   int             `json:"added"`
	Skipped int             `json:"skipped"`
	Errors  int             `json:"errors"`
	Rows    []BulkRowResult `json:"rows"`
}

type RegistryStats struct {
	Total             int64   `json:"total"`
	Voted             int64   `json:"voted"`
	Eligible          int64   `json:"eligible"`
	Pending           int64   `json:"pending"`
	ParticipationRate float64 `json:"participation_rate"`
}

// RegistryService manages per-election eligibility registries. Every call is
// scoped to the caller's organization.
type RegistryService struct {
	repos *repositories.Repositories
	clock Clock
	hooks hooks
}

func NewRegistryService(repos *repositories.Repositories, opts Options) *RegistryService {
	return &RegistryService{repos: repos, clock: opts.clock(), hooks: opts.hooks()}
}

// AddVoter registers one member. Registering the same member twice is an
// error, not a no-op.
func (s *RegistryService) AddVoter(ctx context.Context, organizationID, electionID, userID, addedBy, notes string) (*models.ElectionVoter, error) {
	if _, err := s.election(ctx, organizationID, electionID); err != nil {
		return nil, err
	}
	if err := s.member(ctx, organizationID, userID); err != nil {
		return nil, err
	}

	voter := models.NewElectionVoter(electionID, userID, addedBy, notes, s.clock())
	if err := s.repos.Voters.Create(ctx, voter); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrVoterExists
		}
		return nil, fmt.Errorf("add voter: %w", err)
	}

	s.hooks.record(ctx, AuditEvent{
		UserID:       addedBy,
		Action:       ActionVoterAdded,
		ResourceType: ResourceElectionVoter,
		ResourceID:   voter.ID,
		Details:      "election=" + electionID + " user=" + userID,
		OccurredAt:   voter.AddedAt,
	})
	return voter, nil
}

// RemoveVoter deletes a registry entry. Entries of members who already voted
// are kept; revoke eligibility instead.
func (s *RegistryService) RemoveVoter(ctx context.Context, organizationID, electionID, userID, removedBy string) error {
	if _, err := s.election(ctx, organizationID, electionID); err != nil {
		return err
	}

	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		voter, err := tx.Voters.Find(ctx, electionID, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrVoterNotFound
		}
		if err != nil {
			return err
		}
		if voter.HasVoted {
			return ErrVoterHasVoted
		}
		_, err = tx.Voters.Delete(ctx, electionID, userID)
		return err
	})
	if err != nil {
		return err
	}

	s.hooks.record(ctx, AuditEvent{
		UserID:       removedBy,
		Action:       ActionVoterRemoved,
		ResourceType: ResourceElectionVoter,
		ResourceID:   electionID + "/" + userID,
		OccurredAt:   s.clock(),
	})
	return nil
}

// SetEligibility revokes or restores a registered member's eligibility. The
// entry itself is kept.
func (s *RegistryService) SetEligibility(ctx context.Context, organizationID, electionID, userID string, eligible bool, changedBy string) error {
	if _, err := s.election(ctx, organizationID, electionID); err != nil {
		return err
	}
	if _, err := s.repos.Voters.Find(ctx, electionID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrVoterNotFound
		}
		return err
	}
	if _, err := s.repos.Voters.SetEligible(ctx, electionID, userID, eligible); err != nil {
		return fmt.Errorf("set eligibility: %w", err)
	}

	s.hooks.record(ctx, AuditEvent{
		UserID:       changedBy,
		Action:       ActionVoterEligibility,
		ResourceType: ResourceElectionVoter,
		ResourceID:   electionID + "/" + userID,
		Details:      fmt.Sprintf("eligible=%t", eligible),
		OccurredAt:   s.clock(),
	})
	return nil
}

// BulkAddVoters registers members by national id. Each row is reported on
// its own; a bad row never fails the batch.
func (s *RegistryService) BulkAddVoters(ctx context.Context, organizationID, electionID string, nationalIDs []string, addedBy string) (*BulkResult, error) {
	if _, err := s.election(ctx, organizationID, electionID); err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(nationalIDs))
	for _, id := range nationalIDs {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	users, err := s.repos.Users.FindByNationalIDs(ctx, organizationID, cleaned)
	if err != nil {
		return nil, fmt.Errorf("resolve national ids: %w", err)
	}

	userIDs := make([]string, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}
	registered, err := s.repos.Voters.RegisteredUserIDs(ctx, electionID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	result := &BulkResult{Rows: make([]BulkRowResult, 0, len(nationalIDs))}
	seen := make(map[string]bool, len(nationalIDs))
	for _, raw := range nationalIDs {
		nationalID := strings.TrimSpace(raw)
		row := BulkRowResult{NationalID: nationalID}
		user := users[nationalID]

		switch {
		case nationalID == "":
			row.Status, row.Message = BulkError, "empty national id"
		case seen[nationalID]:
			row.Status, row.Message = BulkSkipped, "duplicate row"
		case user == nil:
			row.Status, row.Message = BulkError, "no member with this national id"
		case registered[user.ID]:
			row.UserID = user.ID
			row.Status, row.Message = BulkSkipped, "already registered"
		default:
			row.UserID = user.ID
			voter := models.NewElectionVoter(electionID, user.ID, addedBy, "bulk", s.clock())
			switch err := s.repos.Voters.Create(ctx, voter); {
			case err == nil:
				row.Status = BulkAdded
				registered[user.ID] = true
			case errors.Is(err, repositories.ErrDuplicate):
				row.Status, row.Message = BulkSkipped, "already registered"
			default:
				log.Printf("bulk add voter: election=%s user=%s: %v", electionID, user.ID, err)
				row.Status, row.Message = BulkError, "could not register member"
			}
		}
		if nationalID != "" {
			seen[nationalID] = true
		}

		switch row.Status {
		case BulkAdded:
			result.Added++
		case BulkSkipped:
			result.Skipped++
		default:
			result.Errors++
		}
		result.Rows = append(result.Rows, row)
	}

	if result.Added > 0 {
		s.hooks.record(ctx, AuditEvent{
			UserID:       addedBy,
			Action:       ActionVoterAdded,
			ResourceType: ResourceElection,
			ResourceID:   electionID,
			Details:      fmt.Sprintf("bulk added=%d skipped=%d errors=%d", result.Added, result.Skipped, result.Errors),
			OccurredAt:   s.clock(),
		})
	}
	return result, nil
}

func (s *RegistryService) ListVoters(ctx context.Context, organizationID, electionID string, hasVoted *bool) ([]*models.ElectionVoter, error) {
	if _, err := s.election(ctx, organizationID, electionID); err != nil {
		return nil, err
	}
	voters, err := s.repos.Voters.List(ctx, electionID, hasVoted)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	return voters, nil
}

func (s *RegistryService) Stats(ctx context.Context, organizationID, electionID string) (*RegistryStats, error) {
	if _, err := s.election(ctx, organizationID, electionID); err != nil {
		return nil, err
	}
	counts, err := s.repos.Voters.Stats(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("registry stats: %w", err)
	}
	return computeStats(counts), nil
}

func computeStats(c repositories.VoterCounts) *RegistryStats {
	stats := &RegistryStats{Total: c.Total, Voted: c.Voted, Eligible: c.Eligible}
	// a revoked voter may have voted before revocation
	if pending := c.Eligible - c.Voted; pending > 0 {
		stats.Pending = pending
	}
	if c.Eligible > 0 {
		stats.ParticipationRate = math.Round(float64(c.Voted)*10000/float64(c.Eligible)) / 100
	}
	return stats
}

func (s *RegistryService) election(ctx context.Context, organizationID, electionID string) (*models.Election, error) {
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
	return election, nil
}

func (s *RegistryService) member(ctx context.Context, organizationID, userID string) error {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.OrganizationID != organizationID {
		return ErrUserNotFound
	}
	return nil
}
