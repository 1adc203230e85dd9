package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/repositories"
)

// ElectionService covers the administrative side of an election's
// lifecycle. Time-driven status changes belong to the Scheduler.
type ElectionService struct {
	repos *repositories.Repositories
	clock Clock
	hooks hooks
}

func NewElectionService(repos *repositories.Repositories, opts Options) *ElectionService {
	return &ElectionService{repos: repos, clock: opts.clock(), hooks: opts.hooks()}
}

func (s *ElectionService) CreateElection(ctx context.Context, params models.ElectionParams) (*models.Election, error) {
	election, err := models.NewElection(params, s.clock())
	if err != nil {
		return nil, &InputError{Err: err}
	}
	if err := s.repos.Elections.Create(ctx, election); err != nil {
		return nil, fmt.Errorf("create election: %w", err)
	}

	s.hooks.record(ctx, AuditEvent{
		UserID:       params.CreatedBy,
		Action:       ActionElectionCreated,
		ResourceType: ResourceElection,
		ResourceID:   election.ID,
		OccurredAt:   election.CreatedAt,
	})
	return election, nil
}

func (s *ElectionService) GetElection(ctx context.Context, organizationID, electionID string) (*models.Election, error) {
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

func (s *ElectionService) ListElections(ctx context.Context, organizationID string, status *models.ElectionStatus) ([]*models.Election, error) {
	elections, err := s.repos.Elections.ListByOrganization(ctx, organizationID, status)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	return elections, nil
}

// AddOption appends an option to an election that has not started.
func (s *ElectionService) AddOption(ctx context.Context, organizationID, electionID string, params models.OptionParams) (*models.ElectionOption, error) {
	election, err := s.GetElection(ctx, organizationID, electionID)
	if err != nil {
		return nil, err
	}
	if election.Status != models.StatusScheduled || !s.clock().Before(election.StartDate) {
		return nil, ErrOptionsLocked
	}

	var option *models.ElectionOption
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		next, err := tx.Elections.NextOptionIndex(ctx, electionID)
		if err != nil {
			return err
		}
		option, err = models.NewElectionOption(electionID, params, next)
		if err != nil {
			return &InputError{Err: err}
		}
		return tx.Elections.AddOption(ctx, option)
	})
	if err != nil {
		return nil, err
	}
	return option, nil
}

// CancelElection marks an election cancelled. The conditional update only
// matches scheduled or active rows, so a sweep that completed the election
// first wins.
func (s *ElectionService) CancelElection(ctx context.Context, organizationID, electionID, cancelledBy string) (*models.Election, error) {
	election, err := s.GetElection(ctx, organizationID, electionID)
	if err != nil {
		return nil, err
	}
	if err := election.Cancel(s.clock()); err != nil {
		return nil, &InputError{Err: err}
	}

	changed, err := s.repos.Elections.TransitionStatus(ctx, electionID,
		[]models.ElectionStatus{models.StatusScheduled, models.StatusActive}, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel election: %w", err)
	}
	if !changed {
		return nil, &InputError{Err: models.ErrAlreadyFinished}
	}

	s.hooks.record(ctx, AuditEvent{
		UserID:       cancelledBy,
		Action:       ActionElectionCancelled,
		ResourceType: ResourceElection,
		ResourceID:   electionID,
		OccurredAt:   s.clock(),
	})
	return election, nil
}

// DeleteElection removes an election with its options and registry. An
// election with ballots is only removed when purge is set.
func (s *ElectionService) DeleteElection(ctx context.Context, organizationID, electionID, deletedBy string, purge bool) error {
	if _, err := s.GetElection(ctx, organizationID, electionID); err != nil {
		return err
	}

	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		ballots, err := tx.Votes.CountForElection(ctx, electionID)
		if err != nil {
			return err
		}
		if ballots > 0 && !purge {
			return ErrElectionHasVotes
		}
		return tx.Elections.Purge(ctx, electionID)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrElectionNotFound
	}
	if err != nil {
		return err
	}

	s.hooks.record(ctx, AuditEvent{
		UserID:       deletedBy,
		Action:       ActionElectionDeleted,
		ResourceType: ResourceElection,
		ResourceID:   electionID,
		Details:      fmt.Sprintf("purge=%t", purge),
		OccurredAt:   s.clock(),
	})
	return nil
}

// RegisterMember adds an organization member to the users table.
func (s *ElectionService) RegisterMember(ctx context.Context, user *models.User) error {
	if user.OrganizationID == "" || user.NationalID == "" {
		return &InputError{Err: errors.New("organization id and national id are required")}
	}
	if user.Role != "" && user.Role != models.RoleAdmin && user.Role != models.RoleUser {
		return &InputError{Err: fmt.Errorf("unknown role %q", user.Role)}
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return &InputError{Err: errors.New("a member with this id or national id already exists")}
		}
		return fmt.Errorf("register member: %w", err)
	}
	return nil
}
