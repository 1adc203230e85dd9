package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/repositories"
)

// VoteRequest is one voter's selection in one election. UserID and
// OrganizationID come from the authenticated caller.
type VoteRequest struct {
	ElectionID     string
	OptionIDs      []string
	UserID         string
	OrganizationID string
	IPAddress      string
	UserAgent      string
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// AvailableElection is an open election as seen by one member.
type AvailableElection struct {
	*models.Election
	HasVoted bool `json:"has_voted"`
}

type VotingService struct {
	repos *repositories.Repositories
	clock Clock
	hooks hooks
}

func NewVotingService(repos *repositories.Repositories, opts Options) *VotingService {
	return &VotingService{repos: repos, clock: opts.clock(), hooks: opts.hooks()}
}

// ValidateVote checks req against the current state without writing. All
// failed rules are reported, except when the election cannot be found or is
// not open, which is reported alone.
func (s *VotingService) ValidateVote(ctx context.Context, req VoteRequest) (ValidationResult, error) {
	_, reasons, err := s.evaluate(ctx, s.repos, req)
	if err != nil {
		log.Printf("validate vote: election=%s user=%s: %v", req.ElectionID, req.UserID, err)
		return ValidationResult{}, err
	}
	return ValidationResult{Valid: len(reasons) == 0, Errors: reasons}, nil
}

// CastVote records one ballot per selected option in a single transaction.
// The rules are checked once up front and again inside the transaction; the
// ledger's unique indexes settle concurrent submissions by the same user.
func (s *VotingService) CastVote(ctx context.Context, req VoteRequest) ([]*models.Vote, error) {
	if err := s.precheck(ctx, s.repos, req); err != nil {
		return nil, err
	}

	var (
		votes  []*models.Vote
		castAt time.Time
	)
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		if err := s.precheck(ctx, tx, req); err != nil {
			return err
		}
		castAt = s.clock()

		votes = make([]*models.Vote, 0, len(req.OptionIDs))
		for i, optionID := range req.OptionIDs {
			votes = append(votes, &models.Vote{
				UserID:           req.UserID,
				ElectionID:       req.ElectionID,
				SelectedOptionID: optionID,
				BallotIndex:      i,
				VerificationHash: models.NewVerificationHash(req.UserID, req.ElectionID, castAt),
				IPAddress:        req.IPAddress,
				UserAgent:        req.UserAgent,
				CreatedAt:        castAt,
			})
		}

		if err := tx.Votes.Insert(ctx, votes); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrAlreadyVoted
			}
			return fmt.Errorf("insert ballots: %w", err)
		}
		if _, err := tx.Voters.MarkVoted(ctx, req.ElectionID, req.UserID); err != nil {
			return fmt.Errorf("mark voter: %w", err)
		}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			log.Printf("cast vote: election=%s user=%s: %v", req.ElectionID, req.UserID, err)
		}
		return nil, err
	}

	s.hooks.run(ctx,
		s.hooks.notifyCall(VoteCastEvent{ElectionID: req.ElectionID, Timestamp: castAt}),
		s.hooks.recordCall(AuditEvent{
			UserID:       req.UserID,
			Action:       ActionVoteCast,
			ResourceType: ResourceElection,
			ResourceID:   req.ElectionID,
			OccurredAt:   castAt,
		}),
	)
	return votes, nil
}

// GetAvailableElections lists the organization's elections that accept
// ballots now, each flagged with whether userID has voted in it.
func (s *VotingService) GetAvailableElections(ctx context.Context, userID, organizationID string) ([]AvailableElection, error) {
	elections, err := s.repos.Elections.ListOpen(ctx, organizationID, s.clock())
	if err != nil {
		return nil, fmt.Errorf("list open elections: %w", err)
	}

	out := make([]AvailableElection, 0, len(elections))
	for _, e := range elections {
		voted, err := s.HasUserVoted(ctx, e.ID, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, AvailableElection{Election: e, HasVoted: voted})
	}
	return out, nil
}

func (s *VotingService) HasUserVoted(ctx context.Context, electionID, userID string) (bool, error) {
	n, err := s.repos.Votes.CountForUser(ctx, electionID, userID)
	if err != nil {
		return false, fmt.Errorf("count ballots: %w", err)
	}
	return n > 0, nil
}

// BallotReceipt confirms that a ballot exists without revealing its choice.
type BallotReceipt struct {
	VerificationHash string    `json:"verification_hash"`
	ElectionID       string    `json:"election_id"`
	CastAt           time.Time `json:"cast_at"`
}

// VerifyBallot looks a ballot up by its verification hash. Ballots of other
// organizations are reported as not found.
func (s *VotingService) VerifyBallot(ctx context.Context, hash, organizationID string) (*BallotReceipt, error) {
	vote, err := s.repos.Votes.FindByHash(ctx, hash)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrBallotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ballot: %w", err)
	}

	election, err := s.repos.Elections.FindByID(ctx, vote.ElectionID)
	if err != nil || election.OrganizationID != organizationID {
		return nil, ErrBallotNotFound
	}
	return &BallotReceipt{
		VerificationHash: vote.VerificationHash,
		ElectionID:       vote.ElectionID,
		CastAt:           vote.CreatedAt.UTC(),
	}, nil
}

// precheck turns the outcome of evaluate into the error returned by CastVote.
func (s *VotingService) precheck(ctx context.Context, repos *repositories.Repositories, req VoteRequest) error {
	election, reasons, err := s.evaluate(ctx, repos, req)
	switch {
	case err != nil:
		return err
	case election == nil:
		return ErrElectionNotFound
	case len(reasons) > 0:
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// evaluate applies the voting rules in order and collects the reasons req
// fails. election is nil when it does not exist in the caller's organization.
func (s *VotingService) evaluate(ctx context.Context, repos *repositories.Repositories, req VoteRequest) (*models.Election, []string, error) {
	election, err := repos.Elections.FindByID(ctx, req.ElectionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, []string{MsgElectionNotFound}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load election: %w", err)
	}
	if election.OrganizationID != req.OrganizationID {
		return nil, []string{MsgElectionNotFound}, nil
	}
	if !election.IsOpenAt(s.clock()) {
		return election, []string{MsgElectionNotOpen}, nil
	}

	reasons := []string{}

	cast, err := repos.Votes.CountForUser(ctx, election.ID, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("count ballots: %w", err)
	}
	if cast > 0 {
		reasons = append(reasons, MsgAlreadyVoted)
	}

	switch {
	case len(req.OptionIDs) == 0:
		reasons = append(reasons, MsgNoOptions)
	case len(req.OptionIDs) > election.MaxVotesPerUser:
		reasons = append(reasons, fmt.Sprintf("At most %d option(s) may be selected", election.MaxVotesPerUser))
	}

	distinct := distinctIDs(req.OptionIDs)
	if len(distinct) != len(req.OptionIDs) {
		reasons = append(reasons, MsgDuplicateOptions)
	}
	if len(distinct) > 0 {
		matched, err := repos.Elections.CountOptions(ctx, election.ID, distinct)
		if err != nil {
			return nil, nil, fmt.Errorf("count options: %w", err)
		}
		if matched != int64(len(distinct)) {
			reasons = append(reasons, MsgInvalidOptions)
		}
	}

	if election.RequiresVoterRegistry {
		voter, err := repos.Voters.Find(ctx, election.ID, req.UserID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			reasons = append(reasons, MsgNotEligible)
		case err != nil:
			return nil, nil, fmt.Errorf("load registry entry: %w", err)
		case !voter.IsEligible:
			reasons = append(reasons, MsgNotEligible)
		}
	}

	return election, reasons, nil
}

func distinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func isBusinessError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrAlreadyVoted) ||
		errors.Is(err, ErrElectionNotFound)
}
