package services

import (
	"errors"
	"strings"
)

const (
	MsgElectionNotFound = "Election not found"
	MsgElectionNotOpen  = "Election is not open for voting"
	MsgAlreadyVoted     = "User has already voted in this election"
	MsgNoOptions        = "At least one option must be selected"
	MsgDuplicateOptions = "Duplicate options are not allowed"
	MsgInvalidOptions   = "One or more selected options do not belong to this election"
	MsgNotEligible      = "User is not eligible to vote in this election"
)

var (
	ErrElectionNotFound = errors.New("election not found")
	ErrVoterNotFound    = errors.New("voter is not registered for this election")
	ErrUserNotFound     = errors.New("user not found")
	ErrVoterExists      = errors.New("voter is already registered for this election")
	ErrVoterHasVoted    = errors.New("voter has already voted and cannot be removed")
	ErrElectionHasVotes = errors.New("election has votes; purge is required to delete it")
	ErrOptionsLocked    = errors.New("options can only be added while the election is scheduled")
	ErrBallotNotFound   = errors.New("ballot not found")
	ErrNotPermitted     = errors.New("not permitted")

	// ErrAlreadyVoted is returned when the ledger's unique index rejects a
	// cast that passed the read-side check. errors.Is also matches it against
	// a *ValidationError that carries the same reason.
	ErrAlreadyVoted = errors.New(MsgAlreadyVoted)
)

// ValidationError lists every business rule a request failed.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "vote rejected: " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Is(target error) bool {
	if target != ErrAlreadyVoted {
		return false
	}
	for _, r := range e.Reasons {
		if r == MsgAlreadyVoted {
			return true
		}
	}
	return false
}

// InputError wraps a model invariant violation in an administrative request.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }
