package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Repositories bundles the stores that share one database handle, so a
// service can run several of them inside a single transaction.
type Repositories struct {
	db        *gorm.DB
	wrapVotes func(VoteRepository) VoteRepository
	Elections ElectionRepository
	Votes     VoteRepository
	Voters    VoterRepository
	Users     UserRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		Elections: NewElectionRepositoryImpl(db),
		Votes:     NewVoteRepositoryImpl(db),
		Voters:    NewVoterRepositoryImpl(db),
		Users:     NewUserRepositoryImpl(db),
	}
}

// WrapVotes decorates the ballot ledger of r and of every transaction
// opened from r.
func (r *Repositories) WrapVotes(wrap func(VoteRepository) VoteRepository) {
	r.wrapVotes = wrap
	r.Votes = wrap(r.Votes)
}

// Transaction runs fn with repositories bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := New(tx)
		if r.wrapVotes != nil {
			txRepos.WrapVotes(r.wrapVotes)
		}
		return fn(txRepos)
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
