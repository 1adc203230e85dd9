package repositories

import (
	"context"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"gorm.io/gorm"
)

// VoteRepository is the append-only ballot ledger.
type VoteRepository interface {
	Insert(ctx context.Context, votes []*models.Vote) error
	CountForUser(ctx context.Context, electionID, userID string) (int64, error)
	CountForElection(ctx context.Context, electionID string) (int64, error)
	Tally(ctx context.Context, electionID string) ([]OptionCount, error)
	FindByHash(ctx context.Context, hash string) (*models.Vote, error)
}

// OptionCount is one row of a tally: an option with its ballot count.
type OptionCount struct {
	OptionID   string
	Text       string
	ImageURL   *string
	OrderIndex int
	Votes      int64
}

type VoteRepositoryImpl struct {
	db *gorm.DB
}

func NewVoteRepositoryImpl(db *gorm.DB) *VoteRepositoryImpl {
	return &VoteRepositoryImpl{db: db}
}

// Insert writes the ballots one row at a time. A unique index violation is
// returned as ErrDuplicate; the caller decides whether to roll back.
func (repo *VoteRepositoryImpl) Insert(ctx context.Context, votes []*models.Vote) error {
	db := repo.db.WithContext(ctx)
	for _, vote := range votes {
		if err := db.Create(vote).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

func (repo *VoteRepositoryImpl) CountForUser(ctx context.Context, electionID, userID string) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.Vote{}).
		Where("election_id = ? AND user_id = ?", electionID, userID).
		Count(&count).Error
	return count, err
}

func (repo *VoteRepositoryImpl) CountForElection(ctx context.Context, electionID string) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.Vote{}).
		Where("election_id = ?", electionID).
		Count(&count).Error
	return count, err
}

// Tally returns every option of the election, in display order, with its
// ballot count. Options without ballots are returned with zero.
func (repo *VoteRepositoryImpl) Tally(ctx context.Context, electionID string) ([]OptionCount, error) {
	var rows []OptionCount
	err := repo.db.WithContext(ctx).
		Table("election_options AS o").
		Select("o.id AS option_id, o.text AS text, o.image_url AS image_url, o.order_index AS order_index, COUNT(v.id) AS votes").
		Joins("LEFT JOIN votes AS v ON v.selected_option_id = o.id AND v.election_id = o.election_id").
		Where("o.election_id = ?", electionID).
		Group("o.id, o.text, o.image_url, o.order_index").
		Order("o.order_index ASC, o.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *VoteRepositoryImpl) FindByHash(ctx context.Context, hash string) (*models.Vote, error) {
	vote := &models.Vote{}
	if err := repo.db.WithContext(ctx).First(vote, "verification_hash = ?", hash).Error; err != nil {
		return nil, translate(err)
	}
	return vote, nil
}
