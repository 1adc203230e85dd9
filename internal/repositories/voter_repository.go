package repositories

import (
	"context"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"gorm.io/gorm"
)

type VoterRepository interface {
	Create(ctx context.Context, voter *models.ElectionVoter) error
	Find(ctx context.Context, electionID, userID string) (*models.ElectionVoter, error)
	Delete(ctx context.Context, electionID, userID string) (bool, error)
	List(ctx context.Context, electionID string, hasVoted *bool) ([]*models.ElectionVoter, error)
	RegisteredUserIDs(ctx context.Context, electionID string, userIDs []string) (map[string]bool, error)
	MarkVoted(ctx context.Context, electionID, userID string) (bool, error)
	SetEligible(ctx context.Context, electionID, userID string, eligible bool) (bool, error)
	Stats(ctx context.Context, electionID string) (VoterCounts, error)
}

type VoterCounts struct {
	Total    int64
	Voted    int64
	Eligible int64
}

type VoterRepositoryImpl struct {
	db *gorm.DB
}

func NewVoterRepositoryImpl(db *gorm.DB) *VoterRepositoryImpl {
	return &VoterRepositoryImpl{db: db}
}

func (repo *VoterRepositoryImpl) Create(ctx context.Context, voter *models.ElectionVoter) error {
	return translate(repo.db.WithContext(ctx).Create(voter).Error)
}

func (repo *VoterRepositoryImpl) Find(ctx context.Context, electionID, userID string) (*models.ElectionVoter, error) {
	voter := &models.ElectionVoter{}
	err := repo.db.WithContext(ctx).
		First(voter, "election_id = ? AND user_id = ?", electionID, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return voter, nil
}

func (repo *VoterRepositoryImpl) Delete(ctx context.Context, electionID, userID string) (bool, error) {
	result := repo.db.WithContext(ctx).
		Where("election_id = ? AND user_id = ?", electionID, userID).
		Delete(&models.ElectionVoter{})
	return result.RowsAffected > 0, result.Error
}

func (repo *VoterRepositoryImpl) List(ctx context.Context, electionID string, hasVoted *bool) ([]*models.ElectionVoter, error) {
	query := repo.db.WithContext(ctx).Where("election_id = ?", electionID)
	if hasVoted != nil {
		query = query.Where("has_voted = ?", *hasVoted)
	}

	var voters []*models.ElectionVoter
	if err := query.Order("added_at ASC, id ASC").Find(&voters).Error; err != nil {
		return nil, err
	}
	return voters, nil
}

func (repo *VoterRepositoryImpl) RegisteredUserIDs(ctx context.Context, electionID string, userIDs []string) (map[string]bool, error) {
	registered := make(map[string]bool)
	if len(userIDs) == 0 {
		return registered, nil
	}

	var ids []string
	err := repo.db.WithContext(ctx).Model(&models.ElectionVoter{}).
		Where("election_id = ? AND user_id IN ?", electionID, userIDs).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		registered[id] = true
	}
	return registered, nil
}

// MarkVoted flips has_voted for one registry entry. It only matches rows that
// have not voted yet, so it reports false when there is no entry or the flag
// was already set.
func (repo *VoterRepositoryImpl) MarkVoted(ctx context.Context, electionID, userID string) (bool, error) {
	result := repo.db.WithContext(ctx).Model(&models.ElectionVoter{}).
		Where("election_id = ? AND user_id = ? AND has_voted = ?", electionID, userID, false).
		Update("has_voted", true)
	return result.RowsAffected > 0, result.Error
}

func (repo *VoterRepositoryImpl) SetEligible(ctx context.Context, electionID, userID string, eligible bool) (bool, error) {
	result := repo.db.WithContext(ctx).Model(&models.ElectionVoter{}).
		Where("election_id = ? AND user_id = ?", electionID, userID).
		Update("is_eligible", eligible)
	return result.RowsAffected > 0, result.Error
}

func (repo *VoterRepositoryImpl) Stats(ctx context.Context, electionID string) (VoterCounts, error) {
	var counts VoterCounts
	err := repo.db.WithContext(ctx).Model(&models.ElectionVoter{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN has_voted THEN 1 ELSE 0 END), 0) AS voted, "+
			"COALESCE(SUM(CASE WHEN is_eligible THEN 1 ELSE 0 END), 0) AS eligible").
		Where("election_id = ?", electionID).
		Scan(&counts).Error
	return counts, err
}
