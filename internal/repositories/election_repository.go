package repositories

import (
	"context"
	"time"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"gorm.io/gorm"
)

type ElectionRepository interface {
	Create(ctx context.Context, election *models.Election) error
	AddOption(ctx context.Context, option *models.ElectionOption) error
	FindByID(ctx context.Context, id string) (*models.Election, error)
	ListByOrganization(ctx context.Context, organizationID string, status *models.ElectionStatus) ([]*models.Election, error)
	ListOpen(ctx context.Context, organizationID string, now time.Time) ([]*models.Election, error)
	CountOptions(ctx context.Context, electionID string, optionIDs []string) (int64, error)
	NextOptionIndex(ctx context.Context, electionID string) (int, error)
	TransitionStatus(ctx context.Context, id string, from []models.ElectionStatus, to models.ElectionStatus) (bool, error)
	Sweep(ctx context.Context, now time.Time) (SweepResult, error)
	Purge(ctx context.Context, id string) error
}

// SweepResult counts the rows changed by each of the sweep's updates.
type SweepResult struct {
	Activated int64 `json:"activated"`
	Completed int64 `json:"completed"`
	Expired   int64 `json:"expired"`
}

func (r SweepResult) Total() int64 {
	return r.Activated + r.Completed + r.Expired
}

type ElectionRepositoryImpl struct {
	db *gorm.DB
}

func NewElectionRepositoryImpl(db *gorm.DB) *ElectionRepositoryImpl {
	return &ElectionRepositoryImpl{db: db}
}

func (repo *ElectionRepositoryImpl) Create(ctx context.Context, election *models.Election) error {
	return translate(repo.db.WithContext(ctx).Create(election).Error)
}

func (repo *ElectionRepositoryImpl) AddOption(ctx context.Context, option *models.ElectionOption) error {
	return translate(repo.db.WithContext(ctx).Create(option).Error)
}

func (repo *ElectionRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Election, error) {
	election := &models.Election{}
	err := repo.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		First(election, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return election, nil
}

func (repo *ElectionRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, status *models.ElectionStatus) ([]*models.Election, error) {
	query := repo.db.WithContext(ctx).Where("organization_id = ?", organizationID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var elections []*models.Election
	if err := query.Order("start_date DESC, id ASC").Find(&elections).Error; err != nil {
		return nil, err
	}
	return elections, nil
}

func (repo *ElectionRepositoryImpl) ListOpen(ctx context.Context, organizationID string, now time.Time) ([]*models.Election, error) {
	var elections []*models.Election
	err := repo.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Where("organization_id = ? AND status = ? AND start_date <= ? AND end_date > ?",
			organizationID, models.StatusActive, now, now).
		Order("end_date ASC, id ASC").
		Find(&elections).Error
	if err != nil {
		return nil, err
	}
	return elections, nil
}

func (repo *ElectionRepositoryImpl) CountOptions(ctx context.Context, electionID string, optionIDs []string) (int64, error) {
	if len(optionIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.ElectionOption{}).
		Where("election_id = ? AND id IN ?", electionID, optionIDs).
		Count(&count).Error
	return count, err
}

func (repo *ElectionRepositoryImpl) NextOptionIndex(ctx context.Context, electionID string) (int, error) {
	var next int
	err := repo.db.WithContext(ctx).Model(&models.ElectionOption{}).
		Select("COALESCE(MAX(order_index) + 1, 0)").
		Where("election_id = ?", electionID).
		Scan(&next).Error
	return next, err
}

// TransitionStatus moves one election to status to, provided its current
// status is one of from. It reports whether a row changed.
func (repo *ElectionRepositoryImpl) TransitionStatus(ctx context.Context, id string, from []models.ElectionStatus, to models.ElectionStatus) (bool, error) {
	result := repo.db.WithContext(ctx).Model(&models.Election{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Sweep reconciles election statuses with now using three conditional bulk
// updates. Their predicates are disjoint, and no row matched by one update can
// match a later one, so running them in any order, or repeatedly, leaves the
// same final state.
func (repo *ElectionRepositoryImpl) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activated := tx.Model(&models.Election{}).
			Where("status = ? AND start_date <= ? AND end_date > ?", models.StatusScheduled, now, now).
			Update("status", models.StatusActive)
		if activated.Error != nil {
			return activated.Error
		}

		completed := tx.Model(&models.Election{}).
			Where("status = ? AND end_date <= ?", models.StatusActive, now).
			Update("status", models.StatusCompleted)
		if completed.Error != nil {
			return completed.Error
		}

		expired := tx.Model(&models.Election{}).
			Where("status = ? AND end_date <= ?", models.StatusScheduled, now).
			Update("status", models.StatusCompleted)
		if expired.Error != nil {
			return expired.Error
		}

		res = SweepResult{
			Activated: activated.RowsAffected,
			Completed: completed.RowsAffected,
			Expired:   expired.RowsAffected,
		}
		return nil
	})
	return res, err
}

// Purge deletes an election and everything it owns, children first.
func (repo *ElectionRepositoryImpl) Purge(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("election_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", id).Delete(&models.ElectionVoter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", id).Delete(&models.ElectionOption{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Election{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
