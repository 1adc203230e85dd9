package repositories

import (
	"context"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByNationalIDs(ctx context.Context, organizationID string, nationalIDs []string) (map[string]*models.User, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepositoryImpl(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	return translate(repo.db.WithContext(ctx).Create(user).Error)
}

func (repo *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	if err := repo.db.WithContext(ctx).First(user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// FindByNationalIDs resolves national ids within one organization. Ids with
// no member are absent from the result.
func (repo *UserRepositoryImpl) FindByNationalIDs(ctx context.Context, organizationID string, nationalIDs []string) (map[string]*models.User, error) {
	found := make(map[string]*models.User, len(nationalIDs))
	if len(nationalIDs) == 0 {
		return found, nil
	}

	var users []*models.User
	err := repo.db.WithContext(ctx).
		Where("organization_id = ? AND national_id IN ?", organizationID, nationalIDs).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		found[u.NationalID] = u
	}
	return found, nil
}
