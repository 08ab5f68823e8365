package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/funagig/funagig-api/internal/models"
)

// ApplicationRepository handles persistence for gig applications.
type ApplicationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, app *models.Application) error
	Save(ctx context.Context, tx *gorm.DB, app *models.Application) error
	Delete(ctx context.Context, tx *gorm.DB, app *models.Application) error
	FindByID(ctx context.Context, id uint) (models.Application, error)
	FindByUserAndGig(ctx context.Context, userID, gigID uint) (models.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Application, error)
	ListByGigOwner(ctx context.Context, ownerID uint) ([]models.Application, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository constructs a repository backed by GORM.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, tx *gorm.DB, app *models.Application) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(app).Error
}

func (r *applicationRepository) Save(ctx context.Context, tx *gorm.DB, app *models.Application) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Save(app).Error
}

func (r *applicationRepository) Delete(ctx context.Context, tx *gorm.DB, app *models.Application) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Delete(app).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (r *applicationRepository) FindByUserAndGig(ctx context.Context, userID, gigID uint) (models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND gig_id = ?", userID, gigID).
		First(&app).Error; err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Application, error) {
	var apps []models.Application
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("applied_at DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) ListByGigOwner(ctx context.Context, ownerID uint) ([]models.Application, error) {
	var apps []models.Application
	if err := r.db.WithContext(ctx).
		Joins("JOIN gigs ON gigs.id = applications.gig_id").
		Where("gigs.user_id = ?", ownerID).
		Order("applications.applied_at DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}
