package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/funagig/funagig-api/internal/models"
)

// GigRepository handles persistence for gig postings.
type GigRepository interface {
	Create(ctx context.Context, gig *models.Gig) error
	FindByID(ctx context.Context, id uint) (models.Gig, error)
	ListActive(ctx context.Context) ([]models.Gig, error)
	ListActiveByOwner(ctx context.Context, ownerID uint) ([]models.Gig, error)
}

type gigRepository struct {
	db *gorm.DB
}

// NewGigRepository constructs a repository backed by GORM.
func NewGigRepository(db *gorm.DB) GigRepository {
	return &gigRepository{db: db}
}

func (r *gigRepository) Create(ctx context.Context, gig *models.Gig) error {
	return r.db.WithContext(ctx).Create(gig).Error
}

func (r *gigRepository) FindByID(ctx context.Context, id uint) (models.Gig, error) {
	var gig models.Gig
	if err := r.db.WithContext(ctx).First(&gig, id).Error; err != nil {
		return models.Gig{}, err
	}
	return gig, nil
}

func (r *gigRepository) ListActive(ctx context.Context) ([]models.Gig, error) {
	var gigs []models.Gig
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.GigStatusActive).
		Order("created_at DESC").
		Find(&gigs).Error; err != nil {
		return nil, err
	}
	return gigs, nil
}

func (r *gigRepository) ListActiveByOwner(ctx context.Context, ownerID uint) ([]models.Gig, error) {
	var gigs []models.Gig
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", ownerID, models.GigStatusActive).
		Order("created_at DESC").
		Find(&gigs).Error; err != nil {
		return nil, err
	}
	return gigs, nil
}
