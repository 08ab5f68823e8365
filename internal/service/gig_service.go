package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/repository"
)

// Gig sentinel errors surfaced to handlers.
var (
	ErrGigNotFound  = errors.New("gig not found")
	ErrDeadlinePast = errors.New("deadline must be in the future")
)

// GigService manages gig postings.
type GigService interface {
	Create(ctx context.Context, ownerID uint, payload dto.GigCreateRequest) (dto.GigResponse, error)
	ListActive(ctx context.Context) ([]dto.GigResponse, error)
	ListOwn(ctx context.Context, ownerID uint) ([]dto.GigResponse, error)
}

type gigService struct {
	gigs      repository.GigRepository
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewGigService constructs a gig service.
func NewGigService(gigs repository.GigRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) GigService {
	return &gigService{
		gigs:      gigs,
		users:     users,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "gig_service").Logger(),
	}
}

func (s *gigService) Create(ctx context.Context, ownerID uint, payload dto.GigCreateRequest) (dto.GigResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GigResponse{}, err
	}

	if !payload.Deadline.After(time.Now()) {
		return dto.GigResponse{}, ErrDeadlinePast
	}

	gig := models.Gig{
		UserID:      ownerID,
		Title:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Budget:      payload.Budget,
		Deadline:    payload.Deadline,
		Skills:      strings.TrimSpace(s.sanitizer.Sanitize(payload.Skills)),
		Location:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Location)),
		Type:        payload.Type,
		Status:      models.GigStatusActive,
	}
	if gig.Title == "" || gig.Description == "" {
		return dto.GigResponse{}, errors.New("gig title and description must not be empty after sanitization")
	}

	if err := s.gigs.Create(ctx, &gig); err != nil {
		return dto.GigResponse{}, err
	}

	s.logger.Info().Uint("gig_id", gig.ID).Uint("owner_id", ownerID).Msg("gig posted")
	return dto.NewGigResponse(gig), nil
}

func (s *gigService) ListActive(ctx context.Context) ([]dto.GigResponse, error) {
	gigs, err := s.gigs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.withBusinessNames(ctx, gigs)
}

func (s *gigService) ListOwn(ctx context.Context, ownerID uint) ([]dto.GigResponse, error) {
	gigs, err := s.gigs.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return dto.NewGigResponseSlice(gigs), nil
}

func (s *gigService) withBusinessNames(ctx context.Context, gigs []models.Gig) ([]dto.GigResponse, error) {
	ownerIDs := make([]uint, 0, len(gigs))
	seen := make(map[uint]struct{}, len(gigs))
	for _, gig := range gigs {
		if _, ok := seen[gig.UserID]; !ok {
			seen[gig.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, gig.UserID)
		}
	}

	owners, err := s.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(owners))
	for _, owner := range owners {
		names[owner.ID] = owner.Name
	}

	out := make([]dto.GigResponse, 0, len(gigs))
	for _, gig := range gigs {
		response := dto.NewGigResponse(gig)
		response.BusinessName = names[gig.UserID]
		out = append(out, response)
	}
	return out, nil
}
