package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/repository"
)

// Application sentinel errors surfaced to handlers.
var (
	ErrAlreadyApplied         = errors.New("already applied to this gig")
	ErrApplicationNotFound    = errors.New("application not found")
	ErrNotGigOwner            = errors.New("caller does not own the gig")
	ErrNotApplicationOwner    = errors.New("caller does not own the application")
	ErrGigNotAcceptingApplies = errors.New("gig is not accepting applications")
)

// ApplicationService manages gig applications and their status lifecycle.
// Every notification-worthy write runs the domain event composer inside the
// same transaction and dispatches composed notifications after commit.
type ApplicationService interface {
	Apply(ctx context.Context, userID uint, payload dto.ApplicationCreateRequest) (dto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, callerID, applicationID uint, status string) (dto.ApplicationResponse, error)
	Withdraw(ctx context.Context, callerID, applicationID uint) error
	ListForUser(ctx context.Context, userID uint, role string) ([]dto.ApplicationResponse, error)
}

type applicationService struct {
	db            *gorm.DB
	applications  repository.ApplicationRepository
	gigs          repository.GigRepository
	events        *DomainEvents
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewApplicationService constructs an application service.
func NewApplicationService(db *gorm.DB, applications repository.ApplicationRepository, gigs repository.GigRepository, events *DomainEvents, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) ApplicationService {
	return &applicationService{
		db:            db,
		applications:  applications,
		gigs:          gigs,
		events:        events,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "application_service").Logger(),
		tracer:        otel.Tracer("github.com/funagig/funagig-api/internal/service/application"),
	}
}

func (s *applicationService) Apply(ctx context.Context, userID uint, payload dto.ApplicationCreateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	gig, err := s.gigs.FindByID(ctx, payload.GigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplicationResponse{}, ErrGigNotFound
		}
		return dto.ApplicationResponse{}, err
	}
	if gig.Status != models.GigStatusActive {
		return dto.ApplicationResponse{}, ErrGigNotAcceptingApplies
	}

	if _, err := s.applications.FindByUserAndGig(ctx, userID, payload.GigID); err == nil {
		return dto.ApplicationResponse{}, ErrAlreadyApplied
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ApplicationResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "applications.apply", trace.WithAttributes(
		attribute.Int64("gig.id", int64(payload.GigID)),
		attribute.Int64("applicant.id", int64(userID)),
	))
	defer span.End()

	app := models.Application{
		UserID:  userID,
		GigID:   payload.GigID,
		Message: strings.TrimSpace(s.sanitizer.Sanitize(payload.Message)),
		Status:  models.ApplicationStatusPending,
	}

	var notification *models.Notification
	err = s.db.WithContext(spanCtx).Transaction(func(tx *gorm.DB) error {
		if err := s.applications.Create(spanCtx, tx, &app); err != nil {
			return err
		}
		notification, err = s.events.ApplicationCreated(spanCtx, tx, app)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return dto.ApplicationResponse{}, err
	}

	if notification != nil {
		s.notifications.Dispatch(spanCtx, *notification)
	}

	s.logger.Info().Uint("application_id", app.ID).Uint("gig_id", app.GigID).Msg("application submitted")
	return dto.NewApplicationResponse(app), nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, callerID, applicationID uint, status string) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(dto.ApplicationStatusRequest{Status: status}); err != nil {
		return dto.ApplicationResponse{}, err
	}

	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplicationResponse{}, ErrApplicationNotFound
		}
		return dto.ApplicationResponse{}, err
	}

	gig, err := s.gigs.FindByID(ctx, app.GigID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if gig.UserID != callerID {
		return dto.ApplicationResponse{}, ErrNotGigOwner
	}

	// Re-saving the same status is a no-op: no notification, no timestamps.
	if app.Status == status {
		return dto.NewApplicationResponse(app), nil
	}

	now := time.Now()
	app.Status = status
	switch status {
	case models.ApplicationStatusAccepted, models.ApplicationStatusRejected:
		app.RespondedAt = &now
	case models.ApplicationStatusCompleted:
		app.CompletedAt = &now
	}

	var notification *models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applications.Save(ctx, tx, &app); err != nil {
			return err
		}
		notification, err = s.events.ApplicationStatusChanged(ctx, tx, app)
		return err
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	if notification != nil {
		s.notifications.Dispatch(ctx, *notification)
	}

	s.logger.Info().Uint("application_id", app.ID).Str("status", status).Msg("application status updated")
	return dto.NewApplicationResponse(app), nil
}

func (s *applicationService) Withdraw(ctx context.Context, callerID, applicationID uint) error {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}
	if app.UserID != callerID {
		return ErrNotApplicationOwner
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applications.Delete(ctx, tx, &app); err != nil {
			return err
		}
		return s.events.ApplicationDeleted(ctx, tx, app)
	})
}

func (s *applicationService) ListForUser(ctx context.Context, userID uint, role string) ([]dto.ApplicationResponse, error) {
	var (
		apps []models.Application
		err  error
	)
	if role == models.UserTypeBusiness {
		apps, err = s.applications.ListByGigOwner(ctx, userID)
	} else {
		apps, err = s.applications.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return dto.NewApplicationResponseSlice(apps), nil
}
