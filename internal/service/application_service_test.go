package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/repository"
)

func TestApplyNotifiesGigOwnerAndCountsApplication(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
	business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
	gig := seedGig(t, db, business.ID, "Design a landing page")

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	apps := NewApplicationService(
		db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
		NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

	created, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{
		GigID:   gig.ID,
		Message: "I can do this",
	})
	require.NoError(t, err)
	require.Equal(t, models.ApplicationStatusPending, created.Status)

	var reloaded models.Gig
	require.NoError(t, db.First(&reloaded, gig.ID).Error)
	require.Equal(t, 1, reloaded.ApplicationCount)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", business.ID).First(&notification).Error)
	require.Equal(t, "New Application Received", notification.Title)
	require.Contains(t, notification.Message, "Sam Student")
	require.Contains(t, notification.Message, gig.Title)
	require.Equal(t, models.NotificationTypeInfo, notification.Type)
	require.False(t, notification.IsRead)
}

func TestApplyTwiceIsRejected(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
	business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
	gig := seedGig(t, db, business.ID, "Write product copy")

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	apps := NewApplicationService(
		db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
		NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

	_, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.NoError(t, err)

	_, err = apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestApplyToClosedGigIsRejected(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
	business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
	gig := seedGig(t, db, business.ID, "Closed gig")
	require.NoError(t, db.Model(&gig).Update("status", models.GigStatusClosed).Error)

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	apps := NewApplicationService(
		db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
		NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

	_, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.ErrorIs(t, err, ErrGigNotAcceptingApplies)
}

func TestStatusTransitionsNotifyApplicant(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status    string
		wantTitle string
		wantKind  string
	}{
		{models.ApplicationStatusAccepted, "Application Accepted!", models.NotificationTypeSuccess},
		{models.ApplicationStatusRejected, "Application Status Update", models.NotificationTypeWarning},
		{models.ApplicationStatusCompleted, "Project Completed", models.NotificationTypeSuccess},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.status, func(t *testing.T) {
			t.Parallel()

			db := openTestDB(t)
			student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
			business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
			gig := seedGig(t, db, business.ID, "Build an app")

			notifications := NewNotificationService(
				repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
			apps := NewApplicationService(
				db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
				NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

			created, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
			require.NoError(t, err)

			updated, err := apps.UpdateStatus(context.Background(), business.ID, created.ID, tc.status)
			require.NoError(t, err)
			require.Equal(t, tc.status, updated.Status)

			var notification models.Notification
			require.NoError(t, db.
				Where("user_id = ? AND title = ?", student.ID, tc.wantTitle).
				First(&notification).Error)
			require.Equal(t, tc.wantKind, notification.Type)
			require.Contains(t, notification.Message, gig.Title)
		})
	}
}

func TestRejectedApplicationLeavesCounter(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
	business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
	gig := seedGig(t, db, business.ID, "Translate a brochure")

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	apps := NewApplicationService(
		db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
		NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

	created, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.NoError(t, err)

	// Rejected applications no longer count toward the gig's total.
	_, err = apps.UpdateStatus(context.Background(), business.ID, created.ID, models.ApplicationStatusRejected)
	require.NoError(t, err)

	var reloaded models.Gig
	require.NoError(t, db.First(&reloaded, gig.ID).Error)
	require.Equal(t, 0, reloaded.ApplicationCount)
}

func TestSameStatusUpdateIsNoOp(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
	business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
	gig := seedGig(t, db, business.ID, "Shoot a promo video")

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	apps := NewApplicationService(
		db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
		NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

	created, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.NoError(t, err)

	_, err = apps.UpdateStatus(context.Background(), business.ID, created.ID, models.ApplicationStatusPending)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", student.ID).
		Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateStatusRequiresGigOwnership(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
	business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
	intruder := seedUser(t, db, "Ivan Intruder", models.UserTypeBusiness)
	gig := seedGig(t, db, business.ID, "Audit a codebase")

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	apps := NewApplicationService(
		db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
		NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

	created, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.NoError(t, err)

	_, err = apps.UpdateStatus(context.Background(), intruder.ID, created.ID, models.ApplicationStatusAccepted)
	require.ErrorIs(t, err, ErrNotGigOwner)
}

func TestWithdrawRemovesApplicationAndRecounts(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	student := seedUser(t, db, "Sam Student", models.UserTypeStudent)
	other := seedUser(t, db, "Olga Other", models.UserTypeStudent)
	business := seedUser(t, db, "Beth Business", models.UserTypeBusiness)
	gig := seedGig(t, db, business.ID, "Plan a campaign")

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	apps := NewApplicationService(
		db, repository.NewApplicationRepository(db), repository.NewGigRepository(db),
		NewDomainEvents(testLogger()), notifications, testValidator(), testLogger())

	created, err := apps.Apply(context.Background(), student.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.NoError(t, err)
	_, err = apps.Apply(context.Background(), other.ID, dto.ApplicationCreateRequest{GigID: gig.ID})
	require.NoError(t, err)

	require.ErrorIs(t,
		apps.Withdraw(context.Background(), other.ID, created.ID),
		ErrNotApplicationOwner)
	require.NoError(t, apps.Withdraw(context.Background(), student.ID, created.ID))

	var reloaded models.Gig
	require.NoError(t, db.First(&reloaded, gig.ID).Error)
	require.Equal(t, 1, reloaded.ApplicationCount)
}
