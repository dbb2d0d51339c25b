// internal/repository/schedule_repository_test.go
package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

const scheduleID = "11111111-2222-3333-4444-555555555555"

func TestScheduleCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id FROM campaigns WHERE id=\$1 AND user_id=\$2`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT id FROM marketing_templates WHERE id=\$1 AND user_id=\$2`).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`INSERT INTO campaign_schedules`).
		WithArgs(sqlmock.AnyArg(), 7, 3, at, model.SchedulePending).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := &ScheduleRepository{DB: db}
	sched, err := repo.Create(7, 3, 1, at)
	require.NoError(t, err)

	assert.NotEmpty(t, sched.ID)
	assert.Equal(t, model.SchedulePending, sched.Status)
	assert.Equal(t, at, sched.ScheduledAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleCreateForeignCampaign(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM campaigns WHERE id=\$1 AND user_id=\$2`).
		WithArgs(7, 99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &ScheduleRepository{DB: db}
	_, err = repo.Create(7, 3, 99, time.Now())

	var nf *appErrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleCreateForeignTemplate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM campaigns WHERE id=\$1 AND user_id=\$2`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT id FROM marketing_templates WHERE id=\$1 AND user_id=\$2`).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &ScheduleRepository{DB: db}
	_, err = repo.Create(7, 3, 1, time.Now())

	var nf *appErrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.NoError(t, mock.ExpectationsWereMet())
}

func detailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "campaign_id", "template_id", "scheduled_at", "status",
		"sent_at", "created_at", "updated_at",
		"campaign_title", "template_title", "template_type", "template_content",
	})
}

func TestScheduleGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM campaign_schedules cs`).
		WithArgs(scheduleID, 1).
		WillReturnRows(detailRows().AddRow(
			scheduleID, 7, 3, at, "pending",
			nil, at, nil,
			"Summer Sale", "Big Discount", "email", "Hello {{name}}",
		))

	repo := &ScheduleRepository{DB: db}
	d, err := repo.GetByID(scheduleID, 1)
	require.NoError(t, err)

	assert.Equal(t, model.SchedulePending, d.Status)
	assert.Equal(t, "Summer Sale", d.CampaignTitle)
	assert.Equal(t, model.ChannelEmail, d.TemplateType)
	assert.Equal(t, "Hello {{name}}", d.TemplateContent)
	assert.Nil(t, d.SentAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleGetByIDWrongOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM campaign_schedules cs`).
		WithArgs(scheduleID, 99).
		WillReturnRows(detailRows())

	repo := &ScheduleRepository{DB: db}
	_, err = repo.GetByID(scheduleID, 99)

	var nf *appErrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleClaimWins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`SET dispatch_started_at=NOW\(\).+WHERE id=\$1 AND status='pending' AND dispatch_started_at IS NULL`).
		WithArgs(scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &ScheduleRepository{DB: db}
	require.NoError(t, repo.Claim(scheduleID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleClaimLoserWhileStillPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Zero rows with the schedule still pending means another executor
	// holds the dispatch marker right now.
	mock.ExpectExec(`SET dispatch_started_at=NOW\(\)`).
		WithArgs(scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM campaign_schedules`).
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

	repo := &ScheduleRepository{DB: db}
	err = repo.Claim(scheduleID)

	var ap *appErrors.AlreadyProcessingError
	require.ErrorAs(t, err, &ap)
	assert.Equal(t, scheduleID, ap.ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleClaimTerminalSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`SET dispatch_started_at=NOW\(\)`).
		WithArgs(scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM campaign_schedules`).
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("sent"))

	repo := &ScheduleRepository{DB: db}
	err = repo.Claim(scheduleID)

	var it *appErrors.InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, model.ScheduleSent, it.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleClaimMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`SET dispatch_started_at=NOW\(\)`).
		WithArgs(scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM campaign_schedules`).
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	repo := &ScheduleRepository{DB: db}
	err = repo.Claim(scheduleID)

	var nf *appErrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleReleaseClearsMarkerOnlyWhilePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`SET dispatch_started_at=NULL.+WHERE id=\$1 AND status='pending'`).
		WithArgs(scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &ScheduleRepository{DB: db}
	require.NoError(t, repo.Release(scheduleID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleTransitionCASWins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`UPDATE campaign_schedules`).
		WithArgs(model.ScheduleSent, &now, scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, campaign_id, template_id`).
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "campaign_id", "template_id", "scheduled_at", "status", "sent_at", "created_at", "updated_at",
		}).AddRow(scheduleID, 7, 3, now, "sent", now, now, now))

	repo := &ScheduleRepository{DB: db}
	sched, err := repo.Transition(scheduleID, model.ScheduleSent, &now)
	require.NoError(t, err)

	assert.Equal(t, model.ScheduleSent, sched.Status)
	require.NotNil(t, sched.SentAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleTransitionLoserGetsCurrentState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE campaign_schedules`).
		WithArgs(model.ScheduleCancelled, nil, scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM campaign_schedules`).
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("sent"))

	repo := &ScheduleRepository{DB: db}
	_, err = repo.Transition(scheduleID, model.ScheduleCancelled, nil)

	var it *appErrors.InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, model.ScheduleSent, it.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleTransitionMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE campaign_schedules`).
		WithArgs(model.ScheduleCancelled, nil, scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM campaign_schedules`).
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	repo := &ScheduleRepository{DB: db}
	_, err = repo.Transition(scheduleID, model.ScheduleCancelled, nil)

	var nf *appErrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE cs.status = 'pending' AND cs.scheduled_at <= \$1`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).
			AddRow(scheduleID, 1).
			AddRow("66666666-7777-8888-9999-000000000000", 2))

	repo := &ScheduleRepository{DB: db}
	due, err := repo.ListDue(now)
	require.NoError(t, err)

	require.Len(t, due, 2)
	assert.Equal(t, scheduleID, due[0].ID)
	assert.Equal(t, 1, due[0].OwnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}
