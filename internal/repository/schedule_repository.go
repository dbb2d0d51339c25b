package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

// DueSchedule is the minimal row the poller needs to run a dispatch on
// behalf of the schedule's owner.
type DueSchedule struct {
	ID      string
	OwnerID int
}

type ScheduleRepositoryInterface interface {
	Create(campaignID, templateID, ownerID int, scheduledAt time.Time) (*model.Schedule, error)
	GetByID(id string, ownerID int) (*model.ScheduleDetail, error)
	List(ownerID int) ([]model.ScheduleDetail, error)
	ListDue(now time.Time) ([]DueSchedule, error)
	Claim(id string) error
	Release(id string) error
	Transition(id string, status model.ScheduleStatus, sentAt *time.Time) (*model.Schedule, error)
}

type ScheduleRepository struct {
	DB *sql.DB
}

// Create inserts a pending schedule after verifying that both the campaign
// and the template belong to the caller. Ownership misses surface as
// not-found, same as absence.
func (r *ScheduleRepository) Create(campaignID, templateID, ownerID int, scheduledAt time.Time) (*model.Schedule, error) {
	var tmp int
	err := r.DB.QueryRow(
		`SELECT id FROM campaigns WHERE id=$1 AND user_id=$2`,
		campaignID, ownerID,
	).Scan(&tmp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("campaign", campaignID)
		}
		return nil, err
	}

	err = r.DB.QueryRow(
		`SELECT id FROM marketing_templates WHERE id=$1 AND user_id=$2`,
		templateID, ownerID,
	).Scan(&tmp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("template", templateID)
		}
		return nil, err
	}

	s := &model.Schedule{
		ID:          uuid.NewString(),
		CampaignID:  campaignID,
		TemplateID:  templateID,
		ScheduledAt: scheduledAt,
		Status:      model.SchedulePending,
	}
	query := `
        INSERT INTO campaign_schedules (id, campaign_id, template_id, scheduled_at, status, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING created_at
    `
	if err := r.DB.QueryRow(query, s.ID, s.CampaignID, s.TemplateID, s.ScheduledAt, s.Status).Scan(&s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

const scheduleDetailColumns = `
        cs.id, cs.campaign_id, cs.template_id, cs.scheduled_at, cs.status,
        cs.sent_at, cs.created_at, cs.updated_at,
        c.title AS campaign_title,
        mt.title AS template_title, mt.type AS template_type, mt.content AS template_content
`

// GetByID fetches a schedule joined with its campaign and template.
// Ownership runs through the campaign: a schedule is visible only to the
// user owning the campaign it belongs to.
func (r *ScheduleRepository) GetByID(id string, ownerID int) (*model.ScheduleDetail, error) {
	query := `
        SELECT ` + scheduleDetailColumns + `
        FROM campaign_schedules cs
        JOIN campaigns c ON cs.campaign_id = c.id
        JOIN marketing_templates mt ON cs.template_id = mt.id
        WHERE cs.id = $1 AND c.user_id = $2
    `
	var d model.ScheduleDetail
	err := r.DB.QueryRow(query, id, ownerID).Scan(
		&d.ID, &d.CampaignID, &d.TemplateID, &d.ScheduledAt, &d.Status,
		&d.SentAt, &d.CreatedAt, &d.UpdatedAt,
		&d.CampaignTitle, &d.TemplateTitle, &d.TemplateType, &d.TemplateContent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("schedule", id)
		}
		return nil, err
	}
	return &d, nil
}

// List returns all schedules of the owner, most recently scheduled first.
func (r *ScheduleRepository) List(ownerID int) ([]model.ScheduleDetail, error) {
	query := `
        SELECT ` + scheduleDetailColumns + `
        FROM campaign_schedules cs
        JOIN campaigns c ON cs.campaign_id = c.id
        JOIN marketing_templates mt ON cs.template_id = mt.id
        WHERE c.user_id = $1
        ORDER BY cs.scheduled_at DESC
    `
	rows, err := r.DB.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []model.ScheduleDetail{}
	for rows.Next() {
		var d model.ScheduleDetail
		if err := rows.Scan(
			&d.ID, &d.CampaignID, &d.TemplateID, &d.ScheduledAt, &d.Status,
			&d.SentAt, &d.CreatedAt, &d.UpdatedAt,
			&d.CampaignTitle, &d.TemplateTitle, &d.TemplateType, &d.TemplateContent,
		); err != nil {
			return nil, err
		}
		schedules = append(schedules, d)
	}
	return schedules, rows.Err()
}

// ListDue returns pending schedules whose scheduled_at has passed, for the
// time-triggered dispatcher.
func (r *ScheduleRepository) ListDue(now time.Time) ([]DueSchedule, error) {
	query := `
        SELECT cs.id, c.user_id
        FROM campaign_schedules cs
        JOIN campaigns c ON cs.campaign_id = c.id
        WHERE cs.status = 'pending' AND cs.scheduled_at <= $1
        ORDER BY cs.scheduled_at
    `
	rows, err := r.DB.Query(query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	due := []DueSchedule{}
	for rows.Next() {
		var d DueSchedule
		if err := rows.Scan(&d.ID, &d.OwnerID); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// Claim durably marks the schedule as having a dispatch run in flight. The
// update is a compare-and-swap on the dispatch_started_at marker, so
// concurrent execute attempts from any process (API replicas, the poller)
// resolve to exactly one fan-out. A zero-row update is re-queried to tell
// missing, terminal, and already-claimed apart.
func (r *ScheduleRepository) Claim(id string) error {
	res, err := r.DB.Exec(`
        UPDATE campaign_schedules
        SET dispatch_started_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND status='pending' AND dispatch_started_at IS NULL
    `, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var current model.ScheduleStatus
		err := r.DB.QueryRow(`SELECT status FROM campaign_schedules WHERE id=$1`, id).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NewNotFound("schedule", id)
			}
			return err
		}
		if current != model.SchedulePending {
			return appErrors.NewInvalidTransition(current)
		}
		return appErrors.NewAlreadyProcessing(id)
	}
	return nil
}

// Release clears the dispatch claim of a still-pending schedule so a later
// execute can claim it again. Used when a run bails out before sending
// anything.
func (r *ScheduleRepository) Release(id string) error {
	_, err := r.DB.Exec(`
        UPDATE campaign_schedules
        SET dispatch_started_at=NULL, updated_at=NOW()
        WHERE id=$1 AND status='pending'
    `, id)
	return err
}

// Transition moves a pending schedule to a terminal state. The update is a
// compare-and-swap on status='pending', so concurrent transitions on the
// same schedule resolve to exactly one winner; the loser gets
// InvalidTransition with the state that beat it.
func (r *ScheduleRepository) Transition(id string, status model.ScheduleStatus, sentAt *time.Time) (*model.Schedule, error) {
	query := `
        UPDATE campaign_schedules
        SET status=$1, sent_at=COALESCE($2, sent_at), updated_at=NOW()
        WHERE id=$3 AND status='pending'
    `
	res, err := r.DB.Exec(query, status, sentAt, id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		var current model.ScheduleStatus
		err := r.DB.QueryRow(`SELECT status FROM campaign_schedules WHERE id=$1`, id).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.NewNotFound("schedule", id)
			}
			return nil, err
		}
		return nil, appErrors.NewInvalidTransition(current)
	}

	var s model.Schedule
	err = r.DB.QueryRow(
		`SELECT id, campaign_id, template_id, scheduled_at, status, sent_at, created_at, updated_at
         FROM campaign_schedules WHERE id=$1`, id,
	).Scan(&s.ID, &s.CampaignID, &s.TemplateID, &s.ScheduledAt, &s.Status, &s.SentAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ ScheduleRepositoryInterface = (*ScheduleRepository)(nil)
