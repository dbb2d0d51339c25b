// internal/model/schedule.go
package model

import "time"

// ScheduleStatus is the lifecycle state of a campaign schedule.
// pending is the only non-terminal state: it can move to sent (via execute)
// or cancelled (via cancel), never back.
type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	ScheduleSent      ScheduleStatus = "sent"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s ScheduleStatus) Terminal() bool {
	return s == ScheduleSent || s == ScheduleCancelled
}

type Schedule struct {
	ID          string         `db:"id" json:"id"`
	CampaignID  int            `db:"campaign_id" json:"campaign_id"`
	TemplateID  int            `db:"template_id" json:"template_id"`
	ScheduledAt time.Time      `db:"scheduled_at" json:"scheduled_at"`
	Status      ScheduleStatus `db:"status" json:"status"`
	SentAt      *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// ScheduleDetail is a schedule joined with the campaign and template it
// references, as returned by list/get queries. TemplateContent is loaded for
// dispatch but never serialized to clients.
type ScheduleDetail struct {
	Schedule
	CampaignTitle   string  `db:"campaign_title" json:"campaign_title"`
	TemplateTitle   string  `db:"template_title" json:"template_title"`
	TemplateType    Channel `db:"template_type" json:"template_type"`
	TemplateContent string  `db:"template_content" json:"-"`
}

// DispatchResult is the aggregate outcome of one execute run.
// Total == Success + Failed always holds.
type DispatchResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}
