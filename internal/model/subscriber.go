// internal/model/subscriber.go
package model

import "time"

type Subscriber struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	Source     string    `db:"source" json:"source"` // qr or link
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
