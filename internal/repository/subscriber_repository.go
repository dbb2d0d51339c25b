package repository

import (
	"database/sql"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/model"
)

type SubscriberRepositoryInterface interface {
	Create(s *model.Subscriber) error
	ListByCampaign(campaignID int) ([]model.Subscriber, error)
	CountByOwner(ownerID int) (int, error)
	CountBySource(ownerID int) (map[string]int, error)
}

type SubscriberRepository struct {
	DB *sql.DB
}

func (r *SubscriberRepository) Create(s *model.Subscriber) error {
	if s.Source == "" {
		s.Source = "link"
	}
	s.CreatedAt = time.Now()
	query := `
        INSERT INTO subscribers (campaign_id, name, email, phone, source, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, s.CampaignID, s.Name, s.Email, s.Phone, s.Source, s.CreatedAt).Scan(&s.ID)
}

// ListByCampaign returns subscribers in insertion order. The dispatch engine
// iterates them exactly as returned.
func (r *SubscriberRepository) ListByCampaign(campaignID int) ([]model.Subscriber, error) {
	query := `
        SELECT id, campaign_id, name, email, phone, source, created_at
        FROM subscribers WHERE campaign_id=$1 ORDER BY id
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []model.Subscriber{}
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.CampaignID, &s.Name, &s.Email, &s.Phone, &s.Source, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SubscriberRepository) CountByOwner(ownerID int) (int, error) {
	var total int
	err := r.DB.QueryRow(
		`SELECT COUNT(s.*) FROM subscribers s
         JOIN campaigns c ON s.campaign_id = c.id
         WHERE c.user_id=$1`, ownerID,
	).Scan(&total)
	return total, err
}

func (r *SubscriberRepository) CountBySource(ownerID int) (map[string]int, error) {
	rows, err := r.DB.Query(
		`SELECT s.source, COUNT(s.id) FROM subscribers s
         JOIN campaigns c ON s.campaign_id = c.id
         WHERE c.user_id=$1 GROUP BY s.source`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{}
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats[source] = count
	}
	return stats, rows.Err()
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
