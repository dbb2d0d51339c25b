package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

// CampaignFilter narrows and orders campaign listings.
type CampaignFilter struct {
	Query  string // matches title or description, case-insensitive
	Status string
	SortBy string // whitelisted column, defaults to created_at
	Order  string // "asc" or anything else for desc
}

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id, ownerID int) (*model.Campaign, error)
	GetPublic(id int) (*model.Campaign, error)
	List(ownerID int, f CampaignFilter) ([]model.Campaign, error)
	Update(c *model.Campaign) error
	Delete(id, ownerID int) error
	CountByOwner(ownerID int) (total, active int, err error)
}

type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	if c.Status == "" {
		c.Status = model.CampaignActive
	}
	c.CreatedAt = time.Now()
	query := `
        INSERT INTO campaigns (user_id, title, description, incentive, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, c.UserID, c.Title, c.Description, c.Incentive, c.Status, c.CreatedAt).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id, ownerID int) (*model.Campaign, error) {
	query := `
        SELECT id, user_id, title, description, incentive, status, created_at, updated_at
        FROM campaigns WHERE id=$1 AND user_id=$2
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id, ownerID).Scan(
		&c.ID, &c.UserID, &c.Title, &c.Description, &c.Incentive, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("campaign", id)
		}
		return nil, err
	}
	return &c, nil
}

// GetPublic returns an active campaign for the unauthenticated landing page.
func (r *CampaignRepository) GetPublic(id int) (*model.Campaign, error) {
	query := `
        SELECT id, user_id, title, description, incentive, status, created_at, updated_at
        FROM campaigns WHERE id=$1 AND status='active'
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.UserID, &c.Title, &c.Description, &c.Incentive, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("campaign", id)
		}
		return nil, err
	}
	return &c, nil
}

var campaignSortColumns = map[string]bool{
	"created_at": true,
	"title":      true,
	"status":     true,
}

func (r *CampaignRepository) List(ownerID int, f CampaignFilter) ([]model.Campaign, error) {
	query := `SELECT id, user_id, title, description, incentive, status, created_at, updated_at
              FROM campaigns WHERE user_id=$1`
	args := []interface{}{ownerID}
	argPos := 2

	if f.Query != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+f.Query+"%")
		argPos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, f.Status)
		argPos++
	}

	sortBy := f.SortBy
	if !campaignSortColumns[sortBy] {
		sortBy = "created_at"
	}
	dir := "DESC"
	if f.Order == "asc" {
		dir = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, dir)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Incentive, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	query := `
        UPDATE campaigns
        SET title=$1, description=$2, incentive=$3, status=$4, updated_at=NOW()
        WHERE id=$5 AND user_id=$6
    `
	res, err := r.DB.Exec(query, c.Title, c.Description, c.Incentive, c.Status, c.ID, c.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("campaign", c.ID)
	}
	return nil
}

func (r *CampaignRepository) Delete(id, ownerID int) error {
	res, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("campaign", id)
	}
	return nil
}

func (r *CampaignRepository) CountByOwner(ownerID int) (total, active int, err error) {
	err = r.DB.QueryRow(
		`SELECT COUNT(*), COUNT(CASE WHEN status='active' THEN 1 END)
         FROM campaigns WHERE user_id=$1`, ownerID,
	).Scan(&total, &active)
	return total, active, err
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
