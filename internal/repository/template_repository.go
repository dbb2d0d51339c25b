package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	Create(t *model.Template) error
	GetByID(id, ownerID int) (*model.Template, error)
	List(ownerID int) ([]model.Template, error)
	Update(t *model.Template) error
	Delete(id, ownerID int) error
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) Create(t *model.Template) error {
	t.CreatedAt = time.Now()
	query := `
        INSERT INTO marketing_templates (user_id, title, content, type, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	return r.DB.QueryRow(query, t.UserID, t.Title, t.Content, t.Type, t.CreatedAt).Scan(&t.ID)
}

func (r *TemplateRepository) GetByID(id, ownerID int) (*model.Template, error) {
	query := `
        SELECT id, user_id, title, content, type, created_at, updated_at
        FROM marketing_templates WHERE id=$1 AND user_id=$2
    `
	var t model.Template
	err := r.DB.QueryRow(query, id, ownerID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Content, &t.Type, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("template", id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) List(ownerID int) ([]model.Template, error) {
	query := `
        SELECT id, user_id, title, content, type, created_at, updated_at
        FROM marketing_templates WHERE user_id=$1 ORDER BY created_at DESC
    `
	rows, err := r.DB.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Content, &t.Type, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Update(t *model.Template) error {
	query := `
        UPDATE marketing_templates
        SET title=$1, content=$2, type=$3, updated_at=NOW()
        WHERE id=$4 AND user_id=$5
    `
	res, err := r.DB.Exec(query, t.Title, t.Content, t.Type, t.ID, t.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("template", t.ID)
	}
	return nil
}

func (r *TemplateRepository) Delete(id, ownerID int) error {
	res, err := r.DB.Exec(`DELETE FROM marketing_templates WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("template", id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
