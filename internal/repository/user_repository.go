package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

type UserRepositoryInterface interface {
	Create(u *model.User) error
	GetByEmail(email string) (*model.User, error)
	GetByID(id int) (*model.User, error)
	SetVerificationCode(userID int, code string, expiresAt time.Time) error
	VerifyEmail(email, code string) (*model.User, error)
	CreateSession(userID int, token string, expiresAt time.Time) error
	SessionExists(userID int, token string) (bool, error)
	DeleteSession(token string) error
	DeleteUserSessions(userID int) error
}

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, name, email, password_hash, email_verified, created_at`

func (r *UserRepository) Create(u *model.User) error {
	u.CreatedAt = time.Now()
	query := `
        INSERT INTO users (name, email, password_hash, email_verified, verification_code, verification_expires, created_at)
        VALUES ($1, $2, $3, FALSE, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(
		query, u.Name, u.Email, u.PasswordHash, u.VerificationCode, u.VerificationExpires, u.CreatedAt,
	).Scan(&u.ID)
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("user", email)
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(id int) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("user", id)
		}
		return nil, err
	}
	return &u, nil
}

// SetVerificationCode replaces the user's pending verification code, for
// resends.
func (r *UserRepository) SetVerificationCode(userID int, code string, expiresAt time.Time) error {
	res, err := r.DB.Exec(
		`UPDATE users SET verification_code=$1, verification_expires=$2 WHERE id=$3`,
		code, expiresAt, userID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("user", userID)
	}
	return nil
}

// VerifyEmail consumes an unexpired verification code: the user is marked
// verified and the code cleared. A wrong or expired code is a validation
// failure, never a hint about which part was wrong.
func (r *UserRepository) VerifyEmail(email, code string) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRow(`
        UPDATE users
        SET email_verified=TRUE, verification_code=NULL, verification_expires=NULL
        WHERE email=$1 AND verification_code=$2 AND verification_expires > NOW()
        RETURNING `+userColumns,
		email, code,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewValidation("code")
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateSession(userID int, token string, expiresAt time.Time) error {
	_, err := r.DB.Exec(
		`INSERT INTO sessions (user_id, token, expires_at, created_at) VALUES ($1, $2, $3, NOW())`,
		userID, token, expiresAt,
	)
	return err
}

// SessionExists reports whether a live (unexpired) session row backs the
// token. Tokens without a session row are treated as logged out even when
// the JWT itself is still valid.
func (r *UserRepository) SessionExists(userID int, token string) (bool, error) {
	var tmp int
	err := r.DB.QueryRow(
		`SELECT 1 FROM sessions WHERE user_id=$1 AND token=$2 AND expires_at > NOW() LIMIT 1`,
		userID, token,
	).Scan(&tmp)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserRepository) DeleteSession(token string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE token=$1`, token)
	return err
}

// DeleteUserSessions invalidates every session of the user, used when the
// verification upgrade reissues the token.
func (r *UserRepository) DeleteUserSessions(userID int) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE user_id=$1`, userID)
	return err
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
