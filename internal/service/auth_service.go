// internal/service/auth_service.go
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unclebandit/campaignhub-backend/internal/delivery"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
)

// verificationTTL bounds how long an emailed verification code stays usable.
const verificationTTL = 15 * time.Minute

// AuthService issues and verifies the opaque authenticated identity the rest
// of the system consumes as an owner ID. Tokens are HS256 JWTs backed by a
// session row; deleting the row logs the token out before it expires. New
// accounts must confirm their email with a mailed code before the middleware
// lets them through.
type AuthService struct {
	UserRepo   repository.UserRepositoryInterface
	Gateway    *delivery.Gateway
	JWTSecret  []byte
	SessionTTL time.Duration
	BcryptCost int
	Log        *zap.Logger
}

type tokenClaims struct {
	UserID int    `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Register creates the account unverified and emails a six-digit code. A
// failed verification email does not roll the account back; the resend
// endpoint covers it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, appErrors.NewValidation("name", "email", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := verificationCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}
	expiresAt := time.Now().Add(verificationTTL)

	u := &model.User{
		Name:                name,
		Email:               email,
		PasswordHash:        string(hash),
		VerificationCode:    &code,
		VerificationExpires: &expiresAt,
	}
	if err := s.UserRepo.Create(u); err != nil {
		return nil, err
	}

	if err := s.sendVerificationEmail(ctx, u.Name, u.Email, code); err != nil {
		s.Log.Warn("failed to send verification email", zap.Int("user_id", u.ID), zap.Error(err))
	}

	s.Log.Info("user registered", zap.Int("user_id", u.ID))
	return u, nil
}

// VerifyEmail consumes the mailed code, marks the account verified, and
// issues a fresh session token. Previous sessions of the user are dropped.
func (s *AuthService) VerifyEmail(email, code string) (string, *model.User, error) {
	if email == "" || code == "" {
		return "", nil, appErrors.NewValidation("email", "code")
	}

	u, err := s.UserRepo.VerifyEmail(email, code)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.DeleteUserSessions(u.ID); err != nil {
		return "", nil, err
	}
	token, err := s.issueSession(u)
	if err != nil {
		return "", nil, err
	}

	s.Log.Info("email verified", zap.Int("user_id", u.ID))
	return token, u, nil
}

// ResendVerification mints a fresh code for an unverified account and mails
// it again.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return appErrors.NewValidation("email")
	}

	u, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return appErrors.NewValidation("email already verified")
	}

	code, err := verificationCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	if err := s.UserRepo.SetVerificationCode(u.ID, code, time.Now().Add(verificationTTL)); err != nil {
		return err
	}
	return s.sendVerificationEmail(ctx, u.Name, u.Email, code)
}

// Login verifies credentials, mints a JWT, and persists the session.
func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	if email == "" || password == "" {
		return "", nil, appErrors.NewValidation("email", "password")
	}

	u, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		var nf *appErrors.NotFoundError
		if errors.As(err, &nf) {
			return "", nil, appErrors.NewUnauthorized("invalid credentials")
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, appErrors.NewUnauthorized("invalid credentials")
	}

	token, err := s.issueSession(u)
	if err != nil {
		return "", nil, err
	}

	s.Log.Info("user logged in", zap.Int("user_id", u.ID))
	return token, u, nil
}

func (s *AuthService) issueSession(u *model.User) (string, error) {
	expiresAt := time.Now().Add(s.SessionTTL)
	claims := tokenClaims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.UserRepo.CreateSession(u.ID, token, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) Logout(token string) error {
	return s.UserRepo.DeleteSession(token)
}

// Verify resolves a bearer token to an owner ID. Any parse, signature,
// expiry, or session failure collapses into a single Unauthorized error so
// callers never branch on token internals. An account with a live session
// but an unconfirmed email is rejected separately so clients can prompt for
// the code.
func (s *AuthService) Verify(token string) (int, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.JWTSecret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, appErrors.NewUnauthorized("invalid or expired token")
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return 0, appErrors.NewUnauthorized("invalid or expired token")
	}

	live, err := s.UserRepo.SessionExists(claims.UserID, token)
	if err != nil {
		return 0, err
	}
	if !live {
		return 0, appErrors.NewUnauthorized("session expired")
	}

	u, err := s.UserRepo.GetByID(claims.UserID)
	if err != nil {
		return 0, err
	}
	if !u.EmailVerified {
		return 0, appErrors.NewUnverified()
	}
	return claims.UserID, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, name, email, code string) error {
	body := fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Verify your email address</h2>
<p>Hi %s,</p>
<p>To finish setting up your account, enter this code on the verification page:</p>
<div style="background-color: #f5f6fa; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">%s</div>
<p>The code expires in 15 minutes. If you did not request it, ignore this email.</p>
</div>`,
		name, code,
	)
	return s.Gateway.Send(ctx, model.ChannelEmail, delivery.Message{
		To:      email,
		Subject: "Verify your email address",
		Body:    body,
	})
}

// verificationCode returns a random six-digit code.
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
