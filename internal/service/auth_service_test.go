// internal/service/auth_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/campaignhub-backend/internal/delivery"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

type fakeUserRepo struct {
	users    map[string]*model.User
	sessions map[string]int // token -> user id
	nextID   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    map[string]*model.User{},
		sessions: map[string]int{},
	}
}

func (f *fakeUserRepo) Create(u *model.User) error {
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, appErrors.NewNotFound("user", email)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(id int) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, appErrors.NewNotFound("user", id)
}

func (f *fakeUserRepo) SetVerificationCode(userID int, code string, expiresAt time.Time) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.VerificationCode = &code
			u.VerificationExpires = &expiresAt
			return nil
		}
	}
	return appErrors.NewNotFound("user", userID)
}

func (f *fakeUserRepo) VerifyEmail(email, code string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok || u.VerificationCode == nil || *u.VerificationCode != code ||
		u.VerificationExpires == nil || u.VerificationExpires.Before(time.Now()) {
		return nil, appErrors.NewValidation("code")
	}
	u.EmailVerified = true
	u.VerificationCode = nil
	u.VerificationExpires = nil
	return u, nil
}

func (f *fakeUserRepo) CreateSession(userID int, token string, expiresAt time.Time) error {
	f.sessions[token] = userID
	return nil
}

func (f *fakeUserRepo) SessionExists(userID int, token string) (bool, error) {
	id, ok := f.sessions[token]
	return ok && id == userID, nil
}

func (f *fakeUserRepo) DeleteSession(token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeUserRepo) DeleteUserSessions(userID int) error {
	for token, id := range f.sessions {
		if id == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

func newAuthService(repo *fakeUserRepo, mailer delivery.Mailer) *AuthService {
	log := zap.NewNop()
	return &AuthService{
		UserRepo:   repo,
		Gateway:    delivery.NewGateway(mailer, nil, time.Second, log),
		JWTSecret:  []byte("test-secret"),
		SessionTTL: time.Hour,
		BcryptCost: 4, // min cost keeps the test fast
		Log:        log,
	}
}

// registerAndVerify walks the real signup flow: register, pull the mailed
// code off the stored user, confirm it.
func registerAndVerify(t *testing.T, svc *AuthService, repo *fakeUserRepo, name, email, password string) *model.User {
	t.Helper()
	_, err := svc.Register(context.Background(), name, email, password)
	require.NoError(t, err)
	require.NotNil(t, repo.users[email].VerificationCode)

	_, verified, err := svc.VerifyEmail(email, *repo.users[email].VerificationCode)
	require.NoError(t, err)
	return verified
}

func TestRegisterLoginVerifyRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &recordingMailer{})

	u := registerAndVerify(t, svc, repo, "Ana", "ana@example.com", "s3cret")
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	token, logged, err := svc.Login("ana@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	require.NotEmpty(t, token)

	ownerID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, ownerID)
}

func TestRegisterMailsSixDigitCode(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	svc := newAuthService(repo, mailer)

	u, err := svc.Register(context.Background(), "Ana", "ana@example.com", "s3cret")
	require.NoError(t, err)
	assert.False(t, u.EmailVerified)

	require.NotNil(t, u.VerificationCode)
	assert.Len(t, *u.VerificationCode, 6)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, *u.VerificationCode)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &recordingMailer{})

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "s3cret")
	require.NoError(t, err)

	_, _, err = svc.VerifyEmail("ana@example.com", "000000")
	var ve *appErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.False(t, repo.users["ana@example.com"].EmailVerified)
}

func TestVerifyRejectsUnverifiedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &recordingMailer{})

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "s3cret")
	require.NoError(t, err)

	// Login succeeds with the right password, but the session is unusable
	// until the email is confirmed.
	token, _, err := svc.Login("ana@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	var uv *appErrors.UnverifiedError
	require.ErrorAs(t, err, &uv)
}

func TestResendVerificationRotatesCode(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	svc := newAuthService(repo, mailer)

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.ResendVerification(context.Background(), "ana@example.com"))
	require.Len(t, mailer.sent, 2)

	current := repo.users["ana@example.com"].VerificationCode
	require.NotNil(t, current)
	assert.Contains(t, mailer.sent[1].Body, *current)
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &recordingMailer{})

	registerAndVerify(t, svc, repo, "Ana", "ana@example.com", "s3cret")

	err := svc.ResendVerification(context.Background(), "ana@example.com")
	var ve *appErrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &recordingMailer{})

	registerAndVerify(t, svc, repo, "Ana", "ana@example.com", "s3cret")

	_, _, err := svc.Login("ana@example.com", "wrong")
	var ua *appErrors.UnauthorizedError
	require.ErrorAs(t, err, &ua)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &recordingMailer{})

	_, _, err := svc.Login("ghost@example.com", "whatever")
	var ua *appErrors.UnauthorizedError
	require.ErrorAs(t, err, &ua)
	assert.Equal(t, "invalid credentials", ua.Reason)
}

func TestVerifyRejectsGarbageToken(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &recordingMailer{})

	_, err := svc.Verify("not-a-jwt")
	var ua *appErrors.UnauthorizedError
	require.ErrorAs(t, err, &ua)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &recordingMailer{})

	registerAndVerify(t, svc, repo, "Ana", "ana@example.com", "s3cret")
	token, _, err := svc.Login("ana@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(token))

	_, err = svc.Verify(token)
	var ua *appErrors.UnauthorizedError
	require.ErrorAs(t, err, &ua)
	assert.Equal(t, "session expired", ua.Reason)
}
