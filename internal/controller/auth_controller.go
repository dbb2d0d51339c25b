// internal/controller/auth_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type AuthController struct {
	AuthService *service.AuthService
	Log         *zap.Logger
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	user, err := c.AuthService.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "registered, check your email for a verification code",
		"user":    user,
	})
}

// VerifyEmail trades the mailed code for a verified account and a fresh
// session token.
func (c *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	token, user, err := c.AuthService.VerifyEmail(body.Email, body.Code)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "email verified",
		"token":   token,
		"user":    user,
	})
}

func (c *AuthController) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	if err := c.AuthService.ResendVerification(r.Context(), body.Email); err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "verification code sent"})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	token, user, err := c.AuthService.Login(body.Email, body.Password)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		writeError(w, c.Log, appErrors.NewUnauthorized("missing bearer token"))
		return
	}

	if err := c.AuthService.Logout(token); err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
