package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"goalspark/internal/domain/auth"
	"goalspark/internal/platform/config"
	"goalspark/internal/platform/email"
	"goalspark/internal/requestctx"
	"goalspark/internal/transport/http/api"
	"goalspark/internal/transport/http/middleware"
	"goalspark/internal/transport/http/shared"
)

type Handler struct {
	Users  *auth.Store
	Mailer email.Mailer
	Cfg    config.Config
}

func NewHandler(users *auth.Store, mailer email.Mailer, cfg config.Config) *Handler {
	return &Handler{Users: users, Mailer: mailer, Cfg: cfg}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	JobTitle  string `json:"job_title"`
	ManagerID string `json:"manager_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfa_code"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

// HandleRegister creates an account. Without a manager_id the account is a
// manager (admin role); with one it joins that manager's team as an
// employee.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("first_name", payload.FirstName, "first name is required")
	v.Required("last_name", payload.LastName, "last name is required")
	if payload.Email != "" {
		if _, err := mail.ParseAddress(payload.Email); err != nil {
			v.Add("email", "must be a valid email address")
		}
	}
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if v.Reject(w, requestID) {
		return
	}

	emailAddr := strings.ToLower(strings.TrimSpace(payload.Email))
	exists, err := h.Users.EmailExists(r.Context(), emailAddr)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to check email", requestID)
		return
	}
	if exists {
		api.Fail(w, http.StatusConflict, "email_taken", "an account with this email already exists", requestID)
		return
	}

	role := auth.RoleAdmin
	managerID := strings.TrimSpace(payload.ManagerID)
	if managerID != "" {
		isAdmin, err := h.Users.IsActiveAdmin(r.Context(), managerID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to check manager", requestID)
			return
		}
		if !isAdmin {
			api.Fail(w, http.StatusBadRequest, "invalid_manager", "manager not found", requestID)
			return
		}
		role = auth.RoleEmployee
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to create account", requestID)
		return
	}

	id, err := h.Users.CreateUser(r.Context(), emailAddr, hash, strings.TrimSpace(payload.FirstName), strings.TrimSpace(payload.LastName), role, strings.TrimSpace(payload.JobTitle), managerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "create_failed", "failed to create account", requestID)
		return
	}

	if err := h.Mailer.Send(r.Context(), h.Cfg.EmailFrom, emailAddr, "Welcome to "+h.Cfg.AppName, email.WelcomeBody(payload.FirstName, h.Cfg.FrontendURL)); err != nil {
		slog.Warn("welcome email failed", "userId", id, "err", err)
	}

	token, err := auth.GenerateToken(h.Cfg.JWTSecret, auth.Claims{UserID: id, Role: role}, h.Cfg.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	api.Created(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":         id,
			"email":      emailAddr,
			"first_name": payload.FirstName,
			"last_name":  payload.LastName,
			"role":       role,
		},
	}, requestID)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	user, err := h.Users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	if user.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
			return
		}
		secret, _, err := h.Users.MFASecret(r.Context(), user.ID)
		if err != nil || secret == "" || !totp.Validate(payload.MFACode, secret) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestID)
			return
		}
	}

	token, err := auth.GenerateToken(h.Cfg.JWTSecret, auth.Claims{UserID: user.ID, Role: user.Role}, h.Cfg.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	if err := h.Users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{"token": token, "user": user}, requestID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	userCtx, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	user, err := h.Users.FindByID(r.Context(), userCtx.UserID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "account no longer active", requestID)
		return
	}
	api.Success(w, user, requestID)
}

// HandleManagers lists active managers so the registration form can offer
// a team to join. Intentionally unauthenticated.
func (h *Handler) HandleManagers(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	managers, err := h.Users.ListManagers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to list managers", requestID)
		return
	}
	out := make([]map[string]string, 0, len(managers))
	for _, m := range managers {
		out = append(out, map[string]string{
			"id":        m.ID,
			"name":      m.FullName(),
			"job_title": m.JobTitle,
		})
	}
	api.Success(w, out, requestID)
}

// HandleForgotPassword always answers with the same body so it cannot be
// used to probe which emails exist.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	user, err := h.Users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err == nil {
		token, err := generateResetToken()
		if err != nil {
			slog.Warn("password reset token generation failed", "userId", user.ID, "err", err)
			api.Success(w, map[string]string{"status": "reset_requested"}, requestID)
			return
		}
		if err := h.Users.CreatePasswordReset(r.Context(), user.ID, auth.HashToken(token), time.Now().Add(h.Cfg.ResetTokenTTL)); err != nil {
			slog.Warn("password reset insert failed", "userId", user.ID, "err", err)
		} else if err := h.Mailer.Send(r.Context(), h.Cfg.EmailFrom, user.Email, h.Cfg.AppName+" password reset",
			email.PasswordResetBody(user.FirstName, h.Cfg.FrontendURL, token, h.Cfg.ResetTokenTTL)); err != nil {
			slog.Warn("password reset email failed", "userId", user.ID, "err", err)
		}
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		slog.Warn("password reset lookup failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "reset_requested"}, requestID)
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if len(payload.NewPassword) < 8 {
		api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters", requestID)
		return
	}

	hashed := auth.HashToken(payload.Token)
	userID, err := h.Users.PasswordResetUserID(r.Context(), hashed)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", requestID)
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to update password", requestID)
		return
	}
	if err := h.Users.UpdatePassword(r.Context(), userID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update password", requestID)
		return
	}
	if err := h.Users.MarkPasswordResetUsed(r.Context(), hashed); err != nil {
		slog.Warn("password reset mark used failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "password_reset"}, requestID)
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      h.Cfg.AppName,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to generate mfa secret", requestID)
		return
	}
	if err := h.Users.SetMFASecret(r.Context(), user.UserID, key.Secret()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestID)
		return
	}

	api.Success(w, map[string]string{"secret": key.Secret(), "otpauth_url": key.URL()}, requestID)
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.setMFAEnabled(w, r, true)
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.setMFAEnabled(w, r, false)
}

func (h *Handler) setMFAEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	secret, _, err := h.Users.MFASecret(r.Context(), user.UserID)
	if err != nil || secret == "" {
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestID)
		return
	}
	if !totp.Validate(payload.Code, secret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestID)
		return
	}
	if err := h.Users.SetMFAEnabled(r.Context(), user.UserID, enabled); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_update_failed", "failed to update mfa", requestID)
		return
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}
	api.Success(w, map[string]string{"status": status}, requestID)
}

func generateResetToken() (string, error) {
	buff := make([]byte, 32)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
