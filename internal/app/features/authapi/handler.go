// Package authapi serves account endpoints: register, login, and the
// password-reset pair. Passwords are bcrypt-hashed; sessions are stateless
// JWT bearer tokens.
package authapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	tokenstore "github.com/fieldworks/turfhub/internal/app/store/tokens"
	userstore "github.com/fieldworks/turfhub/internal/app/store/users"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/httpjson"
	"github.com/fieldworks/turfhub/internal/app/system/inputval"
	"github.com/fieldworks/turfhub/internal/app/system/mailer"
	"github.com/fieldworks/turfhub/internal/app/system/sanitize"
	"github.com/fieldworks/turfhub/internal/app/system/timeouts"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

const (
	minPasswordLen = 8
	resetTokenTTL  = 30 * time.Minute
)

// Handler holds the auth feature's dependencies.
type Handler struct {
	Users    *userstore.Store
	Tokens   *tokenstore.Store
	TokenSvc *auth.TokenService
	Mailer   *mailer.Mailer
	BaseURL  string
	SiteName string
	Log      *zap.Logger
}

// NewHandler constructs the auth Handler. Mailer may be nil in development;
// forgot-password then logs the reset link instead of emailing it.
func NewHandler(db *mongo.Database, tokenSvc *auth.TokenService, m *mailer.Mailer, baseURL, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Tokens:   tokenstore.New(db),
		TokenSvc: tokenSvc,
		Mailer:   m,
		BaseURL:  baseURL,
		SiteName: siteName,
		Log:      logger,
	}
}

type credentialsResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleRegister creates an account and signs the caller in.
//
// POST /auth/register {full_name, email, password} → 201 {token, user}
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.FullName = sanitize.Text(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" {
		httpjson.Fail(w, http.StatusBadRequest, "full_name is required")
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		httpjson.Fail(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.Fail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("hash password", err))
		return
	}

	user, err := h.Users.Create(ctx, models.User{
		FullName:       req.FullName,
		Email:          req.Email,
		HashedPassword: string(hashed),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Fail(w, http.StatusConflict, userstore.ErrDuplicateEmail.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("create user", err))
		return
	}

	token, err := h.TokenSvc.Sign(user.ID, user.Email)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("sign token", err))
		return
	}
	httpjson.Created(w, credentialsResponse{Token: token, User: user})
}

// HandleLogin verifies credentials and returns a fresh token.
//
// POST /auth/login {email, password} → 200 {token, user}
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same message for unknown email and bad password.
		httpjson.Fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		httpjson.Fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.TokenSvc.Sign(user.ID, user.Email)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("sign token", err))
		return
	}
	httpjson.OK(w, credentialsResponse{Token: token, User: user})
}

// HandleForgotPassword emails a single-use reset link. The response is the
// same whether or not the email has an account.
//
// POST /auth/forgot-password {email} → 200
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !inputval.IsValidEmail(strings.TrimSpace(req.Email)) {
		httpjson.Fail(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	const reply = "if that email has an account, a reset link is on its way"

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		httpjson.OK(w, map[string]string{"message": reply})
		return
	}

	secret, err := h.Tokens.Issue(ctx, user.ID, models.TokenPurposeReset, resetTokenTTL)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("issue reset token", err))
		return
	}

	link := strings.TrimRight(h.BaseURL, "/") + "/reset-password?token=" + secret
	if h.Mailer == nil {
		h.Log.Info("password reset requested (no mailer configured)",
			zap.String("email", user.Email), zap.String("link", link))
		httpjson.OK(w, map[string]string{"message": reply})
		return
	}

	email := mailer.BuildResetEmail(mailer.ResetEmailData{
		SiteName:  h.SiteName,
		ResetLink: link,
		ExpiresIn: "30 minutes",
	})
	email.To = user.Email
	if err := h.Mailer.Send(email); err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("send reset email", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": reply})
}

// HandleResetPassword consumes a reset token and sets the new password.
// Remaining tokens for the user are invalidated.
//
// POST /auth/reset-password {token, password} → 200
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Token == "" {
		httpjson.Fail(w, http.StatusBadRequest, "token is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.Fail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	userID, err := h.Tokens.Consume(ctx, req.Token, models.TokenPurposeReset)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusBadRequest, tokenstore.ErrNotFound.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("consume reset token", err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("hash password", err))
		return
	}
	if err := h.Users.SetPassword(ctx, userID, string(hashed)); err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("set password", err))
		return
	}
	if err := h.Tokens.DeleteForUser(ctx, userID, models.TokenPurposeReset); err != nil {
		h.Log.Warn("invalidate remaining reset tokens", zap.Error(err))
	}

	httpjson.OK(w, map[string]string{"message": "password updated"})
}
