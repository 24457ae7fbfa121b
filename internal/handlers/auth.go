package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/models"
	"merrylights-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
)

type AuthHandler struct {
	tokenRepo   *repository.AuthTokenRepo
	userRepo    *repository.UserRepo
	jwtSecret   string
	adminEmails map[string]bool
}

// NewAuthHandler wires the magic-link flow. adminEmails is the operator
// allowlist: accounts with these addresses carry the admin flag.
func NewAuthHandler(tokenRepo *repository.AuthTokenRepo, userRepo *repository.UserRepo, jwtSecret string, adminEmails []string) *AuthHandler {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = true
		}
	}
	return &AuthHandler{
		tokenRepo:   tokenRepo,
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		adminEmails: admins,
	}
}

type requestLoginRequest struct {
	Email string `json:"email"`
}

type verifyResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// --- POST /auth/request ---

func (h *AuthHandler) RequestLogin(w http.ResponseWriter, r *http.Request) {
	var req requestLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}
	// Addresses are case-insensitive; normalizing keeps the rate limit and
	// the account lookup keyed consistently.
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		writeValidationError(w, map[string]string{"email": "Email is required"})
		return
	}

	// Rate limiting: max 5 requests per email in 10 minutes
	count, err := h.tokenRepo.CountRecentByEmail(r.Context(), req.Email, 10*time.Minute)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("login rate limit check failed")
		writeInternalError(w)
		return
	}
	if count >= 5 {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
			"Too many login requests, please try again later", nil)
		return
	}

	tokenValue := uuid.New().String()

	authToken := &models.AuthToken{
		Email:     req.Email,
		Token:     tokenValue,
		Purpose:   models.TokenPurposeLogin,
		ExpiresAt: time.Now().Add(15 * time.Minute),
		IsUsed:    false,
	}
	if err := h.tokenRepo.Create(r.Context(), authToken); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("auth token create failed")
		writeInternalError(w)
		return
	}

	// Link into the SPA, which calls GET /auth/verify with the token.
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		appURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	emailLink := fmt.Sprintf("%s/login?token=%s", appURL, tokenValue)

	if err := sendLoginEmail(req.Email, emailLink); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("login email send failed")
		// Token is created; email delivery is best-effort.
		writeSuccess(w, http.StatusOK, nil, "Login link generated (email delivery may be delayed)")
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Login link sent to your email")
}

// --- GET /auth/verify ---

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.URL.Query().Get("token")
	if tokenValue == "" {
		writeValidationError(w, map[string]string{"token": "Token is required"})
		return
	}

	authToken, err := h.tokenRepo.FindByToken(r.Context(), tokenValue)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("auth token lookup failed")
		writeInternalError(w)
		return
	}
	if authToken == nil || authToken.Purpose != models.TokenPurposeLogin {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
		return
	}
	if authToken.IsExpired() {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token has expired", nil)
		return
	}

	// Conditional claim: a replayed or concurrently-verified token loses here.
	claimed, err := h.tokenRepo.MarkUsed(r.Context(), tokenValue)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("auth token claim failed")
		writeInternalError(w)
		return
	}
	if !claimed {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token has already been used", nil)
		return
	}

	user, err := h.userRepo.FindOrCreate(r.Context(), authToken.Email, h.adminEmails[authToken.Email])
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("user find-or-create failed")
		writeInternalError(w)
		return
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID.Hex(),
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(30 * 24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := jwtToken.SignedString([]byte(h.jwtSecret))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("JWT signing failed")
		writeInternalError(w)
		return
	}

	writeSuccess(w, http.StatusOK, verifyResponse{
		Token: tokenString,
		User:  user,
	}, "")
}

// --- Helpers ---

func sendLoginEmail(to, link string) error {
	apiKey := os.Getenv("RESEND_API_KEY")
	fromEmail := os.Getenv("FROM_EMAIL")

	if apiKey == "" {
		logger.Log.Warn().Str("to", to).Str("link", link).
			Msg("RESEND_API_KEY not set, skipping email send")
		return nil
	}

	client := resend.NewClient(apiKey)

	params := &resend.SendEmailRequest{
		From:    fromEmail,
		To:      []string{to},
		Subject: "Your MerryLights Login Link",
		Html: fmt.Sprintf(`
			<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
				<h2 style="color: #1b4332;">Welcome to MerryLights! &#127876;</h2>
				<p>Click the button below to sign in and start exploring displays:</p>
				<a href="%s" style="display: inline-block; background: #b7222c; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">
					Sign in to MerryLights
				</a>
				<p style="color: #888; font-size: 14px; margin-top: 16px;">
					This link expires in 15 minutes and can only be used once.
				</p>
				<p style="color: #aaa; font-size: 12px;">
					If you didn't request this, you can safely ignore this email.
				</p>
			</div>
		`, link),
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.Log.Info().Str("email_id", sent.Id).Str("to", to).Msg("login email sent")
	return nil
}
