package server

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"time"

	"skatespot/internal/auth"
	"skatespot/internal/cache"
	"skatespot/internal/models"
	"skatespot/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookieName = "access_token"
	stateCookieName   = "oauth_state"
	stateCookieTTL    = 10 * time.Minute
)

// GoogleLogin handles GET /api/auth/google/login
//
// Generates a CSRF state nonce, records it, and redirects the browser to
// Google's consent screen. The nonce lives in Redis when available and in a
// short-lived cookie either way, so the flow survives a Redis outage.
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	state, err := newStateNonce()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if err := cache.StoreLoginState(c.Context(), state); err != nil {
		// Cookie comparison still protects the flow.
		slog.WarnContext(c.UserContext(), "failed to store login state in redis", "error", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(stateCookieTTL),
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Redirect(s.google.AuthURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback
//
// Verifies the state nonce, exchanges the authorization code for the user's
// Google profile, upserts the local account keyed by email, and hands the
// browser back to the frontend with a signed token. An existing account keeps
// its ID and votes; only name, avatar and last login are refreshed.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	ctx := c.Context()

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing state or code parameter"))
	}

	if !s.verifyLoginState(c, state) {
		observability.AuthFailures.WithLabelValues("oauth_state").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid or expired login state"))
	}

	start := time.Now()
	identity, err := s.google.Exchange(ctx, code)
	if err != nil {
		observability.UpstreamRequestDuration.WithLabelValues("google", "error").Observe(time.Since(start).Seconds())
		return models.RespondWithError(c, fiber.StatusBadGateway,
			models.NewUpstreamError("Google sign-in failed", err))
	}
	observability.UpstreamRequestDuration.WithLabelValues("google", "ok").Observe(time.Since(start).Seconds())

	user, err := s.userRepo.UpsertByEmail(ctx, identity.Email, identity.Name, identity.AvatarURL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(auth.TokenTTL),
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: "Lax",
		Path:     "/",
	})

	slog.InfoContext(c.UserContext(), "user signed in", "user_id", user.ID, "email", user.Email)

	// The frontend reads the token from the query string and stores it for
	// Authorization headers; the cookie covers same-site requests.
	return c.Redirect(s.config.FrontendURL+"?token="+token, fiber.StatusTemporaryRedirect)
}

// GetMe handles GET /api/auth/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(user)
}

// Logout handles POST /api/auth/logout
//
// Tokens are stateless; logout just clears the session cookie. A token the
// client kept elsewhere stays valid until it expires.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: "Lax",
		Path:     "/",
	})
	return c.JSON(fiber.Map{"status": "logged out"})
}

// verifyLoginState checks the callback state against the recorded nonce.
// Redis consumption is single-use; the cookie fallback is cleared after one
// comparison so it cannot be replayed either.
func (s *Server) verifyLoginState(c *fiber.Ctx, state string) bool {
	cookieState := c.Cookies(stateCookieName)
	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})

	if cache.Available() {
		ok, err := cache.ConsumeLoginState(c.Context(), state)
		if err == nil && ok {
			return true
		}
	}

	return cookieState != "" && cookieState == state
}

func newStateNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
