package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/user/blog-platform/internal/transport"
	"github.com/user/blog-platform/pkg/logger"
)

const (
	sessionCookieName    = "session_token"
	oauthStateCookieName = "oauth_state"
	oauthStateMaxAge     = 10 * time.Minute
)

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Provider *OAuthProvider
}

// NewHandler wires the auth endpoints. provider may be nil when the
// external-provider path is not configured.
func NewHandler(svc ServiceAPI, provider *OAuthProvider) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Provider:    provider,
	}
}

// Login handles POST /auth/login. All authentication failures surface as
// one generic message so account existence never leaks.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Service.SignInWithCredentials(r.Context(), dto)
	if err != nil {
		h.writeSignInFailure(w, err)
		return
	}

	h.setSessionCookie(w, session)
	h.WriteJSON(w, http.StatusOK, session)
}

// OAuthBegin handles GET /auth/oauth/github. It stores a CSRF state
// cookie and redirects to the provider.
func (h *Handler) OAuthBegin(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		h.WriteError(w, http.StatusNotFound, "oauth provider not configured")
		return
	}

	state, err := GenerateState()
	if err != nil {
		h.Logger.Error("oauth begin: state generation failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(oauthStateMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.Provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallback handles GET /auth/oauth/github/callback: state check,
// code exchange, profile fetch, then the provider sign-in path.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		h.WriteError(w, http.StatusNotFound, "oauth provider not configured")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.Logger.Warn("oauth callback: state mismatch")
		h.WriteError(w, http.StatusUnauthorized, "sign-in failed")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.WriteError(w, http.StatusUnauthorized, "sign-in failed")
		return
	}

	token, err := h.Provider.Exchange(r.Context(), code)
	if err != nil {
		h.Logger.Warn("oauth callback: code exchange failed", "error", err)
		h.WriteError(w, http.StatusUnauthorized, "sign-in failed")
		return
	}

	profile, err := h.Provider.FetchProfile(r.Context(), token)
	if err != nil {
		h.Logger.Warn("oauth callback: profile fetch failed", "error", err)
		h.WriteError(w, http.StatusUnauthorized, "sign-in failed")
		return
	}

	session, err := h.Service.SignInWithProvider(r.Context(), *profile, token.AccessToken)
	if err != nil {
		h.writeSignInFailure(w, err)
		return
	}

	h.setSessionCookie(w, session)
	h.WriteJSON(w, http.StatusOK, session)
}

// Logout clears the session cookie. Tokens themselves stay valid until
// their fixed expiry; there is no server-side session store to revoke.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// CurrentSession handles GET /auth/session.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "no active session")
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

// AuthMiddleware validates the session token (bearer header or cookie)
// and loads the principal with a fresh permission set into the request
// context. Requests without a valid, unexpired session get 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.extractSessionToken(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing session")
			return
		}

		claims, err := h.Service.ValidateSessionToken(token)
		if err != nil {
			h.Logger.Warn("session validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		user, err := h.Service.GetUserWithPermissions(r.Context(), claims.UserID)
		if err != nil {
			h.Logger.Warn("session user lookup failed", "user_id", claims.UserID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

func (h *Handler) extractSessionToken(r *http.Request) string {
	if token := h.ExtractTokenFromHeader(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) writeSignInFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDirectoryUnavailable):
		h.Logger.Error("sign-in failed: directory unavailable", "error", err)
		h.WriteError(w, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, ErrAuthenticationFailed):
		h.WriteError(w, http.StatusUnauthorized, "sign-in failed")
	default:
		if _, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("sign-in failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ClientIP extracts the caller identity used as the rate limit key.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
