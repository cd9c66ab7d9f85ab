package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/amglow-storefront/pkg/logger"
)

const (
	sessionHeader = "X-Session-Id"
	// SessionCookie carries the anonymous storefront session for browsers.
	SessionCookie = "amglow_session"

	maxSessionIDLen   = 128
	sessionCookieLife = 30 * 24 * 60 * 60
)

// Session resolves the anonymous shopper session from the X-Session-Id header
// or the amglow_session cookie, minting a new one when neither is usable. The
// id is echoed back in both places so API clients and browsers stay pinned.
func Session(logg *logger.Logger, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionFromRequest(r)
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   sessionCookieLife,
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(sessionHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request) string {
	if id := validSessionID(r.Header.Get(sessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return validSessionID(c.Value)
	}
	return ""
}

// validSessionID accepts opaque tokens made of URL-safe characters only, as
// they end up inside redis keys.
func validSessionID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxSessionIDLen {
		return ""
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ""
		}
	}
	return id
}
