package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/shoptools/shoptools-go/pkg/logger"
)

const (
	sessionTokenHeader = "X-Session-Token"
	sessionCookieName  = "shoptools_session"
)

type contextKey string

const ctxSessionToken contextKey = "session_token"

// SessionTokenFromContext returns the visitor's session token, empty when
// the middleware did not run.
func SessionTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionToken).(string); ok {
		return v
	}
	return ""
}

// WithSessionToken injects a session token into the context.
func WithSessionToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionToken, token)
}

// Session resolves the visitor's session token from the request, minting one
// for first-time visitors. The token travels in a cookie for browsers and is
// mirrored in a response header for API clients.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(sessionTokenHeader)
			if token == "" {
				if cookie, err := r.Cookie(sessionCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				token = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(sessionTokenHeader, token)

			ctx := WithSessionToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithSessionToken(ctx, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
