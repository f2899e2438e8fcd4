package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"

	"github.com/iamdashante1/mb/internal/config"
)

const (
	sessionName = "memorial_admin"
	emailKey    = "admin_email"
)

type ctxKey struct{}

// AdminEmail returns the signed-in administrator, if any.
func AdminEmail(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// Setup installs the session store and OAuth providers used by gothic.
func Setup(cfg *config.Config) {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(86400 * 30)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.SecureCookies
	gothic.Store = store

	if cfg.GoogleKey != "" {
		goth.UseProviders(google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.OAuthCallbackURL, "email"))
	}
}

// Admins restricts the dashboard to a list of email addresses. With an
// empty list the dashboard is public.
type Admins struct {
	allowed  map[string]bool
	redirect string
	logger   *zap.Logger
}

// NewAdmins builds the guard. redirect is where a successful login lands.
func NewAdmins(emails []string, redirect string, logger *zap.Logger) *Admins {
	if redirect == "" {
		redirect = "/"
	}

	a := &Admins{
		allowed:  make(map[string]bool),
		redirect: redirect,
		logger:   logger.With(zap.String("logger", "auth")),
	}

	for _, e := range emails {
		a.allowed[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return a
}

func (a *Admins) Enabled() bool {
	return len(a.allowed) > 0
}

func (a *Admins) Allowed(email string) bool {
	return a.allowed[strings.ToLower(strings.TrimSpace(email))]
}

func (a *Admins) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		session, err := gothic.Store.Get(r, sessionName)
		if err != nil {
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}

		email, _ := session.Values[emailKey].(string)
		if email == "" || !a.Allowed(email) {
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withProvider(r *http.Request) *http.Request {
	return gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
}

func (a *Admins) BeginHandler(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, withProvider(r))
}

func (a *Admins) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	user, err := gothic.CompleteUserAuth(w, withProvider(r))
	if err != nil {
		a.logger.Warn("oauth callback failed", zap.Error(err))
		http.Error(w, "Not Authorized", http.StatusUnauthorized)
		return
	}

	if !a.Allowed(user.Email) {
		a.logger.Warn("login refused", zap.String("email", user.Email))
		http.Error(w, "Not Authorized", http.StatusForbidden)
		return
	}

	session, err := gothic.Store.Get(r, sessionName)
	if err != nil {
		a.logger.Error("failed to get session", zap.Error(err))
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	session.Values[emailKey] = user.Email

	if err := session.Save(r, w); err != nil {
		a.logger.Error("failed to save session", zap.Error(err))
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, a.redirect, http.StatusTemporaryRedirect)
}

func (a *Admins) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, err := gothic.Store.Get(r, sessionName)
	if err != nil {
		a.logger.Warn("failed to get session", zap.Error(err))
	} else {
		delete(session.Values, emailKey)
		session.Options.MaxAge = -1

		if err := session.Save(r, w); err != nil {
			a.logger.Error("failed to clear session", zap.Error(err))
		}
	}

	if err := gothic.Logout(w, withProvider(r)); err != nil {
		a.logger.Warn("oauth logout failed", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}
