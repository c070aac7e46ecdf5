package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"paracord-hq/gateway/pkg/proxy/types"
	"paracord-hq/gateway/pkg/telemetry/logging"
)

// DefaultCookieName is the cookie carrying the session access token.
const DefaultCookieName = "paracord_access"

// Authorization schemes.
const (
	schemeBearer = "Bearer "
	schemeBot    = "Bot "
)

// credentialSource is one place a session token may be presented.
type credentialSource struct {
	Type string // header, cookie, query
	Name string
}

// Extractor resolves callers from request credentials.
type Extractor struct {
	secret     []byte
	cookieName string

	sessions SessionChecker
	bots     BotLookup
	users    UserLookup

	now func() time.Time
}

// NewExtractor creates an extractor verifying tokens with secret.
// An empty cookieName uses DefaultCookieName.
func NewExtractor(secret, cookieName string, sessions SessionChecker, bots BotLookup, users UserLookup) *Extractor {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Extractor{
		secret:     []byte(secret),
		cookieName: cookieName,
		sessions:   sessions,
		bots:       bots,
		users:      users,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

func (e *Extractor) sources() []credentialSource {
	return []credentialSource{
		{Type: "header", Name: "Authorization"},
		{Type: "cookie", Name: e.cookieName},
		{Type: "query", Name: "token"},
	}
}

// sessionToken returns the first present session credential. Only a
// Bearer Authorization header counts as a header credential; any other
// scheme falls through to the cookie and query sources.
func (e *Extractor) sessionToken(r *http.Request) (string, bool) {
	for _, source := range e.sources() {
		switch source.Type {
		case "header":
			if token, ok := strings.CutPrefix(r.Header.Get(source.Name), schemeBearer); ok {
				return token, true
			}
		case "cookie":
			if c, err := r.Cookie(source.Name); err == nil {
				return c.Value, true
			}
		case "query":
			if token := r.URL.Query().Get(source.Name); token != "" {
				return token, true
			}
		}
	}
	return "", false
}

// resolveSession validates the session credential and its revocation state.
func (e *Extractor) resolveSession(r *http.Request) (*Principal, error) {
	token, ok := e.sessionToken(r)
	if !ok {
		return nil, types.New(types.KindUnauthorized, "Unauthorized", errors.New("no session credential"))
	}

	now := e.now()
	claims, err := ParseAccessToken(token, e.secret, now)
	if err != nil {
		slog.DebugContext(r.Context(), "access token rejected",
			"token", logging.RedactToken(token),
			"error", err,
		)
		return nil, types.New(types.KindUnauthorized, "Unauthorized", err)
	}
	if claims.SessionID == "" || claims.TokenID == "" {
		return nil, types.New(types.KindUnauthorized, "Unauthorized", errors.New("token lacks session binding"))
	}

	active, err := e.sessions.IsAccessTokenActive(r.Context(), claims.Subject, claims.SessionID, claims.TokenID, now)
	if err != nil {
		return nil, types.New(types.KindInternal, "database error", err)
	}
	if !active {
		return nil, types.New(types.KindUnauthorized, "Unauthorized", errors.New("session revoked or expired"))
	}

	return &Principal{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		TokenID:   claims.TokenID,
	}, nil
}

// resolveBot validates an "Authorization: Bot <token>" header.
func (e *Extractor) resolveBot(r *http.Request) (*Principal, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), schemeBot)
	if !ok {
		return nil, types.ErrUnauthorized
	}

	userID, found, err := e.bots.BotUserIDByTokenHash(r.Context(), HashBotToken(token))
	if err != nil {
		return nil, types.New(types.KindInternal, "database error", err)
	}
	if !found {
		slog.DebugContext(r.Context(), "unknown bot token", "token", logging.RedactToken(token))
		return nil, types.ErrUnauthorized
	}
	return &Principal{UserID: userID, Bot: true}, nil
}

// ResolveUser authenticates a human session or, failing that for any
// reason, a bot token. When both fail the result is Unauthorized.
func (e *Extractor) ResolveUser(r *http.Request) (*Principal, error) {
	p, sessionErr := e.resolveSession(r)
	if sessionErr == nil {
		return p, nil
	}

	p, botErr := e.resolveBot(r)
	if botErr == nil {
		return p, nil
	}

	for _, err := range []error{sessionErr, botErr} {
		if types.KindOf(err) == types.KindInternal {
			slog.WarnContext(r.Context(), "credential lookup failed", "error", err)
		}
	}
	return nil, types.ErrUnauthorized
}

// ResolveAdmin authenticates a human session whose user carries the
// administrator flag. Bot tokens are never accepted.
func (e *Extractor) ResolveAdmin(r *http.Request) (*Principal, error) {
	p, err := e.resolveSession(r)
	if err != nil {
		return nil, err
	}

	flags, found, err := e.users.UserFlags(r.Context(), p.UserID)
	if err != nil {
		return nil, types.New(types.KindInternal, "database error", err)
	}
	if !found {
		return nil, types.ErrUnauthorized
	}
	if !IsAdmin(flags) {
		return nil, types.ErrForbidden
	}
	return p, nil
}
