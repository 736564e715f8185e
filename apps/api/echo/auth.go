package echoapi

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/session"
	"github.com/profconnect/backend/core/teacher"
)

const (
	sessionCookieName = "profconnect_session"
	contextSessionKey = "session"
	contextObjectKey  = "object"
)

// sessionAuth guards mutating endpoints. The cookie only ever carries the
// securecookie-signed opaque token; everything else lives in the server-side
// session store.
type sessionAuth struct {
	store  session.Store
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
}

func newSessionAuth(conf *core.Config, store session.Store) *sessionAuth {
	hashKey := sha256.Sum256([]byte(conf.SecretKey))
	return &sessionAuth{
		store:  store,
		codec:  securecookie.New(hashKey[:], nil),
		ttl:    conf.Server.SessionTTL,
		secure: !conf.Debug,
	}
}

// login transitions the request from anonymous to authenticated-as-teacher.
func (a *sessionAuth) login(ctx echo.Context, teacherID string) error {
	sess, err := a.store.New(teacherID)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	encoded, err := a.codec.Encode(sessionCookieName, sess.Token)
	if err != nil {
		return errors.Wrap(err, "encoding session cookie")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// logout destroys the server-side session and expires the cookie.
// Logging out while anonymous is a no-op.
func (a *sessionAuth) logout(ctx echo.Context) {
	if sess, err := a.current(ctx); err == nil {
		a.store.Delete(sess.Token)
	}
	a.clearCookie(ctx)
}

func (a *sessionAuth) clearCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
	})
}

// current resolves the request's session. A missing, tampered or expired
// cookie all look the same: not authenticated.
func (a *sessionAuth) current(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		return sess, nil
	}

	cookie, err := ctx.Cookie(sessionCookieName)
	if err != nil {
		return session.Session{}, errUnauthorized
	}
	var token string
	if err = a.codec.Decode(sessionCookieName, cookie.Value, &token); err != nil {
		return session.Session{}, errUnauthorized
	}
	sess, err := a.store.Get(token)
	if err != nil {
		return session.Session{}, errUnauthorized
	}
	ctx.Set(contextSessionKey, sess)
	return sess, nil
}

// require rejects anonymous requests.
func (a *sessionAuth) require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := a.current(ctx); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// requireOwner rejects anonymous requests and requests whose session does
// not belong to the teacher addressed by the path param; the target record
// is loaded into the context for the handler.
func (a *sessionAuth) requireOwner(param string, svc *teacher.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := a.current(ctx)
			if err != nil {
				return err
			}
			if ctx.Param(param) != sess.TeacherID {
				return errHttpForbidden
			}

			tr, err := svc.GetByID(sess.TeacherID)
			if err != nil {
				if errors.Cause(err) == teacher.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding teacher by ID")
			}
			ctx.Set(contextObjectKey, tr)
			return next(ctx)
		}
	}
}
