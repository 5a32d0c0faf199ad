package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionName       = "wheeldeal_session"
	sessionCtxKey     = "httpserver.session"
	sessionOrderNoKey = "order_no"
)

// cookieSession adapts a gorilla session to cart.Session.
type cookieSession struct {
	s     *sessions.Session
	dirty bool
}

func (cs *cookieSession) Get(key string) (string, bool) {
	v, ok := cs.s.Values[key].(string)
	return v, ok
}

func (cs *cookieSession) Set(key, value string) {
	cs.s.Values[key] = value
	cs.dirty = true
}

func (cs *cookieSession) Delete(key string) {
	if _, ok := cs.s.Values[key]; ok {
		delete(cs.s.Values, key)
		cs.dirty = true
	}
}

func newCookieStore(cfg Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// sessionMiddleware loads the shopper session. A cookie that fails to
// decode starts a fresh session.
func sessionMiddleware(store sessions.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := store.Get(c.Request, sessionName)
		if err != nil {
			logger.Debug("session reset", zap.Error(err))
		}
		c.Set(sessionCtxKey, &cookieSession{s: s})
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *cookieSession {
	v, ok := c.Get(sessionCtxKey)
	if !ok {
		return nil
	}
	cs, _ := v.(*cookieSession)
	return cs
}

// commitSession writes the session cookie if anything changed. It must run
// before the response body is written.
func commitSession(c *gin.Context) error {
	cs := sessionFrom(c)
	if cs == nil || !cs.dirty {
		return nil
	}
	if err := cs.s.Save(c.Request, c.Writer); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	cs.dirty = false
	return nil
}
