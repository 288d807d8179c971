package web

import (
	"net/http"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/session"
)

// sessionID returns the caller's session ID from the cookie.
func (s *Server) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(s.cfg.Session.CookieName)
	if err != nil || c.Value == "" {
		return "", session.ErrNotFound
	}
	return c.Value, nil
}

// ensureSession returns the caller's live session ID or a fresh one when the
// cookie is missing or names no live session. The cookie is always re-sent
// so its lifetime follows the server-side idle timer.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	id, err := s.sessionID(r)
	if err != nil || !s.store.Has(id) {
		id = session.NewID()
	}
	s.setSessionCookie(w, id, int(s.cfg.Session.IdleTimeout.Seconds()))
	return id
}

func (s *Server) clearSession(w http.ResponseWriter) {
	s.setSessionCookie(w, "", -1)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// snapshot returns the caller's session state.
func (s *Server) snapshot(r *http.Request) (session.View, error) {
	id, err := s.sessionID(r)
	if err != nil {
		return session.View{}, err
	}
	return s.store.Snapshot(id)
}
