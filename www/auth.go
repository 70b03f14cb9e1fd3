package www

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionName = "shopfloor_session"
	keyPlant    = "plant"
	keyUsername = "username"
)

type sessionStore struct {
	store *sessions.CookieStore
}

// newSessionStore keys the cookie store with the configured base64 secret,
// or a random key when none is set (sessions then end on restart).
func newSessionStore(secret string) *sessionStore {
	var key []byte
	if secret != "" {
		key, _ = base64.StdEncoding.DecodeString(secret)
	}
	if len(key) < 32 {
		key = make([]byte, 32)
		rand.Read(key)
	}
	cs := sessions.NewCookieStore(key)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   12 * 60 * 60, // one shift
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &sessionStore{store: cs}
}

func (s *sessionStore) get(r *http.Request) *sessions.Session {
	sess, _ := s.store.Get(r, sessionName)
	return sess
}

func (s *sessionStore) getString(r *http.Request, key string) (string, bool) {
	v, ok := s.get(r).Values[key].(string)
	return v, ok && v != ""
}

func (s *sessionStore) set(w http.ResponseWriter, r *http.Request, key, value string) error {
	sess := s.get(r)
	sess.Values[key] = value
	return sess.Save(r, w)
}

func (s *sessionStore) getPlant(r *http.Request) (string, bool) { return s.getString(r, keyPlant) }

func (s *sessionStore) getUser(r *http.Request) (string, bool) { return s.getString(r, keyUsername) }

func (s *sessionStore) setPlant(w http.ResponseWriter, r *http.Request, plant string) error {
	return s.set(w, r, keyPlant, plant)
}

func (s *sessionStore) setUser(w http.ResponseWriter, r *http.Request, username string) error {
	return s.set(w, r, keyUsername, username)
}

// clear ends the whole session, plant and admin alike.
func (s *sessionStore) clear(w http.ResponseWriter, r *http.Request) {
	sess := s.get(r)
	delete(sess.Values, keyPlant)
	delete(sess.Values, keyUsername)
	sess.Options.MaxAge = -1
	sess.Save(r, w)
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
