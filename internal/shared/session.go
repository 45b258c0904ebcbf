package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "madira:sess:"

// FlashMessage is a one-shot notice carried across a redirect, shown on the
// next page render and then discarded.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionManager issues cookie identified sessions whose state lives in Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session is the per-request view of one session. Mutations are buffered and
// written back to Redis by Commit.
type Session struct {
	ID        string
	userID    string
	values    map[string]string
	flashes   []FlashMessage
	isNew     bool
	dirty     bool
	destroyed bool
}

// sessionRecord is the wire form stored under the Redis key.
type sessionRecord struct {
	UserID  string            `json:"uid"`
	Values  map[string]string `json:"values,omitempty"`
	Flashes []FlashMessage    `json:"flashes,omitempty"`
}

// NewSessionManager constructs a SessionManager. ttl bounds both the Redis
// entry and the cookie lifetime.
func NewSessionManager(client *redis.Client, cookieName, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load resolves the request's session cookie against Redis. A missing cookie,
// or a cookie whose entry has expired, yields a fresh session.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.blankSession(), nil
		}
		return nil, fmt.Errorf("shared: read session cookie: %w", err)
	}

	raw, err := sm.client.Get(ctx, sessionKeyPrefix+cookie.Value).Bytes()
	if errors.Is(err, redis.Nil) {
		// Stale cookie with no server-side state; reuse the ID so the
		// browser's cookie stays valid.
		sess := sm.blankSession()
		sess.ID = cookie.Value
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("shared: load session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}
	return &Session{
		ID:      cookie.Value,
		userID:  record.UserID,
		values:  record.Values,
		flashes: record.Flashes,
	}, nil
}

// Commit writes pending session state to Redis and refreshes the cookie.
// Destroyed sessions are deleted server-side and the cookie is expired.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.drop(ctx, sess.ID); err != nil {
			return err
		}
		http.SetCookie(w, sm.cookie("", -1))
		return nil
	}

	if sess.ID == "" {
		sess.ID = sm.newSessionID()
	}

	if sess.dirty || sess.isNew {
		if err := sm.persist(ctx, sess); err != nil {
			return err
		}
		sess.dirty = false
		sess.isNew = false
	}

	http.SetCookie(w, sm.cookie(sess.ID, 0))
	return nil
}

// Renew moves the session to a fresh ID, discarding the old server-side
// entry. Called on privilege changes such as login so a pre-authentication
// cookie value can never name an authenticated session.
func (sm *SessionManager) Renew(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("shared: renew: no session")
	}
	previous := sess.ID
	sess.ID = sm.newSessionID()
	sess.dirty = true
	if previous == "" {
		return nil
	}
	return sm.drop(ctx, previous)
}

// Destroy marks the session for deletion at commit time.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) persist(ctx context.Context, sess *Session) error {
	record := sessionRecord{UserID: sess.userID, Values: sess.values, Flashes: sess.flashes}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("shared: encode session: %w", err)
	}
	if err := sm.client.Set(ctx, sessionKeyPrefix+sess.ID, data, sm.ttl).Err(); err != nil {
		return fmt.Errorf("shared: store session: %w", err)
	}
	return nil
}

func (sm *SessionManager) drop(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("shared: delete session: %w", err)
	}
	return nil
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge < 0 {
		c.MaxAge = maxAge
	} else {
		c.Expires = time.Now().Add(sm.ttl)
	}
	return c
}

func (sm *SessionManager) blankSession() *Session {
	return &Session{
		ID:     sm.newSessionID(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
	}
}

func (sm *SessionManager) newSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	for i := range b {
		if len(sm.secret) > 0 {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value, or "" when absent.
func (s *Session) Get(key string) string {
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// SetUser associates the session with a user ID.
func (s *Session) SetUser(id string) {
	s.userID = id
	s.dirty = true
}

// User returns the associated user ID, or "" for anonymous sessions.
func (s *Session) User() string {
	return s.userID
}

// AddFlash queues a flash message. It stays in the session until a later
// request pops it, so it survives the redirect that follows a form post.
func (s *Session) AddFlash(msg FlashMessage) {
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlash removes and returns the oldest flash message, or nil.
func (s *Session) PopFlash() *FlashMessage {
	if len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}
