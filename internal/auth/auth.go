// Package auth keeps the single admin session and the shared admin credential.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/internal/tab"
	"github.com/sahilkr01/drcuberstore/pkg/config"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredential    = errors.New("invalid password")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrPasswordTooShort     = errors.New("password too short")
)

// Reply messages shown to the admin
const (
	MsgLoginSuccessful   = "Login successful"
	MsgInvalidPassword   = "Invalid password"
	MsgWrongCurrent      = "Current password is incorrect"
	MsgPasswordChanged   = "Password changed successfully"
	msgPasswordTooShortF = "Password must be at least %d characters"
)

// Admin is the identity every admin session carries
var Admin = model.AdminUser{
	ID:    "admin",
	Email: "admin@drcuber.com",
	Name:  "Admin",
	Role:  model.RoleAdmin,
}

// Service holds the current admin session of one tab
type Service struct {
	tab *tab.Tab
	cfg config.AuthConfig
	now func() time.Time
	log *zap.Logger

	mu         sync.RWMutex
	session    *model.Session
	credential string
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New restores the persisted credential and session. An expired or unreadable
// session is deleted.
func New(ctx context.Context, t *tab.Tab, cfg config.AuthConfig, log *zap.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		tab:        t,
		cfg:        cfg,
		now:        time.Now,
		log:        log,
		credential: cfg.DefaultPassword,
	}
	for _, opt := range opts {
		opt(s)
	}

	saved, ok, err := t.Get(ctx, model.AdminPasswordKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin credential: %w", err)
	}
	if ok && saved != "" {
		s.credential = saved
	}

	raw, ok, err := t.Get(ctx, model.AdminSessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin session: %w", err)
	}
	if ok {
		session, err := parseSession(raw)
		switch {
		case err != nil:
			log.Warn("Discarding unreadable admin session", zap.Error(err))
			s.discardSession(ctx)
		case !session.Valid(s.now()):
			log.Info("Discarding expired admin session")
			prometheus.RecordAuthOperation("session_expired")
			s.discardSession(ctx)
		default:
			s.session = &session
		}
	}

	t.Watch(model.AdminSessionKey, s.onSessionChanged)
	t.Watch(model.AdminPasswordKey, s.onCredentialChanged)
	return s, nil
}

func parseSession(raw string) (model.Session, error) {
	var session model.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return model.Session{}, err
	}
	if session.User.ID == "" {
		return model.Session{}, errors.New("session without user")
	}
	return session, nil
}

func (s *Service) discardSession(ctx context.Context) {
	if err := s.tab.Remove(ctx, model.AdminSessionKey); err != nil {
		logger.Scoped(ctx, s.log).Warn("Failed to remove admin session", zap.Error(err))
	}
}

// digest maps a password of any length to the fixed-size input bcrypt hashes.
// bcrypt itself rejects inputs longer than 72 bytes.
func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// hashPassword returns the stored form of a new credential
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// matches compares password with the stored credential. Credentials written by this
// service are bcrypt hashes; any other stored value is a plain password.
func (s *Service) matches(password string) bool {
	if _, err := bcrypt.Cost([]byte(s.credential)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(s.credential), digest(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.credential), []byte(password)) == 1
}

// Login opens a session when password matches the admin credential
func (s *Service) Login(ctx context.Context, password string) (model.Session, error) {
	prometheus.LoginCounter.Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.matches(password) {
		prometheus.RecordAuthError("invalid_credential")
		return model.Session{}, ErrInvalidCredential
	}

	session := model.Session{
		ID:     uuid.New().String(),
		User:   Admin,
		Expiry: s.now().Add(s.cfg.SessionTTL).UnixMilli(),
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.tab.Set(ctx, model.AdminSessionKey, string(raw)); err != nil {
		return model.Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	s.session = &session
	prometheus.RecordAuthOperation("login")
	logger.Scoped(ctx, s.log).Info("Admin logged in", zap.String("session_id", session.ID))
	return session, nil
}

// Logout ends the session. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tab.Remove(ctx, model.AdminSessionKey); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	s.session = nil
	prometheus.RecordAuthOperation("logout")
	return nil
}

// ChangePassword replaces the admin credential. Open sessions stay valid.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.matches(current) {
		prometheus.RecordAuthError("wrong_current_password")
		return ErrWrongCurrentPassword
	}
	if utf8.RuneCountInString(next) < s.cfg.MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := hashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.tab.Set(ctx, model.AdminPasswordKey, hash); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	s.credential = hash
	prometheus.RecordAuthOperation("password_change")
	return nil
}

// Current returns the active session. A session found expired is evicted.
func (s *Service) Current(ctx context.Context) (model.Session, bool) {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	if session == nil {
		return model.Session{}, false
	}
	if session.Valid(s.now()) {
		return *session, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.ID == session.ID {
		s.session = nil
		s.discardSession(ctx)
		prometheus.RecordAuthOperation("session_expired")
	}
	return model.Session{}, false
}

// TTL returns how long a new session lasts
func (s *Service) TTL() time.Duration {
	return s.cfg.SessionTTL
}

// IsAuthenticated reports whether a valid session exists
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Current(ctx)
	return ok
}

// IsAdmin reports whether the active session belongs to an admin
func (s *Service) IsAdmin(ctx context.Context) bool {
	session, ok := s.Current(ctx)
	return ok && session.User.Role == model.RoleAdmin
}

// Message returns the reply shown for err
func (s *Service) Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredential):
		return MsgInvalidPassword
	case errors.Is(err, ErrWrongCurrentPassword):
		return MsgWrongCurrent
	case errors.Is(err, ErrPasswordTooShort):
		return fmt.Sprintf(msgPasswordTooShortF, s.cfg.MinPasswordLength)
	default:
		return err.Error()
	}
}

func (s *Service) onSessionChanged(ev notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Removed() {
		s.session = nil
		return
	}
	session, err := parseSession(*ev.NewValue)
	if err != nil || !session.Valid(s.now()) {
		s.session = nil
		return
	}
	s.session = &session
}

func (s *Service) onCredentialChanged(ev notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Removed() || *ev.NewValue == "" {
		s.credential = s.cfg.DefaultPassword
		return
	}
	s.credential = *ev.NewValue
}
