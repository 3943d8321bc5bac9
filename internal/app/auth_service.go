// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"weightbot/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided password or identity was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordLoginDisabled indicates that no admin password hash is configured.
	ErrPasswordLoginDisabled = errors.New("password login disabled")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// SessionTTL is how long an admin session stays valid.
const SessionTTL = 24 * time.Hour

// PasswordSubject is the session subject for password logins.
const PasswordSubject = "admin"

// AuthService handles admin authentication and session management.
type AuthService struct {
	sessions     domain.SessionRepository
	passwordHash string
	emails       map[string]bool
	now          func() time.Time
}

// NewAuthService creates a new authentication service. passwordHash is a
// bcrypt hash; an empty hash disables password login. allowedEmails lists the
// identities accepted from SSO.
func NewAuthService(sessions domain.SessionRepository, passwordHash string, allowedEmails []string) *AuthService {
	emails := make(map[string]bool, len(allowedEmails))
	for _, e := range allowedEmails {
		if e = normalizeEmail(e); e != "" {
			emails[e] = true
		}
	}
	return &AuthService{
		sessions:     sessions,
		passwordHash: passwordHash,
		emails:       emails,
		now:          time.Now,
	}
}

// PasswordEnabled reports whether password login is configured.
func (s *AuthService) PasswordEnabled() bool {
	return s.passwordHash != ""
}

// Login checks the admin password and creates a session.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if !s.PasswordEnabled() {
		return "", ErrPasswordLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.createSession(ctx, PasswordSubject)
}

// LoginWithEmail creates a session for an identity already verified by SSO.
// The email must be on the allow-list.
func (s *AuthService) LoginWithEmail(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || !s.emails[email] {
		return "", ErrInvalidCredentials
	}
	return s.createSession(ctx, email)
}

func (s *AuthService) createSession(ctx context.Context, subject string) (string, error) {
	now := s.now().UTC()
	if err := s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return "", domain.WrapStore("delete expired sessions", err)
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	sess := domain.Session{Token: token, Subject: subject, ExpiresAt: now.Add(SessionTTL), CreatedAt: now}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return "", domain.WrapStore("create session", err)
	}
	return token, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return domain.WrapStore("delete session", s.sessions.DeleteSession(ctx, token))
}

// ValidateSession returns the session for token, deleting it when expired.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, domain.WrapStore("get session", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
