// Package session holds the signed-in user's state: the backend token and the
// denormalized user fields, persisted in the key-value store under one
// namespace per session, written at login and cleared at logout.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Storage keys, one value each per session namespace.
const (
	KeyAccessToken  = "accessToken"
	KeyUserName     = "userName"
	KeyUserEmail    = "userEmail"
	KeyUserRoleID   = "userRoleID"
	KeyUserRoleName = "userRoleName"
)

// ErrNoSession is returned when the session token is invalid or the session was cleared.
var ErrNoSession = errors.New("no active session")

// Session is the explicit session context handed to every component that needs it.
type Session struct {
	ID           string `json:"-"`
	AccessToken  string `json:"-"`
	UserName     string `json:"name"`
	UserEmail    string `json:"email"`
	UserRoleID   int    `json:"roleId"`
	UserRoleName string `json:"roleName"`
}

// IsAdmin reports whether the signed-in user holds the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && models.IsAdmin(s.UserRoleName)
}

// Authenticator exchanges credentials with the backend.
type Authenticator interface {
	Authenticate(creds models.Credentials) (*models.AuthResult, error)
}

// Manager creates, loads and clears sessions.
type Manager struct {
	repo   repositories.KVRepository
	auth   Authenticator
	secret []byte
	ttl    time.Duration
}

// NewManager creates a new Manager.
func NewManager(repo repositories.KVRepository, auth Authenticator, secret string, ttl time.Duration) *Manager {
	return &Manager{
		repo:   repo,
		auth:   auth,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL is how long an issued session token stays valid.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Login authenticates against the backend, persists the session keys and
// returns the session with its signed token.
func (m *Manager) Login(creds models.Credentials) (*Session, string, error) {
	if err := validation.Struct(creds); err != nil {
		return nil, "", err
	}
	res, err := m.auth.Authenticate(creds)
	if err != nil {
		return nil, "", fmt.Errorf("login failed: %w", err)
	}

	s := &Session{
		ID:           uuid.New().String(),
		AccessToken:  res.Token,
		UserName:     res.Name,
		UserEmail:    res.Email,
		UserRoleID:   res.Role.ID,
		UserRoleName: res.Role.Name,
	}
	values := map[string]string{
		KeyAccessToken:  s.AccessToken,
		KeyUserName:     s.UserName,
		KeyUserEmail:    s.UserEmail,
		KeyUserRoleID:   strconv.Itoa(s.UserRoleID),
		KeyUserRoleName: s.UserRoleName,
	}
	for k, v := range values {
		if err := m.repo.Set(s.ID, k, v); err != nil {
			// Do not leave a half-written session behind.
			if clearErr := m.repo.DeleteNamespace(s.ID); clearErr != nil {
				log.Printf("Error clearing partial session %s: %v", s.ID, clearErr)
			}
			return nil, "", fmt.Errorf("failed to store session: %w", err)
		}
	}

	token, err := m.issue(s.ID)
	if err != nil {
		return nil, "", err
	}
	log.WithFields(log.Fields{"session": s.ID, "role": s.UserRoleName}).Info("session started")
	return s, token, nil
}

// Load reads a session back from storage.
func (m *Manager) Load(id string) (*Session, error) {
	values, err := m.repo.List(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	token := values[KeyAccessToken]
	if token == "" {
		return nil, ErrNoSession
	}
	roleID, _ := strconv.Atoi(values[KeyUserRoleID])
	return &Session{
		ID:           id,
		AccessToken:  token,
		UserName:     values[KeyUserName],
		UserEmail:    values[KeyUserEmail],
		UserRoleID:   roleID,
		UserRoleName: values[KeyUserRoleName],
	}, nil
}

// Logout clears every key of the session.
func (m *Manager) Logout(id string) error {
	if err := m.repo.DeleteNamespace(id); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Resolve validates a signed session token and loads the session it names.
func (m *Manager) Resolve(tokenString string) (*Session, error) {
	claims, err := m.validate(tokenString)
	if err != nil {
		return nil, err
	}
	id, _ := claims["sid"].(string)
	if id == "" {
		return nil, ErrNoSession
	}
	return m.Load(id)
}

func (m *Manager) issue(id string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": time.Now().Add(m.ttl).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) validate(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", ErrNoSession, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("%w: invalid token", ErrNoSession)
}
