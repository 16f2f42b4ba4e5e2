// Package auth manages user identities and the static API tokens that
// authenticate catalog and order requests.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
	"storefront/internal/store"
)

// ContextUserKey is the gin context key under which the middleware stores
// the authenticated user's ID.
const ContextUserKey = "auth.user_id"

var (
	// ErrInvalidCredentials is returned when username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages identities and tokens.
type Service struct {
	store store.Store
}

// NewService creates an auth service on top of a store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// CreateUser registers a new identity and mints its API token. Minting
// here, in the creation path itself, replaces the implicit on-create
// listener the surrounding framework would otherwise provide.
func (s *Service) CreateUser(ctx context.Context, username, email, password string) (*models.User, *models.Token, error) {
	if username == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	user := models.NewUser(username, email, hash)
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, nil, err
	}

	token := &models.Token{
		Key:     newTokenKey(),
		UserID:  user.ID,
		Created: time.Now().UTC(),
	}
	if err := s.store.SaveToken(ctx, token); err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User created, token minted")

	return user, token, nil
}

// ObtainToken exchanges a username and password for the user's token.
func (s *Service) ObtainToken(ctx context.Context, username, password string) (*models.Token, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.store.GetTokenByUser(ctx, user.ID)
}

// Middleware enforces Token-scheme authentication. Requests without a
// valid "Authorization: Token <key>" header are rejected with 401.
func (s *Service) Middleware() gin.HandlerFunc {
	const prefix = "Token "
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "authentication credentials were not provided",
			})
			return
		}
		key := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		token, err := s.store.GetTokenByKey(c.Request.Context(), key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "invalid token",
			})
			return
		}
		c.Set(ContextUserKey, token.UserID)
		c.Next()
	}
}

// newTokenKey returns a 40-character hex key.
func newTokenKey() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		panic("auth: reading random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
