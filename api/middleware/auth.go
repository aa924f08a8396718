package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
)

const identityKey = "identity"

// Claims carried by arena bearer tokens
type Claims struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for identity. Used by tooling and tests;
// production tokens come from the login provider sharing the secret.
func IssueToken(secret string, identity entities.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: identity.Username,
		Avatar:   identity.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth validates the bearer JWT and stores the caller's identity in the context
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing token"})
			return
		}

		identity, err := parseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.WithError(err).Debug("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func parseToken(secret, raw string) (entities.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return entities.Identity{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return entities.Identity{}, errors.New("token has no subject")
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	return entities.Identity{
		UserID:    claims.Subject,
		Username:  username,
		AvatarURL: claims.Avatar,
	}, nil
}

// RegisterOnFirstUse opens a wallet for callers seen for the first time
func RegisterOnFirstUse(accounts interfaces.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if _, err := accounts.GetOrRegister(c.Request.Context(), identity); err != nil {
			log.WithFields(log.Fields{
				"accountID": identity.UserID,
				"error":     err,
			}).Error("Failed to load caller account")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "could not load account"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Auth
func IdentityFrom(c *gin.Context) entities.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(entities.Identity); ok {
			return identity
		}
	}
	return entities.Identity{}
}

// RequestLogger logs each request with logrus
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Debug("Request handled")
	}
}

// RequireAdmin lets only the configured admin user ids through. It must run after Auth.
func RequireAdmin(adminIDs []string) gin.HandlerFunc {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if _, ok := admins[identity.UserID]; !ok {
			log.WithField("userID", identity.UserID).Warn("Non-admin request for admin route")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "admin access required"})
			return
		}
		c.Next()
	}
}
