// Package auth validates bearer tokens issued by the external auth service.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"rental-manager/internal/config"
)

const userIDKey = "user_id"

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks HMAC-signed tokens against a shared secret. exp is
// enforced only when the token carries one.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(cfg config.AuthConfig) *Verifier {
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	return &Verifier{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{alg})),
	}
}

// UserID parses tokenString and returns its subject as a user id
func (v *Verifier) UserID(tokenString string) (uint, error) {
	token, err := v.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	return subject(claims["sub"])
}

// subject accepts "42" or 42
func subject(sub interface{}) (uint, error) {
	switch v := sub.(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, v)
		}
		return uint(id), nil
	case float64:
		if v <= 0 || v != float64(uint64(v)) {
			return 0, fmt.Errorf("%w: bad subject %v", ErrInvalidToken, v)
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's id in the context
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}

		userID, err := v.UserID(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user's id set by Middleware
func UserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

// SetUserID stores id as the authenticated user
func SetUserID(c *gin.Context, id uint) {
	c.Set(userIDKey, id)
}

// Key is the rate limiter bucket for the authenticated user
func Key(c *gin.Context) string {
	return strconv.FormatUint(uint64(UserID(c)), 10)
}
