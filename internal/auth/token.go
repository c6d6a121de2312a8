package auth

import (
	"blog-admin/internal/config"
	"blog-admin/internal/models"
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"slices"
	"strings"
	"time"
)

const (
	issuer = "blog-admin"

	// ClaimsKey is the gin context key under which the session guard stores validated claims.
	ClaimsKey = "claims"
)

var (
	ErrNoToken  = errors.New("no token supplied")
	ErrNotAdmin = errors.New("principal is not an admin")
	ErrNoKey    = errors.New("no signing key")
)

// Settings holds everything needed to issue and check session tokens.
type Settings struct {
	SigningKey   []byte
	TokenTtl     time.Duration
	CookieName   string
	SecureCookie bool
}

func SettingsFromConfig(c *config.Configuration) Settings {
	return Settings{
		SigningKey:   []byte(c.Auth.SigningKey),
		TokenTtl:     c.Auth.TokenTtl.Duration,
		CookieName:   c.Auth.CookieName,
		SecureCookie: c.Auth.SecureCookie,
	}
}

type Claims struct {
	UserId   uint     `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.StandardClaims
}

func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Principal is an authenticated admin. Its fields are unexported so that the
// only way to obtain one is AdminFromClaims, which the session guard calls
// after validating a token.
type Principal struct {
	userId   uint
	username string
	roles    []string
}

func (p Principal) UserId() uint {
	return p.userId
}

func (p Principal) Username() string {
	return p.username
}

func (p Principal) Roles() []string {
	return slices.Clone(p.roles)
}

// AdminFromClaims turns validated claims into an admin Principal.
// Claims without the admin role yield ErrNotAdmin.
func AdminFromClaims(claims *Claims) (Principal, error) {
	if claims == nil || !claims.HasRole(models.RoleAdmin) {
		return Principal{}, ErrNotAdmin
	}
	return Principal{
		userId:   claims.UserId,
		username: claims.Username,
		roles:    slices.Clone(claims.Roles),
	}, nil
}

func GenerateToken(ctx context.Context, s Settings, userId uint, username string, roles []string) (string, time.Time, error) {
	if len(s.SigningKey) == 0 {
		return "", time.Time{}, ErrNoKey
	}

	now := time.Now()
	expiresAt := now.Add(s.TokenTtl)
	claims := Claims{
		userId,
		username,
		roles,
		jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.SigningKey)
	return tokenString, expiresAt, err
}

// ValidateToken parses tokenString, checks its signature and expiry and returns its claims.
func ValidateToken(tokenString string, key []byte) (*Claims, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	if len(tokenString) == 0 {
		return nil, ErrNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || len(strings.TrimSpace(token)) == 0 {
		return "", ErrNoToken
	}
	return strings.TrimSpace(token), nil
}

// ClaimsFrom returns the claims a session guard stored earlier in the chain.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
