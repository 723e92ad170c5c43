package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrNotConfigured      = errors.New("receptionist credentials not configured")
)

const RoleReceptionist = "receptionist"

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Gate verifies receptionist credentials and issues signed session
// tokens.
type Gate struct {
	username     string
	passwordHash string // bcrypt
	secret       []byte
	ttl          time.Duration
}

func NewGate(username, passwordHash string, secret []byte, ttl time.Duration) *Gate {
	return &Gate{
		username:     username,
		passwordHash: passwordHash,
		secret:       secret,
		ttl:          ttl,
	}
}

// Login checks the credential pair and returns a session token valid for
// the configured TTL.
func (g *Gate) Login(username, password string) (string, error) {
	if g.username == "" || g.passwordHash == "" || len(g.secret) == 0 {
		return "", ErrNotConfigured
	}
	if username != g.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Role: RoleReceptionist,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (g *Gate) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Role != RoleReceptionist {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword is a helper for provisioning RECEPTIONIST_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
