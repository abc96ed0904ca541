package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnauthenticated = errors.New("user is not authenticated")

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID    int
	Email string
}

// Context is the auth result handed to every operation: either Anonymous or
// Authenticated. Operations that need a caller call Identity and fail with
// ErrUnauthenticated on the anonymous variant.
type Context struct {
	user *Identity
}

func Anonymous() Context {
	return Context{}
}

func Authenticated(id Identity) Context {
	return Context{user: &id}
}

func (c Context) IsAuthenticated() bool {
	return c.user != nil
}

func (c Context) Identity() (Identity, error) {
	if c.user == nil {
		return Identity{}, ErrUnauthenticated
	}
	return *c.user, nil
}

type ctxKey struct{}

// NewContext attaches the auth context to a request context.
func NewContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// FromContext returns the attached auth context, or Anonymous if none was set.
func FromContext(ctx context.Context) Context {
	if ac, ok := ctx.Value(ctxKey{}).(Context); ok {
		return ac
	}
	return Anonymous()
}

type tokenClaims struct {
	UserID int    `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed bearer tokens.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

func (tm *TokenManager) Issue(id Identity) (string, error) {
	claims := tokenClaims{
		UserID: id.ID,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) Verify(raw string) (Identity, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{ID: claims.UserID, Email: claims.Email}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
