package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims for our application
type Claims struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Email     string    `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the caller context attached to authenticated requests. The
// procedure layer treats it as opaque; only the email is inspected.
type Identity struct {
	ProfileID uuid.UUID
	Email     string
}

// AuthManager signs and validates session tokens.
type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

// UnprotectedRoutes defines routes that don't require a session token. The
// websocket endpoint authenticates via its token query parameter instead of
// the Authorization header.
var UnprotectedRoutes = map[string]bool{
	"/health":           true,
	"/session/register": true,
	"/session/login":    true,
	"/ws":               true,
}

// GenerateToken creates a new session token for the given profile
func (am *AuthManager) GenerateToken(profileID uuid.UUID, email string) (string, error) {
	expirationTime := time.Now().Add(am.ttl)

	claims := &Claims{
		ProfileID: profileID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "hivedesk-api",
			Subject:   profileID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(am.secret)
}

// ValidateToken validates the provided session token
func (am *AuthManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return am.secret, nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Middleware validates the Authorization header and injects the caller
// identity into the request context.
func (am *AuthManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UnprotectedRoutes[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := am.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := SetIdentity(r.Context(), &Identity{
			ProfileID: claims.ProfileID,
			Email:     claims.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Define a custom context key type to avoid collisions
type contextKey string

// IdentityKey is the key used to store the caller identity in the context
const IdentityKey contextKey = "identity"

// SetIdentity saves the caller identity in the request context
func SetIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFromContext retrieves the caller identity from the context
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*Identity)
	return identity, ok
}
