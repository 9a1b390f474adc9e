// internal/app/system/auth/token.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const tokenIssuer = "acuerdo"

// Claims carried by an issued credential. The subject is the user's
// ObjectID hex; the jti links the token to its server-side session record.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager signs and parses bearer credentials (HS256).
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a TokenManager. The secret must be non-empty.
func NewTokenManager(secret string, expiry time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is empty")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry}, nil
}

// Issue signs a credential for the user. Returns the signed token, its
// token ID (jti), and its expiry.
func (m *TokenManager) Issue(userID primitive.ObjectID) (token, tokenID string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	tokenID = uuid.NewString()
	expiresAt = now.Add(m.expiry)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.Hex(),
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, tokenID, expiresAt, nil
}

// Parse validates a credential's signature and time claims and returns the
// user ID and token ID. Any failure, including expiry, comes back as a
// single opaque error; callers must not distinguish reasons.
func (m *TokenManager) Parse(credential string) (primitive.ObjectID, string, error) {
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return primitive.NilObjectID, "", ErrInvalidCredential
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return primitive.NilObjectID, "", ErrInvalidCredential
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, "", ErrInvalidCredential
	}
	return userID, claims.ID, nil
}

// Expiry returns the configured credential lifetime.
func (m *TokenManager) Expiry() time.Duration {
	return m.expiry
}
