package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A session token authenticates API requests; a reset token
// authorizes exactly one password overwrite. The purpose claim keeps the two
// from being interchangeable.
const (
	PurposeSession = "session"
	PurposeReset   = "password-reset"
)

var (
	// ErrTokenExpired is returned for structurally valid tokens past their
	// expiry. Kept distinct so clients can tell expiry from tampering.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed covers every other verification failure: bad
	// signature, wrong shape, wrong purpose.
	ErrTokenMalformed = errors.New("invalid token")
)

const (
	tokenIssuer   = "taskpad"
	tokenAudience = "taskpad-api"
)

// Claims are the JWT claims carried by every taskpad token.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	Purpose string `json:"purpose"`
}

// TokenManager issues and verifies signed tokens. It holds the HMAC secret;
// construction happens once at startup after config validates the secret.
type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenManager creates a TokenManager signing with the given secret.
func NewTokenManager(secret string, sessionTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// IssueSession creates a session token for the given user.
func (tm *TokenManager) IssueSession(userID string) (string, error) {
	return tm.issue(userID, PurposeSession, tm.sessionTTL)
}

// IssueReset creates a password-reset token bound to the given user.
func (tm *TokenManager) IssueReset(userID string) (string, error) {
	return tm.issue(userID, PurposeReset, tm.resetTTL)
}

func (tm *TokenManager) issue(userID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:  userID,
		Purpose: purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Verify checks signature, expiry and purpose, returning the embedded user
// id. Failures are collapsed into ErrTokenExpired or ErrTokenMalformed.
func (tm *TokenManager) Verify(tokenString, purpose string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrTokenMalformed
	}
	if claims.Purpose != purpose || claims.UserID == "" {
		return "", ErrTokenMalformed
	}

	return claims.UserID, nil
}
