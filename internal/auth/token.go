package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// KindAuth is the only session capability issued today.
const KindAuth = "auth"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongKind    = errors.New("unexpected token kind")
)

type Claims struct {
	UserID string `json:"sub"`
	Kind   string `json:"typ"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens. Verification is purely
// cryptographic; whether a token is still an active session is the session
// store's call, so removing a session revokes the token immediately.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *Manager) Issue(userID string) (raw string, jti string, err error) {
	now := time.Now().UTC()
	jti = uuid.NewString()

	claims := Claims{
		UserID: userID,
		Kind:   KindAuth,
		JTI:    jti,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	raw, err = token.SignedString(m.secret)

	return
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != KindAuth {
		return nil, ErrWrongKind
	}

	return claims, nil
}

// Deterministic HMAC hash (server-side pepper = signing secret bytes).
// The session store keeps this, never the raw token.
func (m *Manager) HashSessionToken(raw string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
