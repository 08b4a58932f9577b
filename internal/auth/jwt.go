package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/authapi/apiserver/types"
)

const defaultTokenTTL = 8 * time.Hour

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong issuer or audience, expired, or malformed.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the identity facts embedded in a bearer token. Subject is
// the user's email; UID is the user id. Validity is determined entirely by
// the signature and expiry — no server-side session state exists.
type Claims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

// TokenManager issues and verifies HMAC-SHA256 signed bearer tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	tokenTTL time.Duration
}

func NewTokenManager(secret, issuer, audience string) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		tokenTTL: defaultTokenTTL,
	}
}

// Issue mints a signed token for the user, valid for eight hours.
func (m *TokenManager) Issue(user types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			ID:        uuid.NewString(),
		},
		UID: user.ID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string. Expiry is enforced with zero
// clock-skew tolerance, and only HMAC-signed tokens are accepted.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
