package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/classboard/internal/models"
)

var (
	ErrCredentialMalformed = errors.New("credential malformed")
	ErrCredentialExpired   = errors.New("credential expired")
	ErrCredentialInvalid   = errors.New("credential invalid")
)

const DefaultTokenTTL = 24 * time.Hour

// Identity is what a validated credential asserts about its bearer.
type Identity struct {
	ActorID string
	Role    models.Role
}

type identityClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Credentials struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewCredentials builds an HS256 issuer/validator. A nil now falls back to
// time.Now and a non-positive ttl to DefaultTokenTTL.
func NewCredentials(secretKey []byte, ttl time.Duration, now func() time.Time) *Credentials {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Credentials{secretKey: secretKey, ttl: ttl, now: now}
}

func (credentials *Credentials) TTL() time.Duration {
	return credentials.ttl
}

func (credentials *Credentials) Issue(actorID string, role models.Role) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", errors.New("actor id is required")
	}
	if _, ok := models.ParseRole(string(role)); !ok {
		return "", fmt.Errorf("unknown role %q", role)
	}

	issuedAt := credentials.now()
	claims := identityClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(credentials.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(credentials.secretKey)
}

func (credentials *Credentials) Validate(rawToken string) (Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return Identity{}, ErrCredentialMalformed
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return credentials.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(credentials.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Identity{}, ErrCredentialMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrCredentialExpired
	default:
		return Identity{}, ErrCredentialInvalid
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrCredentialInvalid
	}
	return Identity{ActorID: claims.Subject, Role: role}, nil
}
