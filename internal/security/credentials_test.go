package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/classboard/internal/models"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCredentialsRoundTripPreservesRole(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	credentials := NewCredentials(testSecret, time.Hour, fixedClock(issuedAt))

	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin, models.RoleSuperadmin} {
		token, err := credentials.Issue("alice", role)
		if err != nil {
			t.Fatalf("Issue(%s) returned error: %v", role, err)
		}
		identity, err := credentials.Validate(token)
		if err != nil {
			t.Fatalf("Validate(%s) returned error: %v", role, err)
		}
		if identity.ActorID != "alice" || identity.Role != role {
			t.Fatalf("expected alice/%s, got %+v", role, identity)
		}
	}
}

func TestCredentialsValidateFailures(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	issuer := NewCredentials(testSecret, time.Hour, fixedClock(issuedAt))
	token, err := issuer.Issue("alice", models.RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	tamperedSignature := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	forgedRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Role: "janitor",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	tests := []struct {
		name      string
		validator *Credentials
		token     string
		want      error
	}{
		{name: "empty", validator: issuer, token: "", want: ErrCredentialMalformed},
		{name: "garbage", validator: issuer, token: "not-a-token", want: ErrCredentialMalformed},
		{name: "tampered signature", validator: issuer, token: tamperedSignature, want: ErrCredentialInvalid},
		{name: "other secret", validator: NewCredentials([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, fixedClock(issuedAt)), token: token, want: ErrCredentialInvalid},
		{name: "unknown role", validator: issuer, token: forgedRole, want: ErrCredentialInvalid},
		{name: "expired", validator: NewCredentials(testSecret, time.Hour, fixedClock(issuedAt.Add(2*time.Hour))), token: token, want: ErrCredentialExpired},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := test.validator.Validate(test.token)
			if !errors.Is(err, test.want) {
				t.Fatalf("Validate() error = %v, want %v", err, test.want)
			}
		})
	}
}

func TestCredentialsIssueRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	credentials := NewCredentials(testSecret, 0, nil)
	if credentials.TTL() != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %s", credentials.TTL())
	}
	if _, err := credentials.Issue("alice", models.Role("janitor")); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
	if _, err := credentials.Issue(" ", models.RoleUser); err == nil {
		t.Fatal("expected empty actor id to be rejected")
	}
}

func TestTemporaryPasswordUsesUnambiguousAlphabet(t *testing.T) {
	t.Parallel()

	for range 20 {
		password, err := TemporaryPassword()
		if err != nil {
			t.Fatalf("TemporaryPassword returned error: %v", err)
		}
		if len(password) != TemporaryPasswordLength {
			t.Fatalf("expected %d chars, got %q", TemporaryPasswordLength, password)
		}
		if strings.ContainsAny(password, "0O1Il") {
			t.Fatalf("password %q contains an ambiguous character", password)
		}
	}
}
