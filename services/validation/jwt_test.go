package validationsvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/session"
	validationsvc "github.com/trezcool/darasa/services/validation"
)

var secret = []byte("test-secret")

func makeToken(t *testing.T, key []byte, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("makeToken() failed: %v", err)
	}
	return token
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	ctx := context.Background()
	validator := validationsvc.NewJWTValidator(secret)
	usr := session.User{ID: "u1", Username: "alice"}

	tests := []struct {
		name  string
		token string
		usr   session.User
		want  bool
	}{
		{
			name:  "valid token for the session user",
			token: makeToken(t, secret, "u1", time.Now().Add(time.Hour)),
			usr:   usr,
			want:  true,
		},
		{
			name:  "expired token",
			token: makeToken(t, secret, "u1", time.Now().Add(-time.Hour)),
			usr:   usr,
		},
		{
			name:  "wrong signature",
			token: makeToken(t, []byte("other-secret"), "u1", time.Now().Add(time.Hour)),
			usr:   usr,
		},
		{
			name:  "token issued to another user",
			token: makeToken(t, secret, "u2", time.Now().Add(time.Hour)),
			usr:   usr,
		},
		{
			name:  "garbage token",
			token: "not.a.jwt",
			usr:   usr,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := validator.ValidateToken(ctx, tt.token, tt.usr)

			// invalid is a verdict, never an error
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestChainValidator_shortCircuits(t *testing.T) {
	ctx := context.Background()
	usr := session.User{ID: "u1"}

	var secondRan bool
	first := session.ValidatorFunc(func(ctx context.Context, token string, usr session.User) (bool, error) {
		return false, nil
	})
	second := session.ValidatorFunc(func(ctx context.Context, token string, usr session.User) (bool, error) {
		secondRan = true
		return true, nil
	})

	ok, err := validationsvc.NewChainValidator(first, second).ValidateToken(ctx, "tok", usr)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, secondRan)
}

func TestChainValidator_allPass(t *testing.T) {
	ctx := context.Background()
	pass := session.ValidatorFunc(func(ctx context.Context, token string, usr session.User) (bool, error) {
		return true, nil
	})

	ok, err := validationsvc.NewChainValidator(pass, pass).ValidateToken(ctx, "tok", session.User{})

	assert.NoError(t, err)
	assert.True(t, ok)
}
