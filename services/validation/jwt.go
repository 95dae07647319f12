package validationsvc

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/session"
)

// JWTValidator validates tokens locally: signature, expiry and subject are
// checked against the shared signing secret without a network round-trip.
type JWTValidator struct {
	secret []byte
}

var _ session.TokenValidator = (*JWTValidator)(nil)

func NewJWTValidator(secret []byte) *JWTValidator {
	return &JWTValidator{secret: secret}
}

// ValidateToken never errors for a merely invalid token; any parse or
// verification failure is a plain (false, nil) verdict.
func (v *JWTValidator) ValidateToken(ctx context.Context, token string, usr session.User) (bool, error) {
	claims := new(jwt.RegisteredClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return false, nil
	}
	// the token must still belong to the session's user
	if usr.ID != "" && claims.Subject != usr.ID {
		return false, nil
	}
	return true, nil
}

func (v *JWTValidator) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return v.secret, nil
}
