package validationsvc

import (
	"context"

	"github.com/trezcool/darasa/core/session"
)

// ChainValidator runs validators in order and requires every verdict to pass.
// The first false or error short-circuits, so a cheap local check placed first
// spares the remote one.
type ChainValidator struct {
	validators []session.TokenValidator
}

var _ session.TokenValidator = (*ChainValidator)(nil)

func NewChainValidator(validators ...session.TokenValidator) *ChainValidator {
	return &ChainValidator{validators: validators}
}

func (v *ChainValidator) ValidateToken(ctx context.Context, token string, usr session.User) (bool, error) {
	for _, val := range v.validators {
		ok, err := val.ValidateToken(ctx, token, usr)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}
