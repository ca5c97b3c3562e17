package oauth

import (
	"context"
	"log/slog"
	"time"

	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
	"github.com/jamesprial/rs-introspect/internal/oauth/internal/token"
	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
)

// introspector is satisfied by *introspect.Client.
type introspector interface {
	Introspect(ctx context.Context, tok token.BearerToken) (map[string]any, error)
}

// VerifierOption customizes a Verifier built by NewVerifier.
type VerifierOption func(*verifier)

// WithClock replaces time.Now as the verifier's clock.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// verifier runs extraction, syntax validation, introspection and claims
// validation in that order, stopping at the first failure.
type verifier struct {
	client    introspector
	claimOpts []ClaimsOption
	now       func() time.Time
	logger    *slog.Logger
}

func newVerifier(client introspector, logger *slog.Logger, claimOpts []ClaimsOption, opts ...VerifierOption) *verifier {
	if client == nil {
		panic("introspection client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	v := &verifier{
		client:    client,
		claimOpts: claimOpts,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify implements Verifier.
func (v *verifier) Verify(ctx context.Context, header, query string) (*Claims, error) {
	const op = "Verify"

	tok, err := token.ExtractAndValidate(header, query)
	if err != nil {
		return nil, v.fail(op, err)
	}

	raw, err := v.client.Introspect(ctx, tok)
	if err != nil {
		return nil, v.fail(op, err)
	}

	claims, err := ClaimsFromRaw(raw, v.now(), v.claimOpts...)
	if err != nil {
		return nil, v.fail(op, err)
	}

	if !claims.Active() {
		return nil, v.fail(op, oautherr.NewInvalidTokenError(op, oautherr.DescNotActive, nil))
	}
	// Expiry is judged at verification time, not at fetch time.
	if exp, ok := claims.ExpiresAt(); ok && exp < v.now().Unix() {
		return nil, v.fail(op, oautherr.NewInvalidTokenError(op, oautherr.DescAccessTokenExpired, nil))
	}

	sub, _ := claims.Subject()
	v.logger.Debug("token verified", "sub", sub, "scope", claims.Scope())
	return claims, nil
}

// fail normalizes err into the verification taxonomy and logs it.
func (v *verifier) fail(op string, err error) error {
	ve := ierrors.Normalize(op, err)
	attrs := []any{"kind", ve.Kind, "description", ve.Description}
	if ve.Err != nil {
		attrs = append(attrs, "cause", ve.Err)
	}
	if ve.Kind == ierrors.KindInternalServerError {
		v.logger.Error("token verification failed", attrs...)
	} else {
		v.logger.Debug("token rejected", attrs...)
	}
	return ve
}
