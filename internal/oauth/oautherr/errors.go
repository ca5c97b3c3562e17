// Package oautherr provides verification error constructors.
// This package is separate from internal/oauth to avoid import cycles
// when internal packages need to create verification errors.
package oautherr

import (
	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
)

// Descriptions shared between packages and tests.
const (
	DescMissingToken         = "missing token"
	DescMultipleMethods      = "more than one method for including an access token used"
	DescNotBearer            = "the authorization header does not carry a bearer token"
	DescNotB64Token          = "the access token is not a valid b64token"
	DescNotActive            = "the access token is not active"
	DescAccessTokenExpired   = "the access token expired"
	DescTokenExpired         = "the token expired"
	DescInsufficientScope    = "no permission for this call with granted scope"
	DescInsufficientEntitled = "no permission for this call with granted entitlement"

	DescBuildRequest     = "unable to build introspection request"
	DescContactEndpoint  = "unable to contact introspection endpoint"
	DescUnexpectedStatus = "unexpected response code from introspection endpoint"
	DescDecodeResponse   = "unable to decode response from introspection endpoint"
	DescMalformedData    = "malformed response data from introspection endpoint"
)

// NewNoTokenError reports a request without any access token.
func NewNoTokenError(op string) *ierrors.VerificationError {
	return ierrors.New(op, ierrors.KindNoToken, DescMissingToken, nil)
}

// NewInvalidRequestError reports a malformed request.
func NewInvalidRequestError(op, description string) *ierrors.VerificationError {
	return ierrors.New(op, ierrors.KindInvalidRequest, description, nil)
}

// NewInvalidTokenError reports an unusable, inactive or expired token.
func NewInvalidTokenError(op, description string, err error) *ierrors.VerificationError {
	return ierrors.New(op, ierrors.KindInvalidToken, description, err)
}

// NewInsufficientScopeError reports a token missing a required scope.
func NewInsufficientScopeError(op string) *ierrors.VerificationError {
	return ierrors.New(op, ierrors.KindInsufficientScope, DescInsufficientScope, nil)
}

// NewInsufficientEntitlementError reports a token missing a required entitlement.
func NewInsufficientEntitlementError(op string) *ierrors.VerificationError {
	return ierrors.New(op, ierrors.KindInsufficientEntitlement, DescInsufficientEntitled, nil)
}

// NewInternalError reports a configuration, transport, decoding or
// response validation failure. err is kept for logging only.
func NewInternalError(op, description string, err error) *ierrors.VerificationError {
	return ierrors.New(op, ierrors.KindInternalServerError, description, err)
}
