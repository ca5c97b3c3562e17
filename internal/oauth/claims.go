package oauth

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
)

// DefaultEntitlementClaim is the proprietary introspection key carrying entitlements.
const DefaultEntitlementClaim = "x-entitlement"

// ExtensionClaim is passed through unvalidated and exposed by Claims.Extension.
const ExtensionClaim = "x-ext"

// RawResponse is a decoded introspection response. Numbers are expected as
// json.Number but plain Go integers and integral floats are accepted too.
type RawResponse map[string]any

// ClaimsOption customizes claims construction.
type ClaimsOption func(*claimsOptions)

type claimsOptions struct {
	entitlementClaim string
}

// WithEntitlementClaim sets the key entitlements are read from.
func WithEntitlementClaim(name string) ClaimsOption {
	return func(o *claimsOptions) {
		if name != "" {
			o.entitlementClaim = name
		}
	}
}

type optString struct {
	value string
	ok    bool
}

// Claims is the validated, read-only view of an introspection response.
// An inactive token exposes no optional field at all.
type Claims struct {
	active bool

	exp, iat       int64
	hasExp, hasIat bool

	scopeRaw optString
	scopes   []string

	clientID  optString
	subject   optString
	tokenType optString

	audience  jwt.ClaimStrings
	audSingle bool

	entitlements    []string
	hasEntitlements bool

	ext    any
	hasExt bool
}

// ClaimsFromRaw validates raw at time now and builds Claims. JSON null
// counts as absent. Checks run in a fixed order and the first failure wins:
// active, exp, iat, iat vs now, exp vs iat, exp vs now, then (for active
// tokens only) scope and entitlements.
func ClaimsFromRaw(raw RawResponse, now time.Time, opts ...ClaimsOption) (*Claims, error) {
	const op = "ClaimsFromRaw"

	o := claimsOptions{entitlementClaim: DefaultEntitlementClaim}
	for _, opt := range opts {
		opt(&o)
	}

	active, ok := lookup(raw, "active").(bool)
	if !ok {
		return nil, oautherr.NewInternalError(op, "active key should be set and its value a boolean", nil)
	}

	exp, hasExp, ok := timestamp(lookup(raw, "exp"))
	if !ok {
		return nil, oautherr.NewInternalError(op, "exp value must be positive integer", nil)
	}
	iat, hasIat, ok := timestamp(lookup(raw, "iat"))
	if !ok {
		return nil, oautherr.NewInternalError(op, "iat value must be positive integer", nil)
	}

	nowUnix := now.Unix()
	if hasIat && iat > nowUnix {
		return nil, oautherr.NewInternalError(op, "token issued in the future", nil)
	}
	if hasExp && hasIat && exp < iat {
		return nil, oautherr.NewInternalError(op, "token expired before it was issued", nil)
	}
	if hasExp && exp < nowUnix {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.DescTokenExpired, nil)
	}

	if !active {
		return &Claims{}, nil
	}

	c := &Claims{
		active: true,
		exp:    exp,
		hasExp: hasExp,
		iat:    iat,
		hasIat: hasIat,
	}

	if v := lookup(raw, "scope"); v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, oautherr.NewInternalError(op, "scope must be string", nil)
		}
		c.scopeRaw = optString{value: s, ok: true}
		c.scopes = splitUnique(strings.Split(s, " "))
	}

	if v := lookup(raw, o.entitlementClaim); v != nil {
		ents, ok := entitlementList(v)
		if !ok {
			return nil, oautherr.NewInternalError(op, "entitlement value must be a string or an array of strings", nil)
		}
		c.entitlements = ents
		c.hasEntitlements = true
	}

	c.clientID = stringClaim(raw, "client_id")
	c.subject = stringClaim(raw, "sub")
	c.tokenType = stringClaim(raw, "token_type")
	c.audience, c.audSingle = audienceClaim(lookup(raw, "aud"))

	if v := lookup(raw, ExtensionClaim); v != nil {
		c.ext = v
		c.hasExt = true
	}

	return c, nil
}

func lookup(raw RawResponse, key string) any {
	if raw == nil {
		return nil
	}
	return raw[key]
}

// timestamp reports the value as seconds since the epoch. present is false
// for a missing key; ok is false for anything but a non-negative integer.
func timestamp(v any) (ts int64, present, ok bool) {
	switch n := v.(type) {
	case nil:
		return 0, false, true
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil || i < 0 {
			return 0, true, false
		}
		return i, true, true
	case float64:
		if n < 0 || n != math.Trunc(n) || n >= math.MaxInt64 {
			return 0, true, false
		}
		return int64(n), true, true
	case int:
		return int64(n), true, n >= 0
	case int64:
		return n, true, n >= 0
	default:
		return 0, true, false
	}
}

// entitlementList accepts a space-separated string or an array of strings.
func entitlementList(v any) ([]string, bool) {
	switch e := v.(type) {
	case string:
		return splitUnique(strings.Split(e, " ")), true
	case []string:
		return splitUnique(e), true
	case []any:
		out := make([]string, 0, len(e))
		for _, item := range e {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return splitUnique(out), true
	default:
		return nil, false
	}
}

// splitUnique drops empty and repeated entries, keeping first occurrence order.
func splitUnique(parts []string) []string {
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// stringClaim treats a wrongly typed value as absent.
func stringClaim(raw RawResponse, key string) optString {
	s, ok := lookup(raw, key).(string)
	return optString{value: s, ok: ok}
}

// audienceClaim accepts a string or an array of strings via jwt.ClaimStrings.
func audienceClaim(v any) (jwt.ClaimStrings, bool) {
	if v == nil {
		return nil, false
	}
	_, single := v.(string)
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var aud jwt.ClaimStrings
	if err := aud.UnmarshalJSON(b); err != nil || len(aud) == 0 {
		return nil, false
	}
	return aud, single
}

// Active reports whether the authorization server considers the token active.
func (c *Claims) Active() bool {
	return c != nil && c.active
}

// ExpiresAt returns exp in seconds since the epoch.
func (c *Claims) ExpiresAt() (int64, bool) {
	if !c.Active() || !c.hasExp {
		return 0, false
	}
	return c.exp, true
}

// IssuedAt returns iat in seconds since the epoch.
func (c *Claims) IssuedAt() (int64, bool) {
	if !c.Active() || !c.hasIat {
		return 0, false
	}
	return c.iat, true
}

// ExpirationTime returns exp as a *jwt.NumericDate, nil when absent.
func (c *Claims) ExpirationTime() *jwt.NumericDate {
	exp, ok := c.ExpiresAt()
	if !ok {
		return nil
	}
	return jwt.NewNumericDate(time.Unix(exp, 0))
}

// Scope returns the granted scopes in order, empty when absent.
func (c *Claims) Scope() []string {
	if !c.Active() {
		return []string{}
	}
	out := make([]string, len(c.scopes))
	copy(out, c.scopes)
	return out
}

// ScopeString returns the scope value exactly as introspected.
func (c *Claims) ScopeString() (string, bool) {
	if !c.Active() {
		return "", false
	}
	return c.scopeRaw.value, c.scopeRaw.ok
}

// ClientID returns client_id.
func (c *Claims) ClientID() (string, bool) {
	if !c.Active() {
		return "", false
	}
	return c.clientID.value, c.clientID.ok
}

// Subject returns sub.
func (c *Claims) Subject() (string, bool) {
	if !c.Active() {
		return "", false
	}
	return c.subject.value, c.subject.ok
}

// ResourceOwnerID is an alias for Subject.
func (c *Claims) ResourceOwnerID() (string, bool) {
	return c.Subject()
}

// Audience returns aud when it was a single string, or the only element of
// a one-element array.
func (c *Claims) Audience() (string, bool) {
	if !c.Active() || len(c.audience) != 1 {
		return "", false
	}
	return c.audience[0], true
}

// Audiences returns every aud value.
func (c *Claims) Audiences() jwt.ClaimStrings {
	if !c.Active() || len(c.audience) == 0 {
		return nil
	}
	out := make(jwt.ClaimStrings, len(c.audience))
	copy(out, c.audience)
	return out
}

// TokenType returns token_type.
func (c *Claims) TokenType() (string, bool) {
	if !c.Active() {
		return "", false
	}
	return c.tokenType.value, c.tokenType.ok
}

// Entitlements returns the granted entitlements, empty when absent.
func (c *Claims) Entitlements() []string {
	if !c.Active() {
		return []string{}
	}
	out := make([]string, len(c.entitlements))
	copy(out, c.entitlements)
	return out
}

// Extension returns the x-ext value as decoded.
func (c *Claims) Extension() (any, bool) {
	if !c.Active() || !c.hasExt {
		return nil, false
	}
	return c.ext, true
}

// HasScope reports whether scope was granted.
func (c *Claims) HasScope(scope string) bool {
	if !c.Active() {
		return false
	}
	for _, s := range c.scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAnyScope reports whether at least one of scopes was granted.
// Returns false for an empty list.
func (c *Claims) HasAnyScope(scopes ...string) bool {
	for _, s := range scopes {
		if c.HasScope(s) {
			return true
		}
	}
	return false
}

// HasAllScopes reports whether every one of scopes was granted.
// Returns true for an empty list.
func (c *Claims) HasAllScopes(scopes ...string) bool {
	for _, s := range scopes {
		if !c.HasScope(s) {
			return false
		}
	}
	return true
}

// RequireScope fails with insufficient_scope unless scope was granted.
func (c *Claims) RequireScope(scope string) error {
	if !c.HasScope(scope) {
		return oautherr.NewInsufficientScopeError("RequireScope")
	}
	return nil
}

// RequireAnyScope fails with insufficient_scope unless one of scopes was granted.
func (c *Claims) RequireAnyScope(scopes ...string) error {
	if !c.HasAnyScope(scopes...) {
		return oautherr.NewInsufficientScopeError("RequireAnyScope")
	}
	return nil
}

// RequireAllScopes fails with insufficient_scope unless every scope was granted.
func (c *Claims) RequireAllScopes(scopes ...string) error {
	if !c.HasAllScopes(scopes...) {
		return oautherr.NewInsufficientScopeError("RequireAllScopes")
	}
	return nil
}

// HasEntitlement reports whether entitlement was granted.
func (c *Claims) HasEntitlement(entitlement string) bool {
	if !c.Active() {
		return false
	}
	for _, e := range c.entitlements {
		if e == entitlement {
			return true
		}
	}
	return false
}

// HasAnyEntitlement reports whether at least one of entitlements was granted.
func (c *Claims) HasAnyEntitlement(entitlements ...string) bool {
	for _, e := range entitlements {
		if c.HasEntitlement(e) {
			return true
		}
	}
	return false
}

// RequireEntitlement fails with insufficient_entitlement unless entitlement was granted.
func (c *Claims) RequireEntitlement(entitlement string) error {
	if !c.HasEntitlement(entitlement) {
		return oautherr.NewInsufficientEntitlementError("RequireEntitlement")
	}
	return nil
}

// RequireAnyEntitlement fails with insufficient_entitlement unless one of
// entitlements was granted.
func (c *Claims) RequireAnyEntitlement(entitlements ...string) error {
	if !c.HasAnyEntitlement(entitlements...) {
		return oautherr.NewInsufficientEntitlementError("RequireAnyEntitlement")
	}
	return nil
}

// claimsJSON is the RFC 7662 shaped rendering of Claims.
type claimsJSON struct {
	Active       bool     `json:"active" yaml:"active"`
	Scope        *string  `json:"scope,omitempty" yaml:"scope,omitempty"`
	ClientID     *string  `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Subject      *string  `json:"sub,omitempty" yaml:"sub,omitempty"`
	Audience     any      `json:"aud,omitempty" yaml:"aud,omitempty"`
	TokenType    *string  `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	ExpiresAt    *int64   `json:"exp,omitempty" yaml:"exp,omitempty"`
	IssuedAt     *int64   `json:"iat,omitempty" yaml:"iat,omitempty"`
	Entitlements []string `json:"entitlements,omitempty" yaml:"entitlements,omitempty"`
	Extension    any      `json:"x-ext,omitempty" yaml:"x-ext,omitempty"`
}

func (c *Claims) view() claimsJSON {
	v := claimsJSON{Active: c.Active()}
	if !v.Active {
		return v
	}
	opt := func(s optString) *string {
		if !s.ok {
			return nil
		}
		return &s.value
	}
	v.Scope = opt(c.scopeRaw)
	v.ClientID = opt(c.clientID)
	v.Subject = opt(c.subject)
	v.TokenType = opt(c.tokenType)
	if c.hasExp {
		exp := c.exp
		v.ExpiresAt = &exp
	}
	if c.hasIat {
		iat := c.iat
		v.IssuedAt = &iat
	}
	switch {
	case c.audSingle && len(c.audience) == 1:
		v.Audience = c.audience[0]
	case len(c.audience) > 0:
		v.Audience = []string(c.Audiences())
	}
	if c.hasEntitlements {
		v.Entitlements = c.Entitlements()
	}
	if c.hasExt {
		v.Extension = c.ext
	}
	return v
}

// MarshalJSON renders the exposed fields as an RFC 7662 style object.
func (c *Claims) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.view())
}

// MarshalYAML renders the same fields as MarshalJSON.
func (c *Claims) MarshalYAML() (any, error) {
	return c.view(), nil
}
