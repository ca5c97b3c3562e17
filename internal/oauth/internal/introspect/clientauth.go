package introspect

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client authentication methods toward the introspection endpoint.
const (
	AuthNone              = "none"
	AuthClientSecretBasic = "client_secret_basic"
	AuthPrivateKeyJWT     = "private_key_jwt"
	AuthClientCredentials = "client_credentials"
)

const (
	// #nosec G101 -- RFC 7523 assertion type URI, not a credential.
	clientAssertionTypeJWTBearer = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
	assertionLifetime            = time.Minute
)

// Authenticator adds resource server credentials to an introspection call.
// Credentials go either into the outgoing parameters or into the headers.
type Authenticator interface {
	Authenticate(ctx context.Context, params url.Values, header http.Header) error
}

// NoAuth sends the introspection request without client credentials.
type NoAuth struct{}

// Authenticate is a no-op.
func (NoAuth) Authenticate(context.Context, url.Values, http.Header) error {
	return nil
}

// ClientSecretBasic authenticates with HTTP Basic per RFC 6749 Section 2.3.1.
type ClientSecretBasic struct {
	ClientID     string
	ClientSecret string
}

// Authenticate sets the Authorization header. Both values are
// form-urlencoded before encoding as RFC 6749 requires.
func (a ClientSecretBasic) Authenticate(_ context.Context, _ url.Values, header http.Header) error {
	creds := url.QueryEscape(a.ClientID) + ":" + url.QueryEscape(a.ClientSecret)
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	return nil
}

// PrivateKeyJWT authenticates with a signed client assertion per RFC 7523.
type PrivateKeyJWT struct {
	clientID string
	audience string
	keyID    string
	key      any
	method   jwt.SigningMethod
	now      func() time.Time
}

// NewPrivateKeyJWT parses a PEM encoded RSA or EC private key and returns an
// authenticator whose assertions are addressed to audience, normally the
// introspection endpoint URL.
func NewPrivateKeyJWT(clientID, audience, keyID string, pemKey []byte) (*PrivateKeyJWT, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("introspect: private_key_jwt requires a client id")
	}

	key, method, err := parsePrivateKey(pemKey)
	if err != nil {
		return nil, err
	}

	return &PrivateKeyJWT{
		clientID: clientID,
		audience: audience,
		keyID:    keyID,
		key:      key,
		method:   method,
		now:      time.Now,
	}, nil
}

// Authenticate adds client_assertion_type and a freshly signed client_assertion.
func (a *PrivateKeyJWT) Authenticate(_ context.Context, params url.Values, _ http.Header) error {
	assertion, err := a.assertion()
	if err != nil {
		return err
	}
	params.Set("client_assertion_type", clientAssertionTypeJWTBearer)
	params.Set("client_assertion", assertion)
	return nil
}

func (a *PrivateKeyJWT) assertion() (string, error) {
	now := a.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    a.clientID,
		Subject:   a.clientID,
		Audience:  jwt.ClaimStrings{a.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
		ID:        uuid.NewString(),
	}

	tok := jwt.NewWithClaims(a.method, claims)
	if a.keyID != "" {
		tok.Header["kid"] = a.keyID
	}

	signed, err := tok.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("introspect: sign client assertion: %w", err)
	}
	return signed, nil
}

// Algorithm returns the JWS algorithm used for assertions.
func (a *PrivateKeyJWT) Algorithm() string {
	return a.method.Alg()
}

func parsePrivateKey(pemKey []byte) (any, jwt.SigningMethod, error) {
	if rsaKey, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey); err == nil {
		return rsaKey, jwt.SigningMethodRS256, nil
	}

	ecKey, err := jwt.ParseECPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, nil, errors.New("introspect: private key must be a PEM encoded RSA or EC key")
	}
	method, err := ecdsaMethod(ecKey)
	if err != nil {
		return nil, nil, err
	}
	return ecKey, method, nil
}

func ecdsaMethod(key *ecdsa.PrivateKey) (jwt.SigningMethod, error) {
	switch key.Curve {
	case elliptic.P256():
		return jwt.SigningMethodES256, nil
	case elliptic.P384():
		return jwt.SigningMethodES384, nil
	case elliptic.P521():
		return jwt.SigningMethodES512, nil
	default:
		return nil, fmt.Errorf("introspect: unsupported EC curve %s", key.Curve.Params().Name)
	}
}

// ClientCredentials authenticates with a bearer token obtained from the
// authorization server's token endpoint using the client_credentials grant.
type ClientCredentials struct {
	source oauth2.TokenSource
}

// NewClientCredentials builds an authenticator around a cached
// client_credentials token source. httpClient is used toward the token
// endpoint and may be nil.
func NewClientCredentials(cfg clientcredentials.Config, httpClient *http.Client) *ClientCredentials {
	ctx := context.Background()
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	return &ClientCredentials{source: cfg.TokenSource(ctx)}
}

// NewClientCredentialsFromSource wraps an existing token source.
func NewClientCredentialsFromSource(source oauth2.TokenSource) *ClientCredentials {
	return &ClientCredentials{source: source}
}

// Authenticate sets the Authorization header from the token source.
func (a *ClientCredentials) Authenticate(_ context.Context, _ url.Values, header http.Header) error {
	tok, err := a.source.Token()
	if err != nil {
		return fmt.Errorf("introspect: obtain client credentials token: %w", err)
	}
	header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	return nil
}

var (
	_ Authenticator = NoAuth{}
	_ Authenticator = ClientSecretBasic{}
	_ Authenticator = (*PrivateKeyJWT)(nil)
	_ Authenticator = (*ClientCredentials)(nil)
)
