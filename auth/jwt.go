package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// ErrNoSubject is returned for a valid token that carries no user id.
var ErrNoSubject = errors.New("token has no subject")

// Identity is the stable player identity carried by a token.
type Identity struct {
	UserID string
	Name   string
}

// Validator checks tokens against one issuer's keys.
type Validator struct {
	issuer  string
	keyfunc jwt.Keyfunc
	methods []string
}

// NewValidator fetches the JWKS at <baseURL>/.well-known/jwks.json and keeps
// it refreshed until ctx is done. An empty baseURL returns (nil, nil): the
// server then runs with guest identities only.
func NewValidator(ctx context.Context, baseURL string) (*Validator, error) {
	if baseURL == "" {
		return nil, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid auth base URL: %w", err)
	}
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{strings.TrimSuffix(baseURL, "/") + "/.well-known/jwks.json"})
	if err != nil {
		return nil, fmt.Errorf("loading JWKS: %w", err)
	}
	return NewValidatorWithKeyfunc(u.Scheme+"://"+u.Host, jwks.Keyfunc, "EdDSA"), nil
}

// NewValidatorWithKeyfunc builds a Validator from an existing key function.
func NewValidatorWithKeyfunc(issuer string, kf jwt.Keyfunc, methods ...string) *Validator {
	return &Validator{issuer: issuer, keyfunc: kf, methods: methods}
}

// Validate parses the token and returns the identity it carries.
func (v *Validator) Validate(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, v.keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods(v.methods))
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims")
	}
	id := UserIDFromClaims(claims)
	if id == "" {
		return Identity{}, ErrNoSubject
	}
	return Identity{UserID: id, Name: FirstNameFromClaims(claims)}, nil
}

// FromRequest validates the bearer token in the Authorization header, or the
// "token" query parameter browsers use for websocket upgrades. It returns an
// empty identity when no token was sent.
func (v *Validator) FromRequest(r *http.Request) (Identity, error) {
	token := BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" || v == nil {
		return Identity{}, nil
	}
	return v.Validate(token)
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}

// FirstNameFromClaims returns the first word of the "name" claim, or a fallback.
func FirstNameFromClaims(claims jwt.MapClaims) string {
	name, _ := claims["name"].(string)
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "Player"
	}
	return parts[0]
}

// UserIDFromClaims returns the user id from claims ("sub" or "id").
func UserIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
