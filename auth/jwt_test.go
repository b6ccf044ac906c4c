package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("rehearsal-secret")

func testValidator() *Validator {
	return NewValidatorWithKeyfunc("https://auth.example", func(*jwt.Token) (any, error) {
		return testSecret, nil
	}, "HS256")
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func TestValidate(t *testing.T) {
	v := testValidator()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantID  string
		wantErr bool
	}{
		{"valid", jwt.MapClaims{"iss": "https://auth.example", "sub": "u1", "name": "Kohane Azusawa", "exp": exp}, "u1", false},
		{"id claim", jwt.MapClaims{"iss": "https://auth.example", "id": "u2", "exp": exp}, "u2", false},
		{"wrong issuer", jwt.MapClaims{"iss": "https://evil.example", "sub": "u1", "exp": exp}, "", true},
		{"expired", jwt.MapClaims{"iss": "https://auth.example", "sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, "", true},
		{"no subject", jwt.MapClaims{"iss": "https://auth.example", "exp": exp}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Validate(sign(t, tt.claims))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if id.UserID != tt.wantID {
				t.Errorf("UserID = %q, want %q", id.UserID, tt.wantID)
			}
		})
	}
}

func TestValidateNames(t *testing.T) {
	v := testValidator()
	id, err := v.Validate(sign(t, jwt.MapClaims{"iss": "https://auth.example", "sub": "u1", "name": "  Kohane Azusawa "}))
	if err != nil {
		t.Fatal(err)
	}
	if id.Name != "Kohane" {
		t.Errorf("Name = %q, want Kohane", id.Name)
	}
	_, err = v.Validate(sign(t, jwt.MapClaims{"iss": "https://auth.example"}))
	if !errors.Is(err, ErrNoSubject) {
		t.Errorf("err = %v, want ErrNoSubject", err)
	}
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	v := NewValidatorWithKeyfunc("https://auth.example", func(*jwt.Token) (any, error) {
		return testSecret, nil
	}, "EdDSA")
	if _, err := v.Validate(sign(t, jwt.MapClaims{"iss": "https://auth.example", "sub": "u1"})); err == nil {
		t.Error("HS256 token accepted by an EdDSA-only validator")
	}
}

func TestFromRequest(t *testing.T) {
	v := testValidator()
	token := sign(t, jwt.MapClaims{"iss": "https://auth.example", "sub": "u9"})

	r := httptest.NewRequest("GET", "/api/history", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if id, err := v.FromRequest(r); err != nil || id.UserID != "u9" {
		t.Errorf("header token: %+v, %v", id, err)
	}

	r = httptest.NewRequest("GET", "/ws?token="+token, nil)
	if id, err := v.FromRequest(r); err != nil || id.UserID != "u9" {
		t.Errorf("query token: %+v, %v", id, err)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	if id, err := v.FromRequest(r); err != nil || id.UserID != "" {
		t.Errorf("no token should give a guest: %+v, %v", id, err)
	}

	var none *Validator
	r.Header.Set("Authorization", "Bearer "+token)
	if id, err := none.FromRequest(r); err != nil || id.UserID != "" {
		t.Errorf("nil validator should ignore tokens: %+v, %v", id, err)
	}
}

func TestNewValidatorDisabled(t *testing.T) {
	v, err := NewValidator(t.Context(), "")
	if v != nil || err != nil {
		t.Errorf("NewValidator(\"\") = %v, %v; want nil, nil", v, err)
	}
}
