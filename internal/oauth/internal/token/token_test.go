package token

import (
	"errors"
	"strings"
	"testing"

	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
)

func kindOf(t *testing.T, err error) ierrors.Kind {
	t.Helper()
	ve, ok := ierrors.As(err)
	if !ok {
		t.Fatalf("expected *VerificationError, got %T: %v", err, err)
	}
	return ve.Kind
}

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   string
		query    string
		want     string
		wantKind ierrors.Kind
	}{
		{name: "both empty", wantKind: ierrors.KindNoToken},
		{name: "both present", header: "Bearer abc", query: "abc", wantKind: ierrors.KindInvalidRequest},
		{name: "non-bearer header and query", header: "Basic dXNlcjpwYXNz", query: "abc", wantKind: ierrors.KindInvalidRequest},
		{name: "query only", query: "abc", want: "abc"},
		{name: "header only", header: "Bearer abc", want: "abc"},
		{name: "lower case scheme", header: "bearer abc", want: "abc"},
		{name: "mixed case scheme", header: "BeArEr abc", want: "abc"},
		{name: "prefix only", header: "Bearer ", want: ""},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantKind: ierrors.KindInvalidToken},
		{name: "scheme without space", header: "Bearerabc", wantKind: ierrors.KindInvalidToken},
		{name: "too short", header: "Bear", wantKind: ierrors.KindInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Extract(tt.header, tt.query)
			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("Extract() expected %s error, got token %q", tt.wantKind, got)
				}
				if k := kindOf(t, err); k != tt.wantKind {
					t.Errorf("Extract() kind = %s, want %s", k, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_Descriptions(t *testing.T) {
	t.Parallel()

	_, err := Extract("", "")
	if ve, _ := ierrors.As(err); ve.Description != "missing token" {
		t.Errorf("description = %q", ve.Description)
	}

	_, err = Extract("Bearer a", "b")
	if ve, _ := ierrors.As(err); ve.Description != "more than one method for including an access token used" {
		t.Errorf("description = %q", ve.Description)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := []string{
		"001",
		"abc",
		"A-Za-z0-9-._~+/",
		"dGVzdA==",
		"x=",
		"~~~",
		strings.Repeat("a", 4096),
	}
	for _, candidate := range valid {
		candidate := candidate
		t.Run("valid "+candidate[:min(len(candidate), 16)], func(t *testing.T) {
			t.Parallel()
			got, err := Validate(candidate)
			if err != nil {
				t.Fatalf("Validate(%q) unexpected error: %v", candidate, err)
			}
			if got.String() != candidate {
				t.Errorf("Validate(%q) = %q", candidate, got)
			}
		})
	}

	invalid := []string{
		"",
		"=",
		"==abc",
		"ab=c",
		"abc def",
		"abc\n",
		"a,b",
		"a%20b",
		"é",
		"a\"b",
		"abc==x",
	}
	for _, candidate := range invalid {
		candidate := candidate
		t.Run("invalid "+candidate, func(t *testing.T) {
			t.Parallel()
			_, err := Validate(candidate)
			if err == nil {
				t.Fatalf("Validate(%q) expected error", candidate)
			}
			if !errors.Is(err, ierrors.ErrInvalidToken) {
				t.Errorf("Validate(%q) error = %v, want invalid_token", candidate, err)
			}
			ve, _ := ierrors.As(err)
			if ve.Description != "the access token is not a valid b64token" {
				t.Errorf("description = %q", ve.Description)
			}
		})
	}
}

func TestValidate_EveryByte(t *testing.T) {
	t.Parallel()

	allowed := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~+/"
	for b := 0; b < 256; b++ {
		c := string([]byte{byte(b)})
		_, err := Validate("a" + c)
		wantOK := strings.Contains(allowed, c) || c == "="
		if wantOK && err != nil {
			t.Errorf("Validate(%q) rejected an allowed character", "a"+c)
		}
		if !wantOK && err == nil {
			t.Errorf("Validate(%q) accepted a forbidden character", "a"+c)
		}
	}
}

func TestExtractAndValidate(t *testing.T) {
	t.Parallel()

	tok, err := ExtractAndValidate("Bearer 001", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "001" {
		t.Errorf("token = %q, want %q", tok, "001")
	}

	if _, err := ExtractAndValidate("Bearer ", ""); !errors.Is(err, ierrors.ErrInvalidToken) {
		t.Errorf("empty bearer value: error = %v, want invalid_token", err)
	}
	if _, err := ExtractAndValidate("", "has space"); !errors.Is(err, ierrors.ErrInvalidToken) {
		t.Errorf("bad query token: error = %v, want invalid_token", err)
	}
}
