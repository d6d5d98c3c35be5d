package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/doorbell/pkg/config"
	"github.com/johnquangdev/doorbell/pkg/jwt"
)

func TestEchoAuth(t *testing.T) {
	m := jwt.NewManager(config.JWTConfig{AccessSecret: "s3cret", AccessExpiry: time.Minute, Issuer: "doorbell"})
	token, _ := m.GenerateAccessToken("host-1", "host")

	tests := []struct {
		name     string
		target   string
		header   string
		required bool
		wantCode int
		wantID   string
	}{
		{"header token", "/", "Bearer " + token, true, http.StatusOK, "host-1"},
		{"query token", "/?token=" + token, "", true, http.StatusOK, "host-1"},
		{"missing required", "/", "", true, http.StatusUnauthorized, ""},
		{"missing optional", "/", "", false, http.StatusOK, ""},
		{"bad optional", "/", "Bearer nope", false, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			mw := OptionalAuth(m)
			if tt.required {
				mw = EchoAuth(m)
			}

			var seen string
			err := mw(func(c echo.Context) error {
				seen = IdentityFrom(c)
				return c.NoContent(http.StatusOK)
			})(c)

			code := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			}
			if code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, code)
			}
			if seen != tt.wantID {
				t.Fatalf("expected identity %q, got %q", tt.wantID, seen)
			}
		})
	}
}
