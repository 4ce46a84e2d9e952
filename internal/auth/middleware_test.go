package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdex-tech/kdex-splitscreen/pkg/auth"
)

var secret = []byte("0123456789abcdef0123")

func TestWithAuthentication(t *testing.T) {
	editor, err := auth.SignToken("u1", "", []string{auth.EditorRole}, "test", secret, time.Hour)
	require.NoError(t, err)
	viewer, err := auth.SignToken("u2", "", []string{"viewer"}, "test", secret, time.Hour)
	require.NoError(t, err)

	var seen string
	handler := WithAuthentication(secret, "test", auth.EditorRole)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		require.True(t, ok)
		seen = claims.UID
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "no role", header: "Bearer " + viewer, want: http.StatusForbidden},
		{name: "editor", header: "Bearer " + editor, want: http.StatusNoContent},
		{name: "lower case scheme", header: "bearer " + editor, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			r := httptest.NewRequest(http.MethodGet, "/~/blocks", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "u1", seen)
			} else {
				assert.Empty(t, seen)
			}
		})
	}
}

func TestGetClaimsMissing(t *testing.T) {
	_, ok := GetClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
