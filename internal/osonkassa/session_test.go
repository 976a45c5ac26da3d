package osonkassa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginServer(t *testing.T, logins *atomic.Int32, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "tenant-1", r.Header.Get("tenantId"))

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user", req.UserName)

		logins.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(loginResponse{Token: "fresh-token"})
	}))
}

func TestSession_EnsureCachesToken(t *testing.T) {
	var logins atomic.Int32
	server := loginServer(t, &logins, http.StatusOK)
	defer server.Close()

	session := NewSession(server.URL, "user", "pass", "tenant-1")

	token, err := session.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)

	// Second call must reuse the cached token.
	_, err = session.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), logins.Load())
}

func TestSession_InvalidateForcesRelogin(t *testing.T) {
	var logins atomic.Int32
	server := loginServer(t, &logins, http.StatusOK)
	defer server.Close()

	session := NewSession(server.URL, "user", "pass", "tenant-1")

	_, err := session.Ensure(context.Background())
	require.NoError(t, err)

	session.Invalidate()
	assert.Empty(t, session.Get())

	_, err = session.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), logins.Load())
}

func TestSession_LoginRejected(t *testing.T) {
	var logins atomic.Int32
	server := loginServer(t, &logins, http.StatusUnauthorized)
	defer server.Close()

	session := NewSession(server.URL, "user", "pass", "tenant-1")

	_, err := session.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Empty(t, session.Get())
}
