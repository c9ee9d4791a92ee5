package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/client"
	"github.com/sakif/symvora/internal/diagnosis"
	"github.com/sakif/symvora/internal/server"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := server.New(server.Config{
		DBPath:       ":memory:",
		JWTSecret:    "server-test-secret-0123456789",
		TokenTTL:     time.Hour,
		PasswordCost: bcrypt.MinCost,
	}, logger, diagnosis.Canned{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodPut, "/api/me/name"},
		{http.MethodPut, "/api/me/password"},
		{http.MethodPost, "/api/analyze"},
	} {
		req, _ := http.NewRequest(route.method, srv.URL+route.path, nil)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, route.path)
	}
}

// TestClientRoundTrip drives the real HTTP client against the real router.
func TestClientRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	store := client.FileTokenStore{Path: filepath.Join(t.TempDir(), "token")}

	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()), client.WithTokenStore(store))

	user, err := c.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	_, err = c.SignUp(ctx, "Ada again", "ada@example.com", "secret1")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	advice, err := c.Diagnose(ctx, "headache")
	require.NoError(t, err)
	assert.Contains(t, advice, "informational purposes only")

	_, err = c.Diagnose(ctx, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	require.NoError(t, c.UpdateProfileName(ctx, "Ada Lovelace"))
	assert.ErrorIs(t, c.UpdatePassword(ctx, "wrong-one", "newpass"), apperror.ErrUnauthorized)
	require.NoError(t, c.UpdatePassword(ctx, "secret1", "newpass"))

	// A second client picks the session up from the token file.
	restored := client.New(srv.URL, client.WithHTTPClient(srv.Client()), client.WithTokenStore(store))
	me, err := restored.LoadCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "Ada Lovelace", me.Name)

	require.NoError(t, restored.Logout(ctx))
	me, err = client.New(srv.URL, client.WithHTTPClient(srv.Client()), client.WithTokenStore(store)).LoadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, me)

	_, err = c.Login(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = c.Login(ctx, "ADA@example.com", "newpass")
	assert.NoError(t, err)
}
