package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserPage(t *testing.T) {
	s := newTestingServer(t, silentReasoner)
	aliceID, alice := signUp(t, s, "alice")
	_, bob := signUp(t, s, "bob")
	createMemo(t, s, alice, url.Values{"body": {"public note"}, "visibility": {"public"}})
	createMemo(t, s, alice, url.Values{"body": {"private note"}, "visibility": {"private"}})
	createMemo(t, s, alice, url.Values{"body": {"secret note"}, "visibility": {"secret"}, "password": {"pw"}})

	rec := do(s, http.MethodGet, "/users/"+aliceID, nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "public note")
	require.Contains(t, body, "private note")
	require.Contains(t, body, secretPlaceholder)
	require.NotContains(t, body, "secret note")

	for _, cookie := range []*http.Cookie{bob, nil} {
		rec = do(s, http.MethodGet, "/users/"+aliceID, nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		body = rec.Body.String()
		require.Contains(t, body, "public note")
		require.NotContains(t, body, "private note")
		require.NotContains(t, body, secretPlaceholder)
	}

	rec = do(s, http.MethodGet, "/users/missing", nil, alice)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
