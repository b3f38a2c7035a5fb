package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRSS(t *testing.T) {
	s := newTestingServer(t, silentReasoner)
	aliceID, alice := signUp(t, s, "alice")
	createMemo(t, s, alice, url.Values{"body": {"first public\nsecond line"}, "visibility": {"public"}})
	createMemo(t, s, alice, url.Values{"body": {"a private thought"}, "visibility": {"private"}})

	rec := do(s, http.MethodGet, "/u/"+aliceID+"/rss.xml", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/xml"))
	body := rec.Body.String()
	require.Contains(t, body, "<title>alice&#39;s memos</title>")
	require.Contains(t, body, "<title>first public</title>")
	require.NotContains(t, body, "private thought")

	rec = do(s, http.MethodGet, "/u/missing/rss.xml", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRSSItemTitle(t *testing.T) {
	require.Equal(t, "hello", getRSSItemTitle("  hello  \nworld"))
	require.Equal(t, strings.Repeat("a", maxRSSItemTitleLength)+"...", getRSSItemTitle(strings.Repeat("a", maxRSSItemTitleLength+1)))
}
