/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestStaticRoutes(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html; charset=utf-8", `href="/wikilinks"`},
		{"/healthz", "text/plain; charset=utf-8", "Ok"},
		{"/version", "text/plain; charset=utf-8", "wikiguess v" + releaseVersion},
		{"/robots.txt", "text/plain; charset=utf-8", "User-agent: GPTBot"},
		{"/wikilinks", "text/html; charset=utf-8", "assets/wikilinks/app.js"},
		{"/assets/wikilinks/app.js", "text/javascript; charset=utf-8", "join-game"},
		{"/assets/wikilinks/app.css", "text/css; charset=utf-8", "--accent"},
		{"/favicons/site.webmanifest", "application/manifest+json", "wikiguess"},
		{"/favicon.ico", "image/svg+xml", "<svg"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tc.path)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, body, tc.contains)
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
			assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
			assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
		})
	}
}

func TestMissingAssets(t *testing.T) {
	srv := newTestServer(t, "")

	for _, path := range []string{"/assets/wikilinks/missing.js", "/favicons/missing.png", "/nope"} {
		resp, _ := get(t, srv.URL+path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestRealIP(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	r.RemoteAddr = "10.0.0.1:5000"

	assert.Equal(t, "10.0.0.1:5000", realIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.7")
	assert.Equal(t, "192.0.2.7:5000", realIP(r))

	r.Header.Set("CF-Connecting-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:5000", realIP(r))

	r.Header.Set("CF-Connecting-IP", "not-an-ip")
	assert.Equal(t, "10.0.0.1:5000", realIP(r))
}

func TestNewRandomIsDeterministicWhenSeeded(t *testing.T) {
	a, b := newRandom(42), newRandom(42)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}
