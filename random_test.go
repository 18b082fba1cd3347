/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeWikipedia(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, "random", q.Get("list"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "0", q.Get("rnnamespace"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "wikiguess/"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestRandomArticleSkipsUnusableTitles(t *testing.T) {
	api := fakeWikipedia(t, http.StatusOK, `{"query":{"random":[
		{"id":1,"ns":0,"title":"Star Wars: A New Hope"},
		{"id":2,"ns":0,"title":"Alan Turing"}
	]}}`)

	article, err := newArticleClient(api.URL).Random(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Alan Turing", article.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Alan_Turing", article.Link)
}

func TestRandomArticleErrors(t *testing.T) {
	_, err := newArticleClient(fakeWikipedia(t, http.StatusOK, `{"query":{"random":[]}}`).URL).Random(context.Background())
	assert.ErrorIs(t, err, errNoArticle)

	_, err = newArticleClient(fakeWikipedia(t, http.StatusInternalServerError, `oops`).URL).Random(context.Background())
	assert.ErrorContains(t, err, "500")

	_, err = newArticleClient(fakeWikipedia(t, http.StatusOK, `{not json`).URL).Random(context.Background())
	assert.ErrorContains(t, err, "unable to decode")
}

func TestServeRandomArticle(t *testing.T) {
	api := fakeWikipedia(t, http.StatusOK, `{"query":{"random":[{"title":"Ada Lovelace"}]}}`)
	srv := newTestServer(t, api.URL)

	resp, err := http.Get(srv.URL + gamePath + "/random")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var article RandomArticle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&article))
	assert.Equal(t, "https://en.wikipedia.org/wiki/Ada_Lovelace", article.Link)
}

func TestServeRandomArticleUpstreamFailure(t *testing.T) {
	api := fakeWikipedia(t, http.StatusServiceUnavailable, `down`)
	srv := newTestServer(t, api.URL)

	resp, err := http.Get(srv.URL + gamePath + "/random")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
