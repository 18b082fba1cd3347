/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Seednode/wikiguess/games/wikilinks"
)

// How many candidates to ask for in one call; the first usable one wins.
const randomBatch = 5

var errNoArticle = errors.New("no usable random article returned")

type RandomArticle struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ArticleClient suggests random main-namespace articles through the MediaWiki
// API.
type ArticleClient struct {
	endpoint   string
	httpClient *http.Client
}

func newArticleClient(endpoint string) *ArticleClient {
	return &ArticleClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *ArticleClient) Random(ctx context.Context) (RandomArticle, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return RandomArticle{}, fmt.Errorf("invalid wikipedia api url: %w", err)
	}

	q := u.Query()
	q.Set("action", "query")
	q.Set("list", "random")
	q.Set("format", "json")
	q.Set("rnnamespace", "0")
	q.Set("rnlimit", fmt.Sprint(randomBatch))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return RandomArticle{}, err
	}
	req.Header.Set("User-Agent", "wikiguess/"+releaseVersion)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return RandomArticle{}, fmt.Errorf("random article request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RandomArticle{}, fmt.Errorf("wikipedia api returned status: %s", resp.Status)
	}

	var result struct {
		Query struct {
			Random []struct {
				Title string `json:"title"`
			} `json:"random"`
		} `json:"query"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return RandomArticle{}, fmt.Errorf("unable to decode random article: %w", err)
	}

	for _, page := range result.Query.Random {
		link := wikilinks.ArticleURL(page.Title)
		if page.Title != "" && wikilinks.IsValidWikipediaURL(link) {
			return RandomArticle{Title: page.Title, Link: link}, nil
		}
	}

	return RandomArticle{}, errNoArticle
}
