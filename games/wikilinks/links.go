/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wikilinks

import (
	"net/url"
	"strings"
)

// UnknownTitle is shown when a title cannot be recovered from a link.
const UnknownTitle = "Unknown Article"

// IsValidWikipediaURL reports whether raw looks like a link to a regular
// Wikipedia article: no namespaced pages (Category:, Talk:, ...) and no
// disambiguation pages.
func IsValidWikipediaURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}

	path := u.EscapedPath()

	return strings.Contains(strings.ToLower(u.Hostname()), "wikipedia.org") &&
		strings.Contains(path, "/wiki/") &&
		!strings.Contains(path, ":") &&
		!strings.Contains(path, "disambiguation")
}

// ExtractTitle turns the article segment of a Wikipedia URL into a
// human-readable title.
func ExtractTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return UnknownTitle
	}

	parts := strings.Split(u.EscapedPath(), "/wiki/")
	if len(parts) < 2 {
		return UnknownTitle
	}

	title, err := url.PathUnescape(parts[1])
	if err != nil || title == "" {
		return UnknownTitle
	}

	return strings.ReplaceAll(title, "_", " ")
}

// ArticleURL builds the canonical English Wikipedia link for a title.
func ArticleURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
