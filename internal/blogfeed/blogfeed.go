// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package blogfeed reads the public RSS feed of the blog to find out what is
// already published.
package blogfeed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"go.geekbrox.name/autoblog/internal/request"
)

// Reader reads the feed of a Tistory blog.
type Reader struct {
	// Blog is the blog name, as in https://{Blog}.tistory.com.
	Blog string
	// URL overrides the feed URL derived from Blog.
	URL        string
	HTTPClient *http.Client
}

// FeedURL returns the address of the feed.
func (r *Reader) FeedURL() string {
	if r.URL != "" {
		return r.URL
	}
	return "https://" + r.Blog + ".tistory.com/rss"
}

// Titles returns the titles of the posts in the feed, newest first.
func (r *Reader) Titles(ctx context.Context) ([]string, error) {
	b, err := request.Bytes(ctx, request.Params{
		Method:     http.MethodGet,
		URL:        r.FeedURL(),
		Headers:    map[string]string{"Accept": "application/rss+xml, application/xml"},
		HTTPClient: r.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.FeedURL(), err)
	}
	titles := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if t := strings.TrimSpace(item.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

// Has reports whether a post titled title is in the feed.
func (r *Reader) Has(ctx context.Context, title string) (bool, error) {
	titles, err := r.Titles(ctx)
	if err != nil {
		return false, err
	}
	title = strings.TrimSpace(title)
	for _, t := range titles {
		if t == title {
			return true, nil
		}
	}
	return false, nil
}
