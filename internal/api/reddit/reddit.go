// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package reddit reads popular r/anime discussions through the public JSON
// search endpoint.
package reddit

import (
	"context"
	"net/http"
	"net/url"

	"go.geekbrox.name/autoblog/internal/request"
	"go.geekbrox.name/autoblog/internal/textutil"
)

const (
	// DefaultURL is the r/anime search endpoint.
	DefaultURL = "https://www.reddit.com/r/anime/search.json"
	// UserAgent identifies the bot to Reddit, which rejects generic agents.
	UserAgent = "GeekBrox/1.0 (blog automation)"
)

const (
	minScore      = 100
	consideredTop = 3
	maxSelftext   = 300
)

// Client searches Reddit.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// Post is a popular discussion thread.
type Post struct {
	Title       string `json:"title"`
	Score       int    `json:"score"`
	URL         string `json:"url"`
	NumComments int    `json:"num_comments"`
	Selftext    string `json:"selftext"`
}

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string `json:"title"`
				Score       int    `json:"score"`
				Permalink   string `json:"permalink"`
				NumComments int    `json:"num_comments"`
				Selftext    string `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Discussions returns the top posts of the past year about title. Only the
// first three results are considered and those below 100 points are dropped.
func (c *Client) Discussions(ctx context.Context, title string) ([]Post, error) {
	if title == "" {
		return nil, nil
	}
	u := c.URL
	if u == "" {
		u = DefaultURL
	}
	resp, err := request.Make[listing](ctx, request.Params{
		URL: u,
		Query: url.Values{
			"q":           {title},
			"sort":        {"top"},
			"limit":       {"5"},
			"t":           {"year"},
			"restrict_sr": {"1"},
		},
		Headers:    map[string]string{"User-Agent": UserAgent},
		HTTPClient: c.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	var posts []Post
	for i, child := range resp.Data.Children {
		if i == consideredTop {
			break
		}
		d := child.Data
		if d.Score < minScore {
			continue
		}
		posts = append(posts, Post{
			Title:       d.Title,
			Score:       d.Score,
			URL:         "https://reddit.com" + d.Permalink,
			NumComments: d.NumComments,
			Selftext:    textutil.Truncate(d.Selftext, maxSelftext),
		})
	}
	return posts, nil
}
