// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package youtube searches official trailers through the YouTube Data API.
package youtube

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.geekbrox.name/autoblog/internal/request"
)

// DefaultURL is the YouTube Data API search endpoint.
const DefaultURL = "https://www.googleapis.com/youtube/v3/search"

// Client searches YouTube.
type Client struct {
	APIKey     string
	URL        string
	HTTPClient *http.Client
}

// Video is a search hit.
type Video struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Trailers searches short official trailer or PV videos by the English
// title, or by the native one if there is no English title. It returns nil
// when the client has no API key or both titles are empty.
func (c *Client) Trailers(ctx context.Context, titleEN, titleNative string) ([]Video, error) {
	var q string
	switch {
	case titleEN != "":
		q = titleEN + " official trailer PV"
	case titleNative != "":
		q = titleNative + " PV 公式"
	}
	if c.APIKey == "" || q == "" {
		return nil, nil
	}
	u := c.URL
	if u == "" {
		u = DefaultURL
	}
	resp, err := request.Make[searchResponse](ctx, request.Params{
		URL: u,
		Query: url.Values{
			"key":           {c.APIKey},
			"q":             {q},
			"part":          {"snippet"},
			"type":          {"video"},
			"maxResults":    {"3"},
			"order":         {"relevance"},
			"videoDuration": {"short"},
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   strings.NewReplacer(c.APIKey, "[EXPUNGED]"),
	})
	if err != nil {
		return nil, err
	}

	var videos []Video
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, Video{
			VideoID:   item.ID.VideoID,
			Title:     item.Snippet.Title,
			Channel:   item.Snippet.ChannelTitle,
			URL:       "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Thumbnail: item.Snippet.Thumbnails.High.URL,
		})
	}
	return videos, nil
}
