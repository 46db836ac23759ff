// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package tmdb implements a client for The Movie Database TV endpoints.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.geekbrox.name/autoblog/internal/request"
)

const (
	// DefaultURL is the TMDB API base URL.
	DefaultURL = "https://api.themoviedb.org/3"
	// ImageBase is prepended to image file paths for downloads.
	ImageBase = "https://image.tmdb.org/t/p/w780"
	// Language is the language of returned overviews.
	Language = "ko-KR"
)

const (
	maxPosters   = 5
	maxBackdrops = 5
	maxTrailers  = 3
)

// Client queries TMDB.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Show is what the drafter uses from a TV show.
type Show struct {
	ID            int       `json:"tmdb_id"`
	Overview      string    `json:"overview_ko"`
	VoteAverage   float64   `json:"vote_average"`
	VoteCount     int       `json:"vote_count"`
	FirstAirDate  string    `json:"first_air_date"`
	Networks      []string  `json:"networks"`
	PosterPath    string    `json:"poster_path"`
	BackdropPaths []string  `json:"backdrop_paths"`
	PosterPaths   []string  `json:"poster_paths"`
	Trailers      []Trailer `json:"trailers"`
}

// Trailer is a trailer or teaser video.
type Trailer struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
}

// YouTubeURL returns the watch URL of the first YouTube trailer, if any.
func (s *Show) YouTubeURL() string {
	for _, t := range s.Trailers {
		if t.Site == "YouTube" {
			return "https://www.youtube.com/watch?v=" + t.Key
		}
	}
	return ""
}

type searchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

type image struct {
	FilePath string `json:"file_path"`
}

type detailResponse struct {
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	Networks     []struct {
		Name string `json:"name"`
	} `json:"networks"`
	Images struct {
		Posters   []image `json:"posters"`
		Backdrops []image `json:"backdrops"`
	} `json:"images"`
	Videos struct {
		Results []struct {
			Key  string `json:"key"`
			Name string `json:"name"`
			Site string `json:"site"`
			Type string `json:"type"`
		} `json:"results"`
	} `json:"videos"`
}

// Lookup searches TV shows by each query in order and returns details of the
// first hit. It returns nil without an error when the client has no API key.
// Failed queries are reported through logf and the next one is tried.
func (c *Client) Lookup(ctx context.Context, logf func(string, ...any), queries ...string) (*Show, error) {
	if c.APIKey == "" {
		return nil, nil
	}
	for _, q := range queries {
		if q == "" {
			continue
		}
		show, err := c.lookup(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logf("TMDB 검색 실패 (%s): %v", q, err)
			continue
		}
		if show != nil {
			return show, nil
		}
	}
	return nil, nil
}

func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultURL
	}
	query.Set("api_key", c.APIKey)
	query.Set("language", Language)
	return request.Make[T](ctx, request.Params{
		URL:        base + path,
		Query:      query,
		HTTPClient: c.HTTPClient,
		Scrubber:   strings.NewReplacer(c.APIKey, "[EXPUNGED]"),
	})
}

func (c *Client) lookup(ctx context.Context, q string) (*Show, error) {
	search, err := getJSON[searchResponse](ctx, c, "/search/tv", url.Values{"query": {q}})
	if err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, nil
	}
	id := search.Results[0].ID

	d, err := getJSON[detailResponse](ctx, c, fmt.Sprintf("/tv/%d", id), url.Values{"append_to_response": {"images,videos"}})
	if err != nil {
		return nil, err
	}

	show := &Show{
		ID:            id,
		Overview:      d.Overview,
		VoteAverage:   d.VoteAverage,
		VoteCount:     d.VoteCount,
		FirstAirDate:  d.FirstAirDate,
		PosterPath:    d.PosterPath,
		Networks:      []string{},
		PosterPaths:   filePaths(d.Images.Posters, maxPosters),
		BackdropPaths: filePaths(d.Images.Backdrops, maxBackdrops),
		Trailers:      []Trailer{},
	}
	for _, n := range d.Networks {
		show.Networks = append(show.Networks, n.Name)
	}
	for _, v := range d.Videos.Results {
		if len(show.Trailers) == maxTrailers {
			break
		}
		if v.Type == "Trailer" || v.Type == "Teaser" {
			show.Trailers = append(show.Trailers, Trailer{Key: v.Key, Name: v.Name, Site: v.Site})
		}
	}
	return show, nil
}

// The first n images are considered; entries without a file path are dropped.
func filePaths(images []image, n int) []string {
	out := []string{}
	for i, img := range images {
		if i == n {
			break
		}
		if img.FilePath != "" {
			out = append(out, img.FilePath)
		}
	}
	return out
}
