// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package mal implements a client for the MyAnimeList v2 API.
package mal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/request"

	"golang.org/x/time/rate"
)

// DefaultURL is the MyAnimeList API base URL.
const DefaultURL = "https://api.myanimelist.net/v2"

// DefaultInterval is the minimum time between two requests.
const DefaultInterval = 500 * time.Millisecond

const fields = "id,title,mean,rank,popularity,num_list_users,synopsis,status,num_episodes"

var (
	// ErrNoClientID is returned when the client has no MAL client ID.
	ErrNoClientID = errors.New("MAL_CLIENT_ID is not set")
	// ErrNotFound is returned when MAL has no anime with the requested id.
	ErrNotFound = errors.New("MAL anime not found")
)

// Client queries MyAnimeList. Use [New] to construct one.
type Client struct {
	clientID string
	baseURL  string
	httpc    *http.Client
	limiter  *rate.Limiter
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides [DefaultURL].
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") } }

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpc = h } }

// WithInterval sets the minimum time between two requests.
func WithInterval(d time.Duration) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// New returns a client authenticated by clientID.
func New(clientID string, opts ...Option) *Client {
	c := &Client{
		clientID: clientID,
		baseURL:  DefaultURL,
		limiter:  rate.NewLimiter(rate.Every(DefaultInterval), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Anime is the subset of MAL anime fields merged into records.
type Anime struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Mean         *float64 `json:"mean"`
	Rank         *int     `json:"rank"`
	Popularity   *int     `json:"popularity"`
	NumListUsers *int     `json:"num_list_users"`
	Synopsis     string   `json:"synopsis"`
	Status       string   `json:"status"`
	NumEpisodes  *int     `json:"num_episodes"`
}

// Anime fetches an anime by MAL id. It waits for the rate limiter first.
func (c *Client) Anime(ctx context.Context, id int) (*Anime, error) {
	if c.clientID == "" {
		return nil, ErrNoClientID
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	a, err := request.Make[Anime](ctx, request.Params{
		URL:        fmt.Sprintf("%s/anime/%d?fields=%s", c.baseURL, id, fields),
		Headers:    map[string]string{"X-MAL-CLIENT-ID": c.clientID},
		HTTPClient: c.httpc,
		Scrubber:   strings.NewReplacer(c.clientID, "[EXPUNGED]"),
	})
	if err != nil {
		var se *request.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("MAL ID %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// Merge copies MAL fields into rec.
func (a *Anime) Merge(rec *anime.Record) {
	rec.MALScore = a.Mean
	rec.MALRank = a.Rank
	rec.MALPopularity = a.Popularity
	rec.MALMembers = a.NumListUsers
	rec.MALSynopsis = a.Synopsis
	rec.MALEpisodes = a.NumEpisodes
	rec.MALStatus = a.Status
}
