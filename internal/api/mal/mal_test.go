// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package mal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.geekbrox.name/autoblog/internal/anime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnime(t *testing.T) {
	t.Parallel()

	var calls []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, time.Now())
		assert.Equal(t, "secret-id", r.Header.Get("X-MAL-CLIENT-ID"))
		assert.Equal(t, fields, r.URL.Query().Get("fields"))
		switch r.URL.Path {
		case "/anime/52991":
			w.Write([]byte(`{"id":52991,"title":"Sousou no Frieren","mean":9.3,"rank":1,"popularity":120,"num_list_users":1000000,"synopsis":"An elf.","status":"finished_airing","num_episodes":28}`))
		default:
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)

	c := New("secret-id", WithBaseURL(ts.URL), WithHTTPClient(ts.Client()), WithInterval(50*time.Millisecond))

	a, err := c.Anime(t.Context(), 52991)
	require.NoError(t, err)

	var rec anime.Record
	a.Merge(&rec)
	require.NotNil(t, rec.MALScore)
	assert.Equal(t, 9.3, *rec.MALScore)
	assert.Equal(t, 1, *rec.MALRank)
	assert.Equal(t, 1000000, *rec.MALMembers)
	assert.Equal(t, 28, *rec.MALEpisodes)
	assert.Equal(t, "finished_airing", rec.MALStatus)

	_, err = c.Anime(t.Context(), 1)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	assert.NotContains(t, err.Error(), "secret-id")

	require.Len(t, calls, 2)
	assert.GreaterOrEqual(t, calls[1].Sub(calls[0]), 40*time.Millisecond)
}

func TestAnimeNoClientID(t *testing.T) {
	t.Parallel()

	_, err := New("").Anime(t.Context(), 1)
	assert.ErrorIs(t, err, ErrNoClientID)
}

func TestAnimeServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	_, err := New("id", WithBaseURL(ts.URL)).Anime(t.Context(), 5)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, strings.Contains(err.Error(), "500"))
}
