// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package request

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
)

// Cache is the storage used by [CacheTransport]. It is satisfied by
// store.Store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CacheTransport is an [http.RoundTripper] that serves repeated requests
// from a Cache. Only 200 OK responses are stored. Cache failures are treated
// as misses.
type CacheTransport struct {
	Cache Cache
	// Base is the underlying transport. If nil, http.DefaultTransport is
	// used.
	Base http.RoundTripper
}

// RoundTrip implements [http.RoundTripper].
func (t *CacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	key := cacheKey(req.Method, req.URL.String(), body)
	if cached, err := t.Cache.Get(req.Context(), key); err == nil && cached != nil {
		return &http.Response{
			Status:        "200 OK",
			StatusCode:    http.StatusOK,
			Proto:         "HTTP/1.1",
			ProtoMajor:    1,
			ProtoMinor:    1,
			Header:        http.Header{"X-Cache": {"HIT"}},
			Body:          io.NopCloser(bytes.NewReader(cached)),
			ContentLength: int64(len(cached)),
			Request:       req,
		}, nil
	}

	res, err := base.RoundTrip(req)
	if err != nil || res.StatusCode != http.StatusOK {
		return res, err
	}

	b, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, err
	}
	res.Body = io.NopCloser(bytes.NewReader(b))
	t.Cache.Set(req.Context(), key, b)
	return res, nil
}

func cacheKey(method, url string, body []byte) string {
	h := sha256.New()
	io.WriteString(h, method)
	h.Write([]byte{0})
	io.WriteString(h, url)
	h.Write([]byte{0})
	h.Write(body)
	return "http:" + hex.EncodeToString(h.Sum(nil))
}
