// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package request provides utilities for making HTTP requests.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.geekbrox.name/autoblog/internal/version"
)

// DefaultClient is a [http.Client] with nice defaults.
var DefaultClient = &http.Client{
	Timeout: 15 * time.Second,
}

// Params defines the parameters needed for making an HTTP request.
type Params struct {
	// Method is the HTTP method (GET, POST, etc.) for the request.
	Method string
	// URL is the target URL of the request.
	URL string
	// Query is appended to URL as the query string, if not nil.
	Query url.Values
	// Headers is a map of key-value pairs for additional request headers.
	Headers map[string]string
	// Body is any data to be sent in the request body. It will be marshaled to
	// JSON.
	Body any
	// HTTPClient is an optional custom HTTP client object to use for the request.
	// If not provided, DefaultClient will be used.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data from
	// error messages.
	Scrubber *strings.Replacer
}

// StatusError is returned when the server responds with a status other than
// 200 OK.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %q: want 200, got %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IgnoreResponse can be used as the Response type parameter of [Make] when
// the response body is not interesting.
type IgnoreResponse struct{}

type scrubbedError struct {
	err      error
	scrubber *strings.Replacer
}

func (se *scrubbedError) Error() string {
	if se.scrubber != nil {
		return se.scrubber.Replace(se.err.Error())
	}
	return se.err.Error()
}

func (se *scrubbedError) Unwrap() error { return se.err }

func scrubErr(err error, scrubber *strings.Replacer) error {
	return &scrubbedError{err: err, scrubber: scrubber}
}

// Make makes an HTTP request with the provided parameters and unmarshals the
// JSON response body into the specified type.
func Make[Response any](ctx context.Context, p Params) (Response, error) {
	var resp Response

	b, err := Bytes(ctx, p)
	if err != nil {
		return resp, err
	}

	if _, ok := any(resp).(IgnoreResponse); ok {
		return resp, nil
	}

	if err := json.Unmarshal(b, &resp); err != nil {
		return resp, scrubErr(fmt.Errorf("decoding response from %q: %w", p.URL, err), p.Scrubber)
	}

	return resp, nil
}

// MakeJSON is an alias of [Make].
func MakeJSON[Response any](ctx context.Context, p Params) (Response, error) {
	return Make[Response](ctx, p)
}

// Bytes makes an HTTP request with the provided parameters and returns the raw
// response body.
func Bytes(ctx context.Context, p Params) ([]byte, error) {
	var data []byte
	if p.Body != nil {
		var err error
		data, err = json.Marshal(p.Body)
		if err != nil {
			return nil, scrubErr(err, p.Scrubber)
		}
	}

	var br io.Reader
	if data != nil {
		br = bytes.NewReader(data)
	}

	method := p.Method
	if method == "" {
		method = http.MethodGet
	}

	u := p.URL
	if p.Query != nil {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + p.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, br)
	if err != nil {
		return nil, scrubErr(err, p.Scrubber)
	}

	req.Header.Set("User-Agent", UserAgent())
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	httpc := DefaultClient
	if p.HTTPClient != nil {
		httpc = p.HTTPClient
	}

	res, err := httpc.Do(req)
	if err != nil {
		return nil, scrubErr(err, p.Scrubber)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, scrubErr(err, p.Scrubber)
	}

	if res.StatusCode != http.StatusOK {
		return nil, scrubErr(&StatusError{
			Method:     method,
			URL:        p.URL,
			StatusCode: res.StatusCode,
			Body:       b,
		}, p.Scrubber)
	}

	return b, nil
}

// UserAgent returns a user agent string by combining the version information
// and the blog address.
func UserAgent() string {
	i := version.Version()
	ver := i.Version
	if i.Version == "devel" && i.Commit != "" {
		ver = i.Commit
	}
	return version.CmdName() + "/" + ver + " (+https://geekbrox.tistory.com)"
}
