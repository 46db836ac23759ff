// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package web holds the HTTP helpers of the status server.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.geekbrox.name/autoblog/internal/logger"
)

// StatusErr is an error that carries an HTTP status code.
type StatusErr int

// Error returns the lowercase status text of the code.
func (se StatusErr) Error() string { return strings.ToLower(http.StatusText(int(se))) }

const (
	ErrBadRequest          StatusErr = http.StatusBadRequest
	ErrNotFound            StatusErr = http.StatusNotFound
	ErrMethodNotAllowed    StatusErr = http.StatusMethodNotAllowed
	ErrInternalServerError StatusErr = http.StatusInternalServerError
	ErrServiceUnavailable  StatusErr = http.StatusServiceUnavailable
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// RespondJSON writes response to w as indented JSON.
func RespondJSON(w http.ResponseWriter, response any) { respondJSON(w, response, false) }

func respondJSON(w http.ResponseWriter, response any, wroteStatus bool) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		if !wroteStatus {
			w.WriteHeader(http.StatusInternalServerError)
		}
		fmt.Fprintf(w, "{\n  \"status\": \"error\",\n  \"error\": %q\n}\n", "JSON marshal error: "+err.Error())
		return
	}
	w.Write(b)
	w.Write([]byte("\n"))
}

// RespondJSONError writes err to w as a JSON error response.
//
// The status code is taken from a wrapped [StatusErr] and defaults to 500:
//
//	web.RespondJSONError(logf, w, fmt.Errorf("draft %q: %w", name, web.ErrNotFound))
//
// Client errors are echoed back. Server errors may mention file paths or
// upstream responses, so they are only logged and the client sees the
// status text.
func RespondJSONError(logf logger.Logf, w http.ResponseWriter, err error) {
	var se StatusErr
	if !errors.As(err, &se) {
		se = ErrInternalServerError
	}
	msg := err.Error()
	if se >= 500 {
		if logf != nil {
			logf("web: %d: %v", se, err)
		}
		msg = se.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(int(se))
	respondJSON(w, &errorResponse{Status: "error", Error: msg}, true)
}
