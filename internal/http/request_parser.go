// Package http provides the JSON API server and handler
// implementations.
//
// This file implements utilities for parsing and validating HTTP
// request data. It reduces duplication by providing reusable functions
// for body decoding and path parameter extraction.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// maxBodyBytes bounds request bodies; item submissions are tiny.
const maxBodyBytes = 1 << 20

// DecodeJSON reads the request body into dst. Unknown fields are
// ignored so clients can send extra metadata without breaking.
func DecodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}

	// A second document in the body means the client is confused
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// PathID extracts the {id} path segment.
func PathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

// MonthPath extracts and range-checks the {year} and {month} path
// segments.
func MonthPath(r *http.Request) (year, month int, err error) {
	year, err = strconv.Atoi(strings.TrimSpace(r.PathValue("year")))
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("invalid year %q", r.PathValue("year"))
	}
	month, err = strconv.Atoi(strings.TrimSpace(r.PathValue("month")))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", r.PathValue("month"))
	}
	return year, month, nil
}

// RequireMethod checks if the request method matches the expected
// method(s). Returns an error response builder if the method doesn't
// match.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *ResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
