package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const maxBodyBytes = 64 << 10

var errEmptyBody = errors.New("empty request body")

// filterRequest is the body of PUT /api/filter.
type filterRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// parseFilterRequest accepts JSON or form-encoded bodies.
func parseFilterRequest(r *http.Request) (filterRequest, error) {
	var req filterRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return req, fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return req, errEmptyBody
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || (mediaType != "application/json" && trimmed[0] != '{') {
		form, err := url.ParseQuery(trimmed)
		if err != nil {
			return req, fmt.Errorf("parse form: %w", err)
		}
		req.Field, req.Value = form.Get("field"), form.Get("value")
		return req, nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode JSON: %w", err)
	}
	return req, nil
}
