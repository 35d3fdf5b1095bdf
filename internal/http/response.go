package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSONResponse builds a JSON reply with a fluent API.
type JSONResponse struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse starts a 200 response carrying body.
func NewJSONResponse(body any) *JSONResponse {
	return &JSONResponse{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
		body:       body,
	}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.statusCode = code
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

// Write sends the response. Encoding failures after the header was written
// can only be logged.
func (b *JSONResponse) Write(w http.ResponseWriter, r *http.Request) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.ErrorContext(r.Context(), "JSON encode failed", "error", err, "path", r.URL.Path)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse is the {"error": "..."} reply used by every handler.
func ErrorResponse(statusCode int, message string) *JSONResponse {
	return NewJSONResponse(errorBody{Error: message}).Status(statusCode)
}

func BadRequestError(message string) *JSONResponse {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponse {
	return ErrorResponse(http.StatusNotFound, message)
}

func BadGatewayError(message string) *JSONResponse {
	return ErrorResponse(http.StatusBadGateway, message)
}

func TooManyRequestsError() *JSONResponse {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}
