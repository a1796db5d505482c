// Package httputil provides shared HTTP response/request utilities for
// handlers. Every handler file should use these helpers instead of writing
// raw http.ResponseWriter calls, so JSON formatting, error envelopes, and
// logging stay consistent across endpoints.
package httputil

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/oakmart/storefront/internal/segments"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[httputil] JSON encode error: %v", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with the given data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Error writes a JSON error response. Use for client errors (4xx).
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic message to the client (never leak internals).
func InternalError(w http.ResponseWriter, err error) {
	log.Printf("[httputil] internal error: %v", err)
	Error(w, http.StatusInternalServerError, "internal server error")
}

// DomainError maps the segmentation error taxonomy onto HTTP statuses:
// validation failures are 400s, missing segments are 404s, store failures
// are 502s (the admin UI shows these as non-fatal, retryable notifications),
// and anything else is a 500.
func DomainError(w http.ResponseWriter, err error) {
	var vErr *segments.ValidationError
	if errors.As(err, &vErr) {
		JSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Error(), Code: "validation_failed"})
		return
	}
	if errors.Is(err, segments.ErrNotFound) {
		NotFound(w, "segment not found")
		return
	}
	var sErr *segments.StoreError
	if errors.As(err, &sErr) {
		log.Printf("[httputil] store error: %v", sErr)
		JSON(w, http.StatusBadGateway, ErrorResponse{Error: "segment store unavailable", Code: "store_error"})
		return
	}
	InternalError(w, err)
}

// Decode reads JSON from the request body into dst. Returns false and writes
// a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
