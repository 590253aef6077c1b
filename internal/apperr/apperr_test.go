package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", Validation("name_too_short", "Name must be at least 3 characters"), http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("login first"), http.StatusUnauthorized},
		{"invariant", Invariant("already_answered", "question already answered"), http.StatusConflict},
		{"source", SourceUnavailable("network", "Network error", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"not ready", NotReady("starting"), http.StatusServiceUnavailable},
		{"corrupt", StoreCorrupt("session:alice", errors.New("bad json")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("start quiz: %w", Validation("bad_config", "bad")), http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestIsKindFollowsWrapping(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := fmt.Errorf("load session: %w", StoreCorrupt("session:bob", cause))

	if !IsKind(err, KindStoreCorrupt) {
		t.Fatal("Expected wrapped error to be classified as store_corrupt")
	}
	if IsKind(err, KindValidation) {
		t.Error("Expected wrapped error not to be classified as validation")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the underlying cause")
	}
}

func TestRetryable(t *testing.T) {
	if !SourceUnavailable("response_code", "Could not fetch questions", nil).Retryable() {
		t.Error("Expected source errors to be retryable")
	}
	if Validation("x", "y").Retryable() {
		t.Error("Expected validation errors not to be retryable")
	}
}
