// GO TESTING BASICS:
// 1. Test files MUST end in _test.go — Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// This is Go's idiomatic pattern for testing multiple cases.
// Instead of writing separate test functions per case, we define a slice of
// test cases and loop over them. Adding a case = adding one struct literal.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string // Descriptive name for test output
		err       error  // The error to test
		target    error  // What we expect it to match
		wantMatch bool   // Should errors.Is() return true?
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("thread", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("code", "code is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("email", "user already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid email or password"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "RateLimited wraps ErrRateLimited",
			err:       RateLimited("too many requests"),
			target:    ErrRateLimited,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("both providers failed"),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("thread", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unavailable does NOT match ErrUnauthorized",
			err:       Unavailable("both providers failed"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIs_SurvivesWrapping(t *testing.T) {
	// Service layers wrap errors with fmt.Errorf("...: %w", err).
	// errors.Is must still find the sentinel through the chain.
	inner := NotFound("thread", "xyz")
	wrapped := fmt.Errorf("fetching thread: %w", inner)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is() should find ErrNotFound through a wrapped chain")
	}
}

func TestAppError_Message(t *testing.T) {
	err := ValidationFailed("code", "code is required")
	if err.Error() != "code is required" {
		t.Errorf("Error() = %q, want %q", err.Error(), "code is required")
	}
	if err.Field != "code" {
		t.Errorf("Field = %q, want %q", err.Field, "code")
	}
}
