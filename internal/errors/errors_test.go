package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(ErrDatabase, cause)

	if err.Code != "DATABASE_ERROR" {
		t.Errorf("expected code DATABASE_ERROR, got %s", err.Code)
	}
	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.StatusCode)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped error to unwrap to its cause")
	}
	if !stderrors.Is(err, ErrDatabase) {
		t.Error("expected wrapped error to match its sentinel")
	}
}

func TestWithDetail(t *testing.T) {
	err := WithDetail(ErrValidation, "maximum_investment must be >= minimum_investment")

	if err.Message != "Validation failed: maximum_investment must be >= minimum_investment" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if ErrValidation.Message != "Validation failed" {
		t.Error("sentinel message must not be mutated")
	}
	if stderrors.Is(err, ErrInvalidAmount) {
		t.Error("different codes must not match")
	}
}

func TestNestedCause(t *testing.T) {
	inner := WithDetail(ErrHTTPRequest, "timeout")
	outer := Wrap(ErrTreasuryDataFetch, inner)

	var appErr *AppError
	if !stderrors.As(outer.Internal, &appErr) || appErr.Code != "HTTP_REQUEST_ERROR" {
		t.Fatalf("expected HTTP_REQUEST_ERROR cause, got %v", outer.Internal)
	}
	if outer.Error() != "Failed to fetch treasury data" {
		t.Errorf("outer message leaked detail: %q", outer.Error())
	}
}
