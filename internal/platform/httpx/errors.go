// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by every service. Wrap them with %w to pick the
// response status.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

type errorMapping struct {
	target error
	status int
	title  string
}

// Order matters: the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrDuplicate, http.StatusConflict, "Duplicate"},
	{ErrConflict, http.StatusConflict, "Conflict"},
	{ErrValidation, http.StatusBadRequest, "Validation Failed"},
	{ErrForbidden, http.StatusForbidden, "Forbidden"},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
}

func problemFor(err error) ProblemDetail {
	var verr ValidationErrors
	if errors.As(err, &verr) {
		return ProblemDetail{Title: "Validation Failed", Status: http.StatusBadRequest, Detail: verr.Error(), Fields: verr}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return ProblemDetail{Title: m.title, Status: m.status, Detail: err.Error()}
		}
	}
	// Internal errors never leak their text.
	return ProblemDetail{Title: "Internal Error", Status: http.StatusInternalServerError}
}

// RespondError maps domain errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	writeProblem(w, problemFor(err))
}
