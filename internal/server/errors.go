package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-optimizer/internal/extraction"
	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
	"github.com/jonathan/resume-optimizer/internal/workflow"
)

// HTTPStatus returns the appropriate HTTP status code for a domain error.
func HTTPStatus(err error) int {
	var (
		fileTypeErr    *workflow.FileTypeError
		validationErr  *workflow.ValidationError
		unsupportedErr *extraction.UnsupportedTypeError
		extractionErr  *extraction.Error
		optimizerErr   *optimizer.Error
		fetchErr       *fetch.Error
	)

	switch {
	case errors.As(err, &fileTypeErr), errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrBusy),
		errors.Is(err, workflow.ErrNoResult),
		errors.Is(err, workflow.ErrAborted):
		return http.StatusConflict
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &optimizerErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
