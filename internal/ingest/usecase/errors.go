package usecase

import (
	"context"
	"errors"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
)

var (
	ErrNoFile         = errors.New("no file selected")
	ErrMalformedCSV   = errors.New("malformed csv")
	ErrPostProcessing = errors.New("post-processing failed")
	ErrInvalidLadder  = errors.New("invalid storage ladder")
)

// ParseError is returned when the file cannot be read as CSV.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedCSV
}

// PostProcessingError is returned when the summary of a parsed file cannot be
// computed or rendered.
type PostProcessingError struct {
	Err error
}

func (e *PostProcessingError) Error() string {
	return e.Err.Error()
}

func (e *PostProcessingError) Unwrap() error {
	return e.Err
}

func (e *PostProcessingError) Is(target error) bool {
	return target == ErrPostProcessing
}

func errorKind(err error) entity.ErrorKind {
	switch {
	case err == nil:
		return entity.ErrorKindNone
	case errors.Is(err, ErrPostProcessing):
		return entity.ErrorKindPostProcessing
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return entity.ErrorKindCanceled
	default:
		return entity.ErrorKindParse
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewNotFound("upload not found")
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	if perr, ok := pkgerror.As(err); ok {
		return perr
	}
	return pkgerror.NewServer(err)
}
