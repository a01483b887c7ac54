package fsx

import (
	"net/http"

	"github.com/Abraxas-365/mosaic/pkg/errx"
)

var fsErrors = errx.NewRegistry("FSX")

var (
	CodeNotFound    = fsErrors.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "File not found")
	CodeInvalidPath = fsErrors.Register("INVALID_PATH", errx.TypeValidation, http.StatusBadRequest, "Invalid file path")
	CodeReadFailed  = fsErrors.Register("READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read file")
)

// ErrNotFound reports a missing document
func ErrNotFound(path string) *errx.Error {
	return fsErrors.New(CodeNotFound).WithDetail("path", path)
}

// ErrInvalidPath reports a path that is empty or escapes the root
func ErrInvalidPath(path string) *errx.Error {
	return fsErrors.New(CodeInvalidPath).WithDetail("path", path)
}

// ErrReadFailed wraps a storage failure
func ErrReadFailed(path string, cause error) *errx.Error {
	return fsErrors.NewWithCause(CodeReadFailed, cause).WithDetail("path", path)
}

// IsNotFound reports whether err is a missing-document error
func IsNotFound(err error) bool {
	return errx.Is(err, fsErrors.New(CodeNotFound))
}
