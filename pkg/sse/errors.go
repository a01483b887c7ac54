package sse

import (
	"net/http"

	"github.com/Abraxas-365/mosaic/pkg/errx"
)

var sseErrors = errx.NewRegistry("SSE")

var (
	CodeUnknownKind = sseErrors.Register("UNKNOWN_KIND", errx.TypeInternal, http.StatusInternalServerError, "Unknown event kind")
	CodeWriteFailed = sseErrors.Register("WRITE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Event stream write failed")
)

// ErrUnknownKind reports an event that has no wire encoding.
func ErrUnknownKind(k Kind) *errx.Error {
	return sseErrors.New(CodeUnknownKind).WithDetail("kind", string(k))
}

// IsWriteFailed reports whether err came from a broken output stream.
func IsWriteFailed(err error) bool {
	return errx.Is(err, sseErrors.New(CodeWriteFailed))
}
