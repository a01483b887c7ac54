package knowledge

import (
	"net/http"

	"github.com/Abraxas-365/mosaic/pkg/errx"
)

var knowledgeErrors = errx.NewRegistry("KNOWLEDGE")

var (
	ErrNoFile       = knowledgeErrors.Register("NO_FILE", errx.TypeValidation, http.StatusBadRequest, "No file provided")
	ErrEmptyFile    = knowledgeErrors.Register("EMPTY_FILE", errx.TypeValidation, http.StatusBadRequest, "Uploaded file is empty")
	ErrFileTooLarge = knowledgeErrors.Register("FILE_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
	ErrReadFailed   = knowledgeErrors.Register("READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read uploaded file")
	ErrUploadFailed = knowledgeErrors.Register("UPLOAD_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to upload file")
	ErrIndexFailed  = knowledgeErrors.Register("INDEX_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to prepare knowledge index")
	ErrAttachFailed = knowledgeErrors.Register("ATTACH_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to attach file to knowledge index")
)
