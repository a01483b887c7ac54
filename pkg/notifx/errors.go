package notifx

import (
	"net/http"

	"github.com/Abraxas-365/mosaic/pkg/errx"
)

var notifxErrors = errx.NewRegistry("NOTIFX")

var (
	ErrInvalidMessage   = notifxErrors.Register("INVALID_MESSAGE", errx.TypeValidation, http.StatusBadRequest, "Invalid email message")
	ErrInvalidAddress   = notifxErrors.Register("INVALID_ADDRESS", errx.TypeValidation, http.StatusBadRequest, "Invalid email address")
	ErrTemplateNotFound = notifxErrors.Register("TEMPLATE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Email template not found")
	ErrTemplateParse    = notifxErrors.Register("TEMPLATE_PARSE", errx.TypeValidation, http.StatusBadRequest, "Failed to parse email template")
	ErrTemplateRender   = notifxErrors.Register("TEMPLATE_RENDER", errx.TypeInternal, http.StatusInternalServerError, "Failed to render email template")
	ErrBuildMessage     = notifxErrors.Register("BUILD_MESSAGE", errx.TypeInternal, http.StatusInternalServerError, "Failed to build MIME message")
	ErrNoProvider       = notifxErrors.Register("NO_PROVIDER", errx.TypeConfiguration, http.StatusInternalServerError, "No email provider configured")
)
