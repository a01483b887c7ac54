package chat

import (
	"net/http"

	"github.com/Abraxas-365/mosaic/pkg/errx"
)

var chatErrors = errx.NewRegistry("CHAT")

var (
	ErrInvalidRequest   = chatErrors.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Message is required")
	ErrGenerationFailed = chatErrors.Register("GENERATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Assistant run failed")
	ErrTooManyRounds    = chatErrors.Register("TOO_MANY_TOOL_ROUNDS", errx.TypeExternal, http.StatusBadGateway, "Assistant requested too many tool rounds")
	ErrTimeout          = chatErrors.Register("TIMEOUT", errx.TypeExternal, http.StatusGatewayTimeout, "Request timed out")
	ErrInvalidArguments = chatErrors.Register("INVALID_ARGUMENTS", errx.TypeValidation, http.StatusBadRequest, "Invalid tool arguments")
	ErrResumeNotFound   = chatErrors.Register("RESUME_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Resume file not found on server.")
)
