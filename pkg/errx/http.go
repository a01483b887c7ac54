package errx

import (
	"github.com/gofiber/fiber/v2"
)

// HTTPErrorResponse is the JSON body written for failed requests.
// The error key mirrors the in-band SSE error payload.
type HTTPErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	Type      string                 `json:"type"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an Error to an HTTPErrorResponse
func (e *Error) ToHTTPResponse() HTTPErrorResponse {
	resp := HTTPErrorResponse{
		Error: e.Message,
		Code:  e.Code,
		Type:  string(e.Type),
	}
	if len(e.Details) > 0 {
		resp.Details = e.Details
	}
	return resp
}

// Respond writes err as a JSON response. Fiber errors keep their status,
// anything unknown becomes a 500.
func Respond(c *fiber.Ctx, err error) error {
	requestID := c.GetRespHeader(fiber.HeaderXRequestID)

	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(HTTPErrorResponse{
			Error:     fe.Message,
			Code:      "HTTP_ERROR",
			Type:      string(TypeValidation),
			RequestID: requestID,
		})
	}

	var e *Error
	if As(err, &e) {
		resp := e.ToHTTPResponse()
		resp.RequestID = requestID
		return c.Status(e.HTTPStatus).JSON(resp)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(HTTPErrorResponse{
		Error:     "Internal Server Error",
		Code:      "INTERNAL_ERROR",
		Type:      string(TypeInternal),
		RequestID: requestID,
	})
}
