package chat

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/sse"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// Handler serves the chat endpoint.
type Handler struct {
	relay       *Relay
	maxDuration time.Duration
	ready       func() error
}

// NewHandler creates a chat handler. ready is checked before every stream
// and its error is returned as a JSON response; nil means always ready.
func NewHandler(relay *Relay, maxDuration time.Duration, ready func() error) *Handler {
	if maxDuration <= 0 {
		maxDuration = 60 * time.Second
	}
	return &Handler{relay: relay, maxDuration: maxDuration, ready: ready}
}

// RegisterRoutes mounts the handler under router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Post("/chat", h.Chat)
}

// Chat validates the request, then answers with an event stream. Failures
// before the stream starts are JSON errors; after that they are in-band.
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return chatErrors.NewWithCause(ErrInvalidRequest, err)
	}
	req.Message = strings.TrimSpace(req.Message)
	req.ThreadID = strings.TrimSpace(req.ThreadID)
	if req.Message == "" {
		return chatErrors.New(ErrInvalidRequest)
	}
	if h.ready != nil {
		if err := h.ready(); err != nil {
			return err
		}
	}

	requestID := c.GetRespHeader(fiber.HeaderXRequestID)
	logx.WithFields(logx.Fields{
		"request_id": requestID,
		"thread_id":  req.ThreadID,
	}).Info("💬 Chat request")

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), h.maxDuration)
		defer cancel()
		ctx = logx.ContextWithRequestID(ctx, requestID)

		out := sse.NewWriter(w, w.Flush)
		err := h.relay.Stream(ctx, req, out)

		entry := logx.WithContext(ctx).WithField("events", out.Count())
		switch {
		case sse.IsWriteFailed(err):
			entry.WithError(err).Info("Client went away mid-stream")
		case err != nil:
			entry.WithError(err).Debug("Chat stream ended with error")
		default:
			entry.Debug("Chat stream finished")
		}
	}))
	return nil
}
