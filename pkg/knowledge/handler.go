package knowledge

import (
	"io"

	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId"`
}

// Handler serves document uploads.
type Handler struct {
	svc      *Service
	maxBytes int64
	ready    func() error
}

// NewHandler creates an upload handler accepting files up to maxBytes.
func NewHandler(svc *Service, maxBytes int64, ready func() error) *Handler {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Handler{svc: svc, maxBytes: maxBytes, ready: ready}
}

// RegisterRoutes mounts the handler under router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Post("/upload", h.Upload)
}

// Upload reads the multipart field "file" and adds it to the knowledge index.
func (h *Handler) Upload(c *fiber.Ctx) error {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			return err
		}
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return knowledgeErrors.NewWithCause(ErrNoFile, err)
	}
	if fh.Size > h.maxBytes {
		return knowledgeErrors.New(ErrFileTooLarge).
			WithDetail("size", fh.Size).
			WithDetail("max_bytes", h.maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return knowledgeErrors.NewWithCause(ErrReadFailed, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes))
	if err != nil {
		return knowledgeErrors.NewWithCause(ErrReadFailed, err)
	}

	fileID, err := h.svc.Upload(c.UserContext(), fh.Filename, data)
	if err != nil {
		logx.WithError(err).WithField("filename", fh.Filename).Warn("Upload failed")
		return err
	}
	return c.JSON(UploadResponse{Success: true, FileID: fileID})
}
