package fsx

import (
	"context"
	"path"
	"strings"
	"time"
)

// FileInfo represents information about a stored document
type FileInfo struct {
	Name        string    // Base name of the file
	Size        int64     // File size in bytes
	ModTime     time.Time // Modification time
	ContentType string    // MIME type guessed from the extension
}

// FileReader provides read-only access to documents under a single root.
// Paths are slash separated and relative to that root.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// Clean normalizes a relative document path and rejects anything that would
// resolve outside the root.
func Clean(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	cleaned := path.Clean("/" + p)
	if cleaned == "/" || strings.Contains(p, "\x00") {
		return "", ErrInvalidPath(p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath(p)
		}
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}

// DetectContentType guesses the MIME type from the file extension
func DetectContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".json":
		return "application/json"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
