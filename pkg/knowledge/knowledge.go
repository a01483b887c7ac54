// Package knowledge adds documents to the assistant's knowledge index.
package knowledge

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/metricx"
)

// IndexCache remembers the last index seen for each assistant.
type IndexCache interface {
	// Get returns the cached index id; ok is false on a miss.
	Get(ctx context.Context, assistantID string) (indexID string, ok bool, err error)
	Set(ctx context.Context, assistantID, indexID string) error
}

// MemoryCache is a process-local IndexCache.
type MemoryCache struct {
	mu      sync.RWMutex
	indexes map[string]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{indexes: make(map[string]string)}
}

func (m *MemoryCache) Get(_ context.Context, assistantID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.indexes[assistantID]
	return id, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, assistantID, indexID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[assistantID] = indexID
	return nil
}

// Service runs the upload pipeline: store the file, make sure the
// assistant has an index, attach the file to it.
type Service struct {
	store       assistant.DocumentStore
	cache       IndexCache
	assistantID string
}

// NewService creates a Service. A nil cache means an in-memory one.
func NewService(store assistant.DocumentStore, cache IndexCache, assistantID string) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{store: store, cache: cache, assistantID: assistantID}
}

// Upload adds one document and returns its file id.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (fileID string, err error) {
	defer func() { metricx.RecordUpload(err == nil) }()

	if len(data) == 0 {
		return "", knowledgeErrors.New(ErrEmptyFile)
	}
	filename = sanitizeName(filename)

	indexID, err := s.index(ctx)
	if err != nil {
		return "", err
	}

	fileID, err = s.store.UploadFile(ctx, filename, data)
	if err != nil {
		return "", knowledgeErrors.NewWithCause(ErrUploadFailed, err).WithDetail("filename", filename)
	}

	if err := s.store.Attach(ctx, indexID, fileID); err != nil {
		return "", knowledgeErrors.NewWithCause(ErrAttachFailed, err).
			WithDetail("file_id", fileID).
			WithDetail("index_id", indexID)
	}

	logx.WithContext(ctx).WithFields(logx.Fields{
		"file_id":  fileID,
		"index_id": indexID,
		"filename": filename,
		"bytes":    len(data),
	}).Info("📚 Document added to knowledge index")
	return fileID, nil
}

// index resolves the assistant's current index on every upload; the index
// can be replaced out of band. The cache keeps the last id seen so a
// replacement is noticed and recorded.
func (s *Service) index(ctx context.Context) (string, error) {
	id, err := s.store.EnsureIndex(ctx, s.assistantID)
	if err != nil {
		return "", knowledgeErrors.NewWithCause(ErrIndexFailed, err)
	}

	log := logx.WithContext(ctx).WithField("assistant_id", s.assistantID)
	prev, ok, err := s.cache.Get(ctx, s.assistantID)
	if err != nil {
		log.WithError(err).Warn("Index cache lookup failed")
	}
	if ok && prev == id {
		return id, nil
	}
	if ok {
		log.WithFields(logx.Fields{"previous": prev, "current": id}).Info("Knowledge index replaced")
	}
	if err := s.cache.Set(ctx, s.assistantID, id); err != nil {
		log.WithError(err).Warn("Index cache store failed")
	}
	return id, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}
