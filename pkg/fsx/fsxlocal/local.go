package fsxlocal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Abraxas-365/mosaic/pkg/fsx"
)

// LocalFileSystem implements fsx.FileReader over a directory on disk
type LocalFileSystem struct {
	basePath string // Root directory for all lookups
}

// NewLocalFileSystem creates a reader rooted at basePath, e.g. "./documents".
// The directory does not need to exist yet; lookups report not found.
func NewLocalFileSystem(basePath string) (*LocalFileSystem, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return &LocalFileSystem{basePath: absPath}, nil
}

func (fs *LocalFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := fs.fullPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fsx.ErrNotFound(path)
		}
		return nil, fsx.ErrReadFailed(path, err)
	}
	return data, nil
}

func (fs *LocalFileSystem) Stat(ctx context.Context, path string) (fsx.FileInfo, error) {
	fullPath, err := fs.fullPath(path)
	if err != nil {
		return fsx.FileInfo{}, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fsx.FileInfo{}, fsx.ErrNotFound(path)
		}
		return fsx.FileInfo{}, fsx.ErrReadFailed(path, err)
	}
	if info.IsDir() {
		return fsx.FileInfo{}, fsx.ErrNotFound(path)
	}

	return fsx.FileInfo{
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: fsx.DetectContentType(info.Name()),
	}, nil
}

func (fs *LocalFileSystem) Exists(ctx context.Context, path string) (bool, error) {
	_, err := fs.Stat(ctx, path)
	if err != nil {
		if fsx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// BasePath returns the resolved root directory
func (fs *LocalFileSystem) BasePath() string {
	return fs.basePath
}

func (fs *LocalFileSystem) fullPath(path string) (string, error) {
	rel, err := fsx.Clean(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(fs.basePath, filepath.FromSlash(rel)), nil
}
