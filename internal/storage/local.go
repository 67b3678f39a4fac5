package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type LocalStorage struct {
	basePath string
	baseURL  string
	log      *zap.Logger
}

func NewLocalStorage(basePath, baseURL string, log *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/"), log: log}, nil
}

// BasePath is the directory uploads are written under.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) Save(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	clean := filepath.Clean("/" + path)
	fullPath := filepath.Join(s.basePath, clean)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	s.log.Info("file stored", zap.String("path", fullPath), zap.Int64("size", size))
	return s.baseURL + filepath.ToSlash(clean), nil
}
