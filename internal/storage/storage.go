package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Storage accepts uploads keyed by path and returns a URL the file can be fetched from.
type Storage interface {
	Save(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
}

// Options selects and configures a driver.
type Options struct {
	Driver        string // "local" or "s3"
	LocalPath     string
	PublicBaseURL string
	S3Region      string
	S3Bucket      string
}

// New builds the driver named by opts.Driver.
func New(opts Options, log *zap.Logger) (Storage, error) {
	switch opts.Driver {
	case "", "local":
		return NewLocalStorage(opts.LocalPath, opts.PublicBaseURL+"/uploads", log)
	case "s3":
		if opts.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is not set")
		}
		return NewS3Client(opts.S3Region, opts.S3Bucket)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
