// Package storage is the file storage abstraction behind the product image
// export. The "local" driver (default) writes to a directory; the "s3" driver
// targets S3-compatible object storage such as AWS S3 or MinIO.
//
//	m, err := storage.Connect(ctx)
//	disk, err := m.Use("s3")
//	err = disk.Put(ctx, "products/1.png", data)
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get when nothing is stored at the path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface. Paths are slash-separated and
// relative to the disk root.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(ctx context.Context, path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists every file under directory, recursively.
	Files(ctx context.Context, directory string) ([]string, error)

	// URL returns the public URL for path.
	URL(path string) string
}
