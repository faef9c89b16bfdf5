// Package fingerprint computes the content fingerprints used to compare trees.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sdejongh/replicator/pkg/storage"
)

// DefaultBufferSize is the read buffer used when hashing files.
const DefaultBufferSize = 64 * 1024

// Hasher computes SHA-256 fingerprints of file contents using pooled buffers
type Hasher struct {
	bufferPool *sync.Pool
}

// NewHasher creates a hasher reading files in chunks of bufferSize bytes
func NewHasher(bufferSize int) *Hasher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &Hasher{
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// HashBytes returns the hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// HashDirectory returns the fingerprint of a directory given the fingerprints
// of its immediate children, already ordered by child name.
func HashDirectory(childFingerprints []string) string {
	return HashBytes([]byte(strings.Join(childFingerprints, "")))
}

// HashReader streams r through SHA-256. The result equals HashBytes over the
// same bytes.
func (h *Hasher) HashReader(ctx context.Context, r io.Reader) (string, error) {
	return h.hash(ctx, r)
}

// HashFile fingerprints the file at path on backend
func (h *Hasher) HashFile(ctx context.Context, backend storage.Backend, path string) (string, error) {
	reader, err := backend.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	return h.hash(ctx, reader)
}

func (h *Hasher) hash(ctx context.Context, r io.Reader) (string, error) {
	hasher := sha256.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := r.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
