// Package assets implements durable storage for binary cover images.
//
// Assets are addressed by an opaque ID and written as a finite byte stream.
// Put returns only after the stream is fully consumed and flushed, so a
// returned ID is always safe to reference from a post record. A failed or
// interrupted write never produces a retrievable ID.
package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/google/uuid"
)

// ID is the opaque identifier of a stored asset.
type ID string

func (id ID) String() string { return string(id) }

// idPattern matches ids produced by NewID: a nanosecond timestamp, a UUID,
// and an optional file extension.
var idPattern = regexp.MustCompile(`^[0-9]+-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-zA-Z0-9]+)?$`)

var extPattern = regexp.MustCompile(`^\.[a-zA-Z0-9]+$`)

// NewID derives a fresh id from a time-based seed plus the original
// filename's extension. The extension is kept for collision avoidance and
// operator convenience, not for security.
func NewID(filename string) ID {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return ID(fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New(), ext))
}

// ParseID validates a raw identifier before it reaches a store.
// Malformed input fails with common.ErrInvalidID.
func ParseID(s string) (ID, error) {
	if !idPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidID, s)
	}
	return ID(s), nil
}

// Store is durable storage for arbitrarily large binary objects.
//
// Implementations must not return from Put until the stream has been fully
// consumed and flushed; partial writes must not leave a retrievable id
// behind. Get returns a lazily-produced, non-restartable byte stream.
// Delete is treated as idempotent by callers that tolerate
// common.ErrAssetNotFound.
type Store interface {
	Put(ctx context.Context, filename string, r io.Reader) (ID, error)
	Get(ctx context.Context, id ID) (io.ReadCloser, error)
	Delete(ctx context.Context, id ID) error

	// List calls fn for every stored asset with its creation time.
	// It exists for the orphan sweeper; ordering is unspecified.
	List(ctx context.Context, fn func(id ID, createdAt time.Time) error) error

	Close() error
}
