// Package posts persists post metadata records.
package posts

import (
	"context"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// DefaultListLimit bounds ListRecent when the caller passes a non-positive
// limit.
const DefaultListLimit = 10

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)

	// GetByID returns the post with its author reference expanded, or
	// common.ErrPostNotFound.
	GetByID(ctx context.Context, id string) (*models.Post, error)

	// Update rewrites title, summary, content and cover of an existing post.
	Update(ctx context.Context, post *models.Post) (*models.Post, error)

	Delete(ctx context.Context, id string) error

	// ListRecent returns at most limit posts sorted by creation time
	// descending, author expanded.
	ListRecent(ctx context.Context, limit int) ([]*models.Post, error)

	// CoverIDs returns every non-empty cover reference currently held by a
	// post. Used by the orphan sweeper.
	CoverIDs(ctx context.Context) ([]string, error)
}
