package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/assets"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
)

// Draft carries the mutable metadata fields of a post.
type Draft struct {
	Title   string
	Summary string
	Content string
}

// Upload is an inbound cover image: the original filename plus the byte
// stream. The stream is consumed exactly once.
type Upload struct {
	Filename string
	Body     io.Reader
}

// PostService couples the post metadata store to the asset store. It is the
// only code path that mutates a cover reference, which keeps the ordering
// guarantees in one place:
//
//   - a post never references an asset that is not fully written;
//   - on replacement, the new asset is durable before the old one is deleted;
//   - the old asset is deleted before the post row switches to the new id.
//
// There is no cross-store transaction. A metadata failure after a completed
// upload leaves the uploaded asset orphaned; orphans are reclaimed by
// SweepOrphans, not rolled back inline.
type PostService struct {
	repo   posts.Repository
	assets assets.Store
	logger logging.Logger
}

func NewPostService(repo posts.Repository, store assets.Store, logger logging.Logger) *PostService {
	return &PostService{
		repo:   repo,
		assets: store,
		logger: logger.With("module", "post_service"),
	}
}

// Create writes a new post. When an upload is supplied, the asset is fully
// stored first and the post is created already pointing at it; an upload
// failure aborts the operation with no post written.
func (s *PostService) Create(ctx context.Context, authorID string, draft Draft, upload *Upload) (*models.Post, error) {

	var cover assets.ID
	if upload != nil {
		id, err := s.assets.Put(ctx, upload.Filename, upload.Body)
		if err != nil {
			return nil, fmt.Errorf("uploading cover: %w", err)
		}
		cover = id
	}

	post := &models.Post{
		Title:    draft.Title,
		Summary:  draft.Summary,
		Content:  draft.Content,
		Cover:    cover.String(),
		AuthorID: authorID,
	}

	post, err := s.repo.Create(ctx, post)
	if err != nil {
		if cover != "" {
			// The asset is durable but unreferenced now. Left for the
			// sweeper; deleting here could race a concurrent retry.
			s.logger.Warn(ctx, "post create failed after upload, asset orphaned",
				"asset_id", cover.String())
		}
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	return post, nil
}

// Update edits a post owned by principalID. Without an upload only the
// metadata fields change and the cover reference is left untouched. With an
// upload, the replacement asset is stored first; only then is the previous
// asset deleted and the post row rewritten with the new id.
func (s *PostService) Update(ctx context.Context, principalID, postID string, draft Draft, upload *Upload) (*models.Post, error) {

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != principalID {
		return nil, common.ErrNotAuthor
	}

	post.Title = draft.Title
	post.Summary = draft.Summary
	post.Content = draft.Content

	if upload != nil {
		newCover, err := s.assets.Put(ctx, upload.Filename, upload.Body)
		if err != nil {
			// old asset and post row are untouched
			return nil, fmt.Errorf("uploading replacement cover: %w", err)
		}

		if post.Cover != "" {
			if err := s.assets.Delete(ctx, assets.ID(post.Cover)); err != nil &&
				!errors.Is(err, common.ErrAssetNotFound) {
				s.logger.Warn(ctx, "failed to delete replaced cover",
					"asset_id", post.Cover, "error", err.Error())
			}
		}

		post.Cover = newCover.String()
	}

	post, err = s.repo.Update(ctx, post)
	if err != nil {
		return nil, err
	}

	return post, nil
}

// Delete removes a post owned by principalID and its cover asset. The asset
// goes first; if the subsequent row delete fails, the post is left pointing
// at a gone asset until an operator intervenes.
func (s *PostService) Delete(ctx context.Context, principalID, postID string) error {

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != principalID {
		return common.ErrNotAuthor
	}

	if post.Cover != "" {
		if err := s.assets.Delete(ctx, assets.ID(post.Cover)); err != nil &&
			!errors.Is(err, common.ErrAssetNotFound) {
			return fmt.Errorf("deleting cover: %w", err)
		}
	}

	return s.repo.Delete(ctx, postID)
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	return s.repo.GetByID(ctx, postID)
}

func (s *PostService) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.repo.ListRecent(ctx, limit)
}

// OpenCover validates the raw id and returns the asset's byte stream.
func (s *PostService) OpenCover(ctx context.Context, rawID string) (io.ReadCloser, error) {
	id, err := assets.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.assets.Get(ctx, id)
}

// SweepOrphans deletes assets referenced by no post. Only assets older than
// minAge are touched so uploads still in flight are never reclaimed.
// Returns the number of assets deleted.
func (s *PostService) SweepOrphans(ctx context.Context, minAge time.Duration) (int, error) {

	covers, err := s.repo.CoverIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing cover references: %w", err)
	}

	referenced := make(map[assets.ID]struct{}, len(covers))
	for _, c := range covers {
		referenced[assets.ID(c)] = struct{}{}
	}

	cutoff := time.Now().Add(-minAge)

	var orphans []assets.ID
	err = s.assets.List(ctx, func(id assets.ID, createdAt time.Time) error {
		if _, ok := referenced[id]; ok {
			return nil
		}
		if createdAt.After(cutoff) {
			return nil
		}
		orphans = append(orphans, id)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("listing assets: %w", err)
	}

	deleted := 0
	for _, id := range orphans {
		if err := s.assets.Delete(ctx, id); err != nil {
			if errors.Is(err, common.ErrAssetNotFound) {
				continue
			}
			return deleted, fmt.Errorf("deleting orphan %s: %w", id, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info(ctx, "swept orphaned assets", "count", deleted)
	}

	return deleted, nil
}
