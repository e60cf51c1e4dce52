package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// validateID rejects ids that cannot be a posts primary key before they
// reach the uuid-typed column; Postgres would otherwise fail the statement
// with a syntax error instead of a clean not-found.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", common.ErrInvalidID, id)
	}
	return nil
}

// PostgresRepository implements post storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {

	query :=
		`INSERT INTO posts (title, summary, content, cover, author_id)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Summary, post.Content, post.Cover, post.AuthorID).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {

	if err := validateID(id); err != nil {
		return nil, err
	}

	query :=
		`SELECT p.id, p.title, p.summary, p.content, COALESCE(p.cover, ''),
		        p.author_id, p.created_at, p.updated_at, u.username
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1
		 `

	post := &models.Post{Author: &models.Author{}}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Summary, &post.Content, &post.Cover,
		&post.AuthorID, &post.CreatedAt, &post.UpdatedAt, &post.Author.UserName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrPostNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	post.Author.ID = post.AuthorID
	return post, nil
}

// Update rewrites the mutable fields of one post. The row update is atomic;
// no other row is touched.
func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {

	if err := validateID(post.ID); err != nil {
		return nil, err
	}

	query :=
		`UPDATE posts
		 SET title = $1, summary = $2, content = $3, cover = NULLIF($4, ''),
		     updated_at = now()
		 WHERE id = $5
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Summary, post.Content, post.Cover, post.ID).
		Scan(&post.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrPostNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	if err := validateID(id); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrPostNotFound
	}

	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {

	if limit <= 0 {
		limit = DefaultListLimit
	}

	query :=
		`SELECT p.id, p.title, p.summary, p.content, COALESCE(p.cover, ''),
		        p.author_id, p.created_at, p.updated_at, u.username
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		post := &models.Post{Author: &models.Author{}}
		err := rows.Scan(
			&post.ID, &post.Title, &post.Summary, &post.Content, &post.Cover,
			&post.AuthorID, &post.CreatedAt, &post.UpdatedAt, &post.Author.UserName)
		if err != nil {
			return nil, err
		}
		post.Author.ID = post.AuthorID
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) CoverIDs(ctx context.Context) ([]string, error) {

	rows, err := r.db.QueryContext(ctx,
		`SELECT cover FROM posts WHERE cover IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to select covers: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var cover string
		if err := rows.Scan(&cover); err != nil {
			return nil, err
		}
		result = append(result, cover)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

var _ Repository = (*PostgresRepository)(nil)
