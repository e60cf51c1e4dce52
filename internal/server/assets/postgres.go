package assets

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
)

// ChunkSize is the size of one asset_chunks row. Streams are split into
// chunks of at most this many bytes.
const ChunkSize = 256 * 1024

// PostgresStore keeps assets chunked across the assets and asset_chunks
// tables. The whole write happens inside a single transaction, so an
// interrupted upload rolls back and never yields a retrievable id.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, filename string, r io.Reader) (ID, error) {

	id := NewID(filename)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		_, err := tx.ExecContext(ctx,
			`INSERT INTO assets (id, filename) VALUES ($1, $2)`, id, filename)
		if err != nil {
			return fmt.Errorf("inserting asset row: %w", err)
		}

		var size int64
		buf := make([]byte, ChunkSize)
		for seq := 0; ; seq++ {
			n, rerr := io.ReadFull(r, buf)
			if n > 0 {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO asset_chunks (asset_id, seq, data) VALUES ($1, $2, $3)`,
					id, seq, buf[:n])
				if err != nil {
					return fmt.Errorf("inserting chunk %d: %w", seq, err)
				}
				size += int64(n)
			}
			if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
				break
			}
			if rerr != nil {
				return fmt.Errorf("reading stream: %w", rerr)
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE assets SET size = $1 WHERE id = $2`, size, id)
		if err != nil {
			return fmt.Errorf("updating asset size: %w", err)
		}

		return nil
	})

	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStoreWrite, err)
	}

	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id ID) (io.ReadCloser, error) {

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM assets WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking asset: %w", err)
	}
	if !exists {
		return nil, common.ErrAssetNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM asset_chunks WHERE asset_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	return &chunkReader{rows: rows}, nil
}

// chunkReader streams chunk rows lazily through the io.ReadCloser returned
// by Get. The underlying rows stay open until Close.
type chunkReader struct {
	rows *sql.Rows
	rest []byte
	done bool
}

func (c *chunkReader) Read(p []byte) (int, error) {
	for len(c.rest) == 0 {
		if c.done {
			return 0, io.EOF
		}
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		if err := c.rows.Scan(&c.rest); err != nil {
			return 0, err
		}
	}
	n := copy(p, c.rest)
	c.rest = c.rest[n:]
	return n, nil
}

func (c *chunkReader) Close() error {
	return c.rows.Close()
}

func (s *PostgresStore) Delete(ctx context.Context, id ID) error {

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		_, err := tx.ExecContext(ctx,
			`DELETE FROM asset_chunks WHERE asset_id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting chunks: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting asset: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n == 0 {
			return common.ErrAssetNotFound
		}

		return nil
	})
}

func (s *PostgresStore) List(ctx context.Context, fn func(id ID, createdAt time.Time) error) error {

	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at FROM assets`)
	if err != nil {
		return fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        ID
			createdAt time.Time
		)
		if err := rows.Scan(&id, &createdAt); err != nil {
			return err
		}
		if err := fn(id, createdAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close is a no-op: the *sql.DB is owned by the repository manager and is
// closed with it on shutdown.
func (s *PostgresStore) Close() error { return nil }

var _ Store = (*PostgresStore)(nil)
