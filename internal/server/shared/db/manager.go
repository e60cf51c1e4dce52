// Package db owns the process-wide database handle. The manager is built
// once at startup, runs migrations, and is closed on shutdown.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Posts() posts.Repository
	Close() error
}
