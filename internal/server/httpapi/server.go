// Package httpapi exposes the blog service over HTTP. Principal resolution,
// CORS and status-code mapping live here; everything stateful is delegated
// to the services.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
)

type HTTPServer struct {
	address    string
	users      *services.UserService
	posts      *services.PostService
	logger     logging.Logger
	corsOrigin string
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService, ps *services.PostService, corsOrigin string) (*HTTPServer, error) {
	return &HTTPServer{
		address:    a,
		logger:     l.With("module", "http_server"),
		users:      us,
		posts:      ps,
		corsOrigin: corsOrigin,
	}, nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /blog/register", s.handleRegister)
	mux.HandleFunc("POST /blog/login", s.handleLogin)
	mux.HandleFunc("POST /blog/logout", s.handleLogout)
	mux.HandleFunc("GET /blog/profile", s.requireAuth(s.handleProfile))

	mux.HandleFunc("POST /blog/post", s.requireAuth(s.handleCreatePost))
	mux.HandleFunc("PUT /blog/update/{id}", s.requireAuth(s.handleUpdatePost))
	mux.HandleFunc("DELETE /blog/delete/{id}", s.requireAuth(s.handleDeletePost))

	mux.HandleFunc("GET /blog/post", s.handleListPosts)
	mux.HandleFunc("GET /post/{id}/cover", s.handleGetCover)
	mux.HandleFunc("GET /post/{id}", s.handleGetPost)

	return s.cors(mux)
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
