package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
)

// maxUploadBytes caps the in-memory part of a multipart parse; larger
// uploads spill to temp files.
const maxUploadBytes = 32 << 20

// draftFromForm reads the metadata fields of a parsed multipart form and,
// when a cover file was sent, the upload. A request without a file part is
// valid and yields a nil upload. The returned closer, if any, must be closed
// after the service call.
func draftFromForm(r *http.Request) (services.Draft, *services.Upload, io.Closer, error) {

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return services.Draft{}, nil, nil, err
	}

	draft := services.Draft{
		Title:   r.FormValue("title"),
		Summary: r.FormValue("summary"),
		Content: r.FormValue("content"),
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return draft, nil, nil, nil
		}
		return services.Draft{}, nil, nil, err
	}

	upload := &services.Upload{
		Filename: header.Filename,
		Body:     file,
	}

	return draft, upload, file, nil
}

func (s *HTTPServer) handleCreatePost(w http.ResponseWriter, r *http.Request) {

	draft, upload, closer, err := draftFromForm(r)
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	post, err := s.posts.Create(r.Context(), principalID(r.Context()), draft, upload)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, post)
}

func (s *HTTPServer) handleUpdatePost(w http.ResponseWriter, r *http.Request) {

	draft, upload, closer, err := draftFromForm(r)
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	post, err := s.posts.Update(r.Context(), principalID(r.Context()), r.PathValue("id"), draft, upload)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, post)
}

func (s *HTTPServer) handleDeletePost(w http.ResponseWriter, r *http.Request) {

	if err := s.posts.Delete(r.Context(), principalID(r.Context()), r.PathValue("id")); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *HTTPServer) handleListPosts(w http.ResponseWriter, r *http.Request) {

	list, err := s.posts.ListRecent(r.Context(), posts.DefaultListLimit)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, list)
}

func (s *HTTPServer) handleGetPost(w http.ResponseWriter, r *http.Request) {

	post, err := s.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, post)
}

// handleGetCover streams asset bytes; the path id is the asset id as stored
// in a post's cover field. The stream is produced lazily and is not
// restartable, so range requests are not supported. A malformed id
// identifies no asset and is reported the same way as a missing one.
func (s *HTTPServer) handleGetCover(w http.ResponseWriter, r *http.Request) {

	assetID := r.PathValue("id")

	rc, err := s.posts.OpenCover(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, common.ErrInvalidID) {
			s.writeError(r.Context(), w, http.StatusNotFound, "asset not found")
			return
		}
		s.writeServiceError(r.Context(), w, err)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(filepath.Ext(assetID)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn(r.Context(), "cover stream aborted", "asset_id", assetID, "error", err.Error())
	}
}
