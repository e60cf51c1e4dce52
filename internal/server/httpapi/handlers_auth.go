package httpapi

import (
	"encoding/json"
	"net/http"
)

type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserName == "" || req.Password == "" {
		s.writeError(r.Context(), w, http.StatusBadRequest, "username and password are required")
		return
	}

	_, err := s.users.Register(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", req.UserName)
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := s.users.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	setTokenCookie(w, token, 0)
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"id":       user.ID,
		"username": user.UserName,
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	setTokenCookie(w, "", -1)
	s.writeJSON(r.Context(), w, http.StatusOK, "ok")
}

func (s *HTTPServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"id": principalID(r.Context()),
	})
}
