package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quill/domain"
	"quill/errs"
)

func (s *Server) registerGroupRoutes(r *mux.Router) {
	r.HandleFunc("/groups", s.handleListGroups).Methods("GET")
	r.HandleFunc("/group", s.requireAuth(s.handleCreateGroup)).Methods("POST")
}

type groupRequest struct {
	Title       string `json:"title" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
}

// handleListGroups handles the route "GET /groups".
// It returns the group directory.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.gs.All()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(groups); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCreateGroup handles the route "POST /group".
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "A group needs a title and a slug."))
		return
	}

	group := domain.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := s.gs.Create(&group); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&group); err != nil {
		errs.LogError(r, err)
		return
	}
}
