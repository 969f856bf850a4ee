package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quill/domain"
	"quill/errs"
)

func (s *Server) registerCommentRoutes(r *mux.Router) {
	r.HandleFunc("/post/{id:[0-9]+}/comment", s.requireAuth(s.handleCreateComment)).Methods("POST")
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

// handleCreateComment handles the route "POST /post/{id}/comment".
// It attaches a comment by the logged in user to the post.
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Comment text must not be empty."))
		return
	}

	user := s.getUserFromContext(r.Context())
	comment := domain.Comment{
		Text:   req.Text,
		UserID: user.ID,
		PostID: id,
	}
	if err := s.cs.Create(&comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&comment); err != nil {
		errs.LogError(r, err)
		return
	}
}
