package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quill/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/profile/{username}/follow", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/profile/{username}/unfollow", s.requireAuth(s.handleDeleteFollow)).Methods("DELETE")
}

// followResponse tells the client the end state of the relationship and
// whether this request changed anything. Repeated requests report
// Changed=false but are never errors.
type followResponse struct {
	Following bool `json:"following"`
	Changed   bool `json:"changed"`
}

// handleCreateFollow handles the route "POST /profile/{username}/follow".
// The logged in user starts following the author. Idempotent.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	created, err := s.fs.Follow(user.ID, author.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.feeds.Invalidate("profile:"+username, "following:"+strconv.Itoa(user.ID))

	resp := followResponse{Following: true, Changed: created}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleDeleteFollow handles the route "DELETE /profile/{username}/unfollow".
// The logged in user stops following the author. Unfollowing someone who
// was never followed is a silent success.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	deleted, err := s.fs.Unfollow(user.ID, author.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.feeds.Invalidate("profile:"+username, "following:"+strconv.Itoa(user.ID))

	resp := followResponse{Following: false, Changed: deleted}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		errs.LogError(r, err)
		return
	}
}
