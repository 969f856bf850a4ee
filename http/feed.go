package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quill/errs"
)

func (s *Server) registerFeedRoutes(r *mux.Router) {
	// The home feed, visible to everyone.
	r.HandleFunc("/", s.handleHomeFeed).Methods("GET")

	// The feed of one group.
	r.HandleFunc("/group/{slug}", s.handleGroupFeed).Methods("GET")

	// The feed of one author's profile.
	r.HandleFunc("/profile/{username}", s.handleProfileFeed).Methods("GET")

	// The followed-authors-only feed of the logged in user.
	r.HandleFunc("/follow", s.requireAuth(s.handleFollowingFeed)).Methods("GET")
}

// parsePage reads the "page" query parameter. Anything unparsable falls
// back to the first page; out-of-range numbers are clamped later by the
// pagination helper, so feed urls never 404 over a page number.
func parsePage(r *http.Request) int {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			page = n
		}
	}
	return page
}

// handleHomeFeed handles the route "GET /".
// It returns the global feed: all posts, newest first.
func (s *Server) handleHomeFeed(w http.ResponseWriter, r *http.Request) {
	viewer := s.getUserFromContext(r.Context())

	feed, err := s.feeds.Home(viewer, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(feed); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleGroupFeed handles the route "GET /group/{slug}".
// It returns the posts published into the group, newest first.
func (s *Server) handleGroupFeed(w http.ResponseWriter, r *http.Request) {
	viewer := s.getUserFromContext(r.Context())
	slug := mux.Vars(r)["slug"]

	feed, err := s.feeds.ByGroup(viewer, slug, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(feed); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleProfileFeed handles the route "GET /profile/{username}".
// It returns the author's posts, newest first, along with the follow
// facts the client needs to render the follow button.
func (s *Server) handleProfileFeed(w http.ResponseWriter, r *http.Request) {
	viewer := s.getUserFromContext(r.Context())
	username := mux.Vars(r)["username"]

	feed, err := s.feeds.Profile(viewer, username, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(feed); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleFollowingFeed handles the route "GET /follow".
// It returns the posts of the authors the logged in user follows.
// Following nobody means an empty feed, not an error.
func (s *Server) handleFollowingFeed(w http.ResponseWriter, r *http.Request) {
	viewer := s.getUserFromContext(r.Context())

	feed, err := s.feeds.Following(viewer.ID, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(feed); err != nil {
		errs.LogError(r, err)
		return
	}
}
