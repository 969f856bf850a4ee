package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"quill/domain"
)

// Server provides the http functionality of this app, namely routing,
// request handling, and middleware. It performs authentication and
// authorization before handing things over to one of the crud services.
type Server struct {
	router   *mux.Router
	validate *validator.Validate

	us    domain.UserService
	gs    domain.GroupService
	ps    domain.PostService
	cs    domain.CommentService
	fs    domain.FollowService
	feeds domain.FeedService
	is    domain.ImageService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
// An empty csrfKey disables the CSRF middleware (tests, local tooling).
func NewServer(
	us domain.UserService,
	gs domain.GroupService,
	ps domain.PostService,
	cs domain.CommentService,
	fs domain.FollowService,
	feeds domain.FeedService,
	is domain.ImageService,
	csrfKey string,
	secure bool,
) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		validate: validator.New(),
		us:       us,
		gs:       gs,
		ps:       ps,
		cs:       cs,
		fs:       fs,
		feeds:    feeds,
		is:       is,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the content system.
	s.registerFeedRoutes(s.router)
	s.registerGroupRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerCommentRoutes(s.router)
	s.registerFollowRoutes(s.router)

	// Set up middleware that needs to run on every request.
	if csrfKey != "" {
		csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(secure), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	s.router.Use(setContentTypeJSON, s.authUser)
	return s
}

// ServeHTTP makes the Server a http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s))
}
