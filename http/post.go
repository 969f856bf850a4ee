package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quill/domain"
	"quill/errs"
	"quill/storage"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/post", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/post/{id:[0-9]+}", s.handleGetPost).Methods("GET")
	r.HandleFunc("/post/{id:[0-9]+}", s.requireAuth(s.handleUpdatePost)).Methods("PUT")
	r.HandleFunc("/post/{id:[0-9]+}", s.requireAuth(s.handleDeletePost)).Methods("DELETE")
	r.HandleFunc("/post/{id:[0-9]+}/image", s.requireAuth(s.handleUploadPostImage)).Methods("POST")
}

type postRequest struct {
	Text    string `json:"text" validate:"required"`
	GroupID *int   `json:"group_id"`
}

// postResponse is the single post view: the post plus its comments,
// newest comment first.
type postResponse struct {
	Post     *domain.Post     `json:"post"`
	Comments []domain.Comment `json:"comments"`
}

// handleCreatePost handles the route "POST /post".
// It creates a new post authored by the logged in user.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Post text must not be empty."))
		return
	}

	user := s.getUserFromContext(r.Context())
	post := domain.Post{
		Text:    req.Text,
		UserID:  user.ID,
		GroupID: req.GroupID,
	}
	if err := s.ps.Create(&post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// A new post changes every feed context it can appear in.
	s.feeds.Invalidate()

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&post); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleGetPost handles the route "GET /post/{id}".
// It returns the post together with its comments.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comments, err := s.cs.ByPostID(post.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	resp := postResponse{Post: post, Comments: comments}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleUpdatePost handles the route "PUT /post/{id}".
// Only the author may edit, and only text, group and image are mutable.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if post.UserID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this post."))
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Post text must not be empty."))
		return
	}

	post.Text = req.Text
	post.GroupID = req.GroupID
	if err := s.ps.Update(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.feeds.Invalidate()

	if err := json.NewEncoder(w).Encode(post); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleDeletePost handles the route "DELETE /post/{id}".
// Only the author may delete. The post's comments and image go with it.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if post.UserID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this post."))
		return
	}

	if err := s.ps.Delete(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if post.Image != "" {
		if err := s.is.Delete(post.Image); err != nil {
			errs.LogError(r, err)
		}
	}

	s.feeds.Invalidate()

	if err := json.NewEncoder(w).Encode(post); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleUploadPostImage handles the route "POST /post/{id}/image".
// It attaches one image to the post, replacing a previous one.
func (s *Server) handleUploadPostImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if post.UserID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this post."))
		return
	}

	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Could not parse the upload."))
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) != 1 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Exactly one image is expected."))
		return
	}

	file, err := files[0].Open()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer file.Close()

	img := &domain.Image{
		OwnerID:  post.ID,
		File:     file,
		Filename: files[0].Filename,
	}
	if err := s.is.Create(img); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	oldRef := post.Image
	post.Image = img.Ref
	if err := s.ps.Update(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if oldRef != "" {
		if err := s.is.Delete(oldRef); err != nil {
			errs.LogError(r, err)
		}
	}

	s.feeds.Invalidate()

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(post); err != nil {
		errs.LogError(r, err)
		return
	}
}
