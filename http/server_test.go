package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quill/crud"
	"quill/domain"
	"quill/errs"
)

//
// --- Mocks ---
//

// mockUserService resolves users by username and by remember token.
type mockUserService struct {
	users map[string]*domain.User
}

func (m *mockUserService) ByID(id int) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
}

func (m *mockUserService) ByUsername(username string) (*domain.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
}

func (m *mockUserService) ByRemember(token string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Remember == token {
			return u, nil
		}
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
}

func (m *mockUserService) Authenticate(email, password string) (*domain.User, error) {
	return nil, errs.Errorf(errs.EUNAUTHORIZED, "Invalid credentials.")
}

func (m *mockUserService) MakeRememberToken() (string, error) { return "fresh-token", nil }
func (m *mockUserService) Create(user *domain.User) error     { return nil }
func (m *mockUserService) Update(user *domain.User) error     { return nil }

type mockGroupService struct {
	groups map[string]*domain.Group
}

func (m *mockGroupService) BySlug(slug string) (*domain.Group, error) {
	if g, ok := m.groups[slug]; ok {
		return g, nil
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
}

func (m *mockGroupService) All() ([]domain.Group, error) {
	var all []domain.Group
	for _, g := range m.groups {
		all = append(all, *g)
	}
	return all, nil
}

func (m *mockGroupService) Create(group *domain.Group) error { return nil }
func (m *mockGroupService) Delete(group *domain.Group) error { return nil }

type mockPostService struct {
	posts  []domain.Post
	nextID int
}

func (m *mockPostService) ByID(id int) (*domain.Post, error) {
	for i := range m.posts {
		if m.posts[i].ID == id {
			return &m.posts[i], nil
		}
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
}

func (m *mockPostService) All() ([]domain.Post, error) {
	out := make([]domain.Post, len(m.posts))
	for i := range m.posts {
		out[i] = m.posts[len(m.posts)-1-i]
	}
	return out, nil
}

func (m *mockPostService) ByGroupID(groupID int) ([]domain.Post, error) {
	out := []domain.Post{}
	for i := len(m.posts) - 1; i >= 0; i-- {
		if m.posts[i].GroupID != nil && *m.posts[i].GroupID == groupID {
			out = append(out, m.posts[i])
		}
	}
	return out, nil
}

func (m *mockPostService) ByAuthorID(authorID int) ([]domain.Post, error) {
	return m.ByAuthorIDs([]int{authorID})
}

func (m *mockPostService) ByAuthorIDs(authorIDs []int) ([]domain.Post, error) {
	out := []domain.Post{}
	for i := len(m.posts) - 1; i >= 0; i-- {
		for _, id := range authorIDs {
			if m.posts[i].UserID == id {
				out = append(out, m.posts[i])
				break
			}
		}
	}
	return out, nil
}

func (m *mockPostService) Create(post *domain.Post) error {
	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	m.posts = append(m.posts, *post)
	return nil
}

func (m *mockPostService) Update(post *domain.Post) error {
	for i := range m.posts {
		if m.posts[i].ID == post.ID {
			m.posts[i] = *post
			return nil
		}
	}
	return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
}

func (m *mockPostService) Delete(post *domain.Post) error {
	for i := range m.posts {
		if m.posts[i].ID == post.ID {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
}

type mockCommentService struct {
	posts    *mockPostService
	comments []domain.Comment
}

func (m *mockCommentService) ByPostID(postID int) ([]domain.Comment, error) {
	out := []domain.Comment{}
	for i := len(m.comments) - 1; i >= 0; i-- {
		if m.comments[i].PostID == postID {
			out = append(out, m.comments[i])
		}
	}
	return out, nil
}

func (m *mockCommentService) Create(comment *domain.Comment) error {
	if _, err := m.posts.ByID(comment.PostID); err != nil {
		return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	comment.ID = len(m.comments) + 1
	m.comments = append(m.comments, *comment)
	return nil
}

type mockFollowService struct {
	pairs map[[2]int]bool
}

func (m *mockFollowService) Follow(followerID, authorID int) (bool, error) {
	if followerID == authorID {
		return false, errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	key := [2]int{followerID, authorID}
	if m.pairs[key] {
		return false, nil
	}
	m.pairs[key] = true
	return true, nil
}

func (m *mockFollowService) Unfollow(followerID, authorID int) (bool, error) {
	key := [2]int{followerID, authorID}
	if !m.pairs[key] {
		return false, nil
	}
	delete(m.pairs, key)
	return true, nil
}

func (m *mockFollowService) IsFollowing(followerID, authorID int) (bool, error) {
	return m.pairs[[2]int{followerID, authorID}], nil
}

func (m *mockFollowService) FollowedAuthorIDs(followerID int) ([]int, error) {
	ids := []int{}
	for pair := range m.pairs {
		if pair[0] == followerID {
			ids = append(ids, pair[1])
		}
	}
	return ids, nil
}

type mockImageService struct{}

func (m *mockImageService) Create(img *domain.Image) error { img.Ref = "posts/test.png"; return nil }
func (m *mockImageService) Delete(ref string) error        { return nil }

//
// --- Setup ---
//

// newTestServer wires a Server over in-memory mocks, with the real feed
// resolver on top of them. CSRF is off.
func newTestServer(t *testing.T) (*Server, *mockPostService, *mockFollowService) {
	t.Helper()
	users := &mockUserService{users: map[string]*domain.User{
		"alice": {ID: 1, Username: "alice", Remember: "alice-token"},
		"bob":   {ID: 2, Username: "bob", Remember: "bob-token"},
	}}
	groups := &mockGroupService{groups: map[string]*domain.Group{
		"go": {ID: 1, Title: "Go", Slug: "go"},
	}}
	posts := &mockPostService{}
	comments := &mockCommentService{posts: posts}
	follows := &mockFollowService{pairs: make(map[[2]int]bool)}

	feeds, err := crud.NewFeedService(users, groups, posts, follows, 10, 0)
	if err != nil {
		t.Fatalf("NewFeedService failed: %v", err)
	}

	server := NewServer(users, groups, posts, comments, follows, feeds, &mockImageService{}, "", false)
	return server, posts, follows
}

func doJSON(s *Server, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "remember_token", Value: token})
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

//
// --- Tests ---
//

func TestHomeFeedIsPublic(t *testing.T) {
	s, posts, _ := newTestServer(t)
	posts.Create(&domain.Post{Text: "hello", UserID: 1})

	w := doJSON(s, "GET", "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var feed domain.Feed
	if err := json.NewDecoder(w.Body).Decode(&feed); err != nil {
		t.Fatalf("invalid feed response: %v", err)
	}
	if len(feed.Page.Items) != 1 {
		t.Errorf("expected 1 post, got %d", len(feed.Page.Items))
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doJSON(s, "POST", "/post", "", map[string]string{"text": "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestCreatePost(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doJSON(s, "POST", "/post", "alice-token", map[string]string{"text": "hi"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var post domain.Post
	if err := json.NewDecoder(w.Body).Decode(&post); err != nil {
		t.Fatalf("invalid post response: %v", err)
	}
	if post.UserID != 1 {
		t.Errorf("the post must be authored by the logged in user, got author %d", post.UserID)
	}
}

func TestCreatePostEmptyText(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doJSON(s, "POST", "/post", "alice-token", map[string]string{"text": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestUpdatePostByNonAuthor(t *testing.T) {
	s, posts, _ := newTestServer(t)
	posts.Create(&domain.Post{Text: "alice's", UserID: 1})

	w := doJSON(s, "PUT", "/post/1", "bob-token", map[string]string{"text": "hijacked"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestFollowUnfollowFlow(t *testing.T) {
	s, _, _ := newTestServer(t)

	var resp followResponse

	// First follow changes state.
	w := doJSON(s, "POST", "/profile/bob/follow", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("follow: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Following || !resp.Changed {
		t.Errorf("first follow: expected following=true changed=true, got %+v", resp)
	}

	// Repeating it is a no-op, not an error.
	w = doJSON(s, "POST", "/profile/bob/follow", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat follow: expected status 200, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Following || resp.Changed {
		t.Errorf("repeat follow: expected following=true changed=false, got %+v", resp)
	}

	// Unfollow removes the relationship.
	w = doJSON(s, "DELETE", "/profile/bob/unfollow", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unfollow: expected status 200, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Following || !resp.Changed {
		t.Errorf("unfollow: expected following=false changed=true, got %+v", resp)
	}

	// Unfollowing again is a silent success.
	w = doJSON(s, "DELETE", "/profile/bob/unfollow", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat unfollow: expected status 200, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Following || resp.Changed {
		t.Errorf("repeat unfollow: expected following=false changed=false, got %+v", resp)
	}
}

func TestFollowUnknownAuthor(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doJSON(s, "POST", "/profile/nobody/follow", "alice-token", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestFollowSelf(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doJSON(s, "POST", "/profile/alice/follow", "alice-token", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestFollowingFeedEmpty(t *testing.T) {
	s, posts, _ := newTestServer(t)
	posts.Create(&domain.Post{Text: "by bob", UserID: 2})

	w := doJSON(s, "GET", "/follow", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var feed domain.Feed
	if err := json.NewDecoder(w.Body).Decode(&feed); err != nil {
		t.Fatalf("invalid feed response: %v", err)
	}
	if len(feed.Page.Items) != 0 {
		t.Errorf("expected an empty feed, got %d posts", len(feed.Page.Items))
	}
}

func TestFollowingFeedAfterFollow(t *testing.T) {
	s, posts, follows := newTestServer(t)
	posts.Create(&domain.Post{Text: "by bob", UserID: 2})
	follows.Follow(1, 2)

	w := doJSON(s, "GET", "/follow", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var feed domain.Feed
	json.NewDecoder(w.Body).Decode(&feed)
	if len(feed.Page.Items) != 1 {
		t.Errorf("expected 1 post, got %d", len(feed.Page.Items))
	}
}

func TestGroupFeedUnknownSlug(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doJSON(s, "GET", "/group/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestProfileFeedShowsFollowState(t *testing.T) {
	s, _, follows := newTestServer(t)
	follows.Follow(1, 2)

	w := doJSON(s, "GET", "/profile/bob", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var feed domain.Feed
	json.NewDecoder(w.Body).Decode(&feed)
	if !feed.Following {
		t.Errorf("expected following=true on the profile feed")
	}
}

func TestCreateComment(t *testing.T) {
	s, posts, _ := newTestServer(t)
	posts.Create(&domain.Post{Text: "hello", UserID: 2})

	w := doJSON(s, "POST", "/post/1/comment", "alice-token", map[string]string{"text": "nice one"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var comment domain.Comment
	json.NewDecoder(w.Body).Decode(&comment)
	if comment.UserID != 1 || comment.PostID != 1 {
		t.Errorf("unexpected comment ownership: %+v", comment)
	}
}

func TestCreateCommentUnknownPost(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doJSON(s, "POST", "/post/42/comment", "alice-token", map[string]string{"text": "hello?"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestUploadImageMalformedBody(t *testing.T) {
	s, posts, _ := newTestServer(t)
	posts.Create(&domain.Post{Text: "mine", UserID: 1})

	r := httptest.NewRequest("POST", "/post/1/image", strings.NewReader("not a multipart body"))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	r.AddCookie(&http.Cookie{Name: "remember_token", Value: "alice-token"})
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	var resp errs.ErrorResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error != "Could not parse the upload." {
		t.Errorf("expected a concrete parse failure message, got %q", resp.Error)
	}
}

func TestPageQueryParamIsForgiving(t *testing.T) {
	s, posts, _ := newTestServer(t)
	posts.Create(&domain.Post{Text: "hello", UserID: 1})

	for _, target := range []string{"/?page=0", "/?page=-3", "/?page=banana", "/?page=99"} {
		w := doJSON(s, "GET", target, "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", target, w.Code)
		}
	}
}
