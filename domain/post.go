package domain

import "time"

// Post is a single blog entry. The author is required, the group is
// optional, and the publication date is the gorm-assigned CreatedAt,
// set once and never touched by updates. Image holds an opaque
// reference into the image store, or "" if no image is attached.
type Post struct {
	ID     int    `json:"id"`
	Text   string `json:"text" gorm:"type:text;notNull"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"author"`

	GroupID *int   `json:"group_id,omitempty" gorm:"index"`
	Group   *Group `json:"group,omitempty"`

	Image string `json:"image,omitempty"`

	CreatedAt time.Time `json:"pub_date"`
	UpdatedAt time.Time `json:"-"`
}

// PostService is a set of methods to manipulate and work with the Post model.
// All list methods return posts newest first, ties broken by descending id.
type PostService interface {
	ByID(id int) (*Post, error)
	All() ([]Post, error)
	ByGroupID(groupID int) ([]Post, error)
	ByAuthorID(authorID int) ([]Post, error)
	// ByAuthorIDs returns the posts of all the given authors. An empty
	// id set yields an empty slice, not an error.
	ByAuthorIDs(authorIDs []int) ([]Post, error)
	Create(post *Post) error
	// Update only touches text, group and image. Author and
	// publication date are immutable.
	Update(post *Post) error
	// Delete removes the post and everything it owns (comments, image ref).
	Delete(post *Post) error
}
