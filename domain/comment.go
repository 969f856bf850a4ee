package domain

import "time"

type Comment struct {
	ID     int    `json:"id"`
	Text   string `json:"text" gorm:"type:text;notNull"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"author"`
	PostID int    `json:"post_id" gorm:"notNull;index"`

	CreatedAt time.Time `json:"created_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByPostID(postID int) ([]Comment, error)
	Create(comment *Comment) error
}
