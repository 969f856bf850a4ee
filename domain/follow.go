package domain

import "time"

// Follow is a directed relationship from a follower to a followed author.
// The composite unique index on (follower_id, author_id) is the storage
// level guarantee that concurrent follow requests cannot produce
// duplicate rows.
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"-" gorm:"notNull;uniqueIndex:idx_follower_author"`
	Follower   User      `json:"follower" gorm:"foreignKey:FollowerID"`
	AuthorID   int       `json:"-" gorm:"notNull;uniqueIndex:idx_follower_author"`
	Author     User      `json:"author" gorm:"foreignKey:AuthorID"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowService is the single authority over the follow relation.
// Both operations are idempotent: repeating a call leaves the same end
// state and returns no error, only the bool tells whether anything changed.
type FollowService interface {
	Follow(followerID, authorID int) (bool, error)
	Unfollow(followerID, authorID int) (bool, error)
	IsFollowing(followerID, authorID int) (bool, error)
	FollowedAuthorIDs(followerID int) ([]int, error)
}
