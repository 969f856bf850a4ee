package domain

import "time"

// Group is a topic posts can be published into. Its slug is the stable
// url identifier and must never change once posts reference the group.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title" gorm:"notNull"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:100;notNull"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupService is a set of methods to manipulate and work with the Group model.
type GroupService interface {
	BySlug(slug string) (*Group, error)
	All() ([]Group, error)
	Create(group *Group) error
	// Delete removes the group. Posts published into it survive with
	// their group reference cleared.
	Delete(group *Group) error
}
