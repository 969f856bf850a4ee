package domain

// Feed is the resolved view of one viewing context: a page of posts
// plus the side-channel facts the rendering layer needs. Group and
// Author are set for the group and profile contexts respectively.
// Following says whether the viewer already follows the profile's
// author, OwnProfile whether the viewer is that author (so the caller
// knows to hide the follow button). Version is the staleness token for
// the context the feed was resolved in.
type Feed struct {
	Page       Page    `json:"page"`
	Group      *Group  `json:"group,omitempty"`
	Author     *User   `json:"author,omitempty"`
	Following  bool    `json:"following"`
	OwnProfile bool    `json:"own_profile"`
	Version    int64   `json:"version"`
}

// FeedService resolves the ordered, paginated post sequence for a
// viewing context. The viewer may be nil (anonymous) everywhere except
// the followed-only feed.
type FeedService interface {
	Home(viewer *User, pageNumber int) (*Feed, error)
	ByGroup(viewer *User, slug string, pageNumber int) (*Feed, error)
	Profile(viewer *User, username string, pageNumber int) (*Feed, error)
	Following(viewerID, pageNumber int) (*Feed, error)

	// Version returns the current staleness token of a feed context key
	// ("home", "group:<slug>", "profile:<username>", "following:<id>").
	Version(key string) int64
	// Invalidate bumps the version of the given context keys. With no
	// keys it marks every feed context stale (used after post writes).
	Invalidate(keys ...string)
}
