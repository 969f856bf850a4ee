package crud

import (
	"strconv"
	"time"

	"quill/domain"
)

// FeedService is the feed resolver. Given a viewing context it produces
// the ordered, paginated post sequence visible there, plus the
// side-channel facts the rendering layer needs. It is deliberately
// storage-agnostic: it talks to the other services through their
// domain interfaces, and the followed-only feed is an explicit
// two-step resolve (fetch follow set, then posts by author-id-in-set)
// instead of a hidden storage join.
// It implements the domain.FeedService interface.
type FeedService struct {
	users   domain.UserService
	groups  domain.GroupService
	posts   domain.PostService
	follows domain.FollowService

	pageSize int
	cache    *feedCache
}

// NewFeedService returns an instance of FeedService. cacheTTL bounds the
// staleness of the home and group feeds; zero disables caching.
func NewFeedService(
	users domain.UserService,
	groups domain.GroupService,
	posts domain.PostService,
	follows domain.FollowService,
	pageSize int,
	cacheTTL time.Duration,
) (*FeedService, error) {
	cache, err := newFeedCache(cacheTTL)
	if err != nil {
		return nil, err
	}
	return &FeedService{
		users:    users,
		groups:   groups,
		posts:    posts,
		follows:  follows,
		pageSize: pageSize,
		cache:    cache,
	}, nil
}

var _ domain.FeedService = &FeedService{}

// Home resolves the global feed: all posts, newest first.
// The result is viewer-independent, so it may be served from the cache.
func (fs *FeedService) Home(viewer *domain.User, pageNumber int) (*domain.Feed, error) {
	const key = "home"
	if feed, ok := fs.cache.get(key, pageNumber); ok {
		return feed, nil
	}

	posts, err := fs.posts.All()
	if err != nil {
		return nil, err
	}

	feed := &domain.Feed{
		Page:    domain.NewPage(posts, fs.pageSize, pageNumber),
		Version: fs.cache.version(key),
	}
	fs.cache.set(key, pageNumber, feed)
	return feed, nil
}

// ByGroup resolves the feed of one group: all posts published into it,
// newest first. An unknown slug is a not-found error.
func (fs *FeedService) ByGroup(viewer *domain.User, slug string, pageNumber int) (*domain.Feed, error) {
	key := "group:" + slug
	if feed, ok := fs.cache.get(key, pageNumber); ok {
		return feed, nil
	}

	group, err := fs.groups.BySlug(slug)
	if err != nil {
		return nil, err
	}
	posts, err := fs.posts.ByGroupID(group.ID)
	if err != nil {
		return nil, err
	}

	feed := &domain.Feed{
		Page:    domain.NewPage(posts, fs.pageSize, pageNumber),
		Group:   group,
		Version: fs.cache.version(key),
	}
	fs.cache.set(key, pageNumber, feed)
	return feed, nil
}

// Profile resolves an author's feed: all their posts, newest first,
// plus whether the viewer already follows them and whether the viewer
// is looking at their own profile. The follow facts are per-viewer, so
// profile feeds are never cached.
func (fs *FeedService) Profile(viewer *domain.User, username string, pageNumber int) (*domain.Feed, error) {
	author, err := fs.users.ByUsername(username)
	if err != nil {
		return nil, err
	}
	posts, err := fs.posts.ByAuthorID(author.ID)
	if err != nil {
		return nil, err
	}

	feed := &domain.Feed{
		Page:    domain.NewPage(posts, fs.pageSize, pageNumber),
		Author:  author,
		Version: fs.cache.version("profile:" + username),
	}
	if viewer != nil {
		feed.OwnProfile = viewer.ID == author.ID
		if !feed.OwnProfile {
			following, err := fs.follows.IsFollowing(viewer.ID, author.ID)
			if err != nil {
				return nil, err
			}
			feed.Following = following
		}
	}
	return feed, nil
}

// Following resolves the followed-only feed of a viewer: the posts of
// every author the viewer follows, newest first. A viewer who follows
// nobody gets an empty feed, never an error and never the global feed.
func (fs *FeedService) Following(viewerID, pageNumber int) (*domain.Feed, error) {
	authorIDs, err := fs.follows.FollowedAuthorIDs(viewerID)
	if err != nil {
		return nil, err
	}
	posts, err := fs.posts.ByAuthorIDs(authorIDs)
	if err != nil {
		return nil, err
	}

	return &domain.Feed{
		Page:    domain.NewPage(posts, fs.pageSize, pageNumber),
		Version: fs.cache.version("following:" + strconv.Itoa(viewerID)),
	}, nil
}

// Version returns the current staleness token of a feed context key.
func (fs *FeedService) Version(key string) int64 {
	return fs.cache.version(key)
}

// Invalidate bumps the version of the given feed context keys, or of
// every context when called with none. Callers bump after writes; the
// resolver itself always computes correct results on a cache miss.
func (fs *FeedService) Invalidate(keys ...string) {
	fs.cache.bump(keys...)
}
