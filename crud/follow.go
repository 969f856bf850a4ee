package crud

import (
	"errors"

	"gorm.io/gorm"

	"quill/domain"
	"quill/errs"
)

// FollowService is the social graph service. It is the one place that
// enforces the follow invariants (no self-follows, no duplicate rows)
// regardless of what the storage backend does on top of its unique index.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs the follow invariants and the idempotence
// collapse on top of a followStore.
type followValidator struct {
	followStore
}

// followStore is the storage half of the social graph service,
// implemented by followGorm. It only ever touches the follows relation.
type followStore interface {
	create(follow *domain.Follow) error
	delete(followerID, authorID int) (bool, error)
	exists(followerID, authorID int) (bool, error)
	authorIDs(followerID int) ([]int, error)
	authorUserExists(authorID int) (bool, error)
}

// followGorm runs CRUD operations on the follows table.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

var _ domain.FollowService = &FollowService{}

// Follow creates a follow relationship from follower to author.
// It is idempotent: following an author twice leaves exactly one row
// and the repeat call succeeds with created=false. A concurrent
// duplicate insert loses against the storage unique index and is
// collapsed into the same created=false success.
func (fv *followValidator) Follow(followerID, authorID int) (bool, error) {
	if followerID == authorID {
		return false, errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}

	ok, err := fv.authorUserExists(authorID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
	}

	already, err := fv.exists(followerID, authorID)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	err = fv.create(&domain.Follow{FollowerID: followerID, AuthorID: authorID})
	if err != nil {
		// Race loser: someone inserted the same pair between our
		// existence check and the insert. Same end state, so success.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Unfollow removes the follow relationship from follower to author.
// Unfollowing someone who was never followed is a silent no-op, the
// follow set is unchanged either way.
func (fv *followValidator) Unfollow(followerID, authorID int) (bool, error) {
	return fv.delete(followerID, authorID)
}

// IsFollowing reports whether follower currently follows author.
func (fv *followValidator) IsFollowing(followerID, authorID int) (bool, error) {
	return fv.exists(followerID, authorID)
}

// FollowedAuthorIDs returns the ids of all authors the follower follows.
// A user following nobody gets an empty set, not an error.
func (fv *followValidator) FollowedAuthorIDs(followerID int) ([]int, error) {
	return fv.authorIDs(followerID)
}

func (fg followGorm) create(follow *domain.Follow) error {
	return fg.db.Create(follow).Error
}

func (fg followGorm) delete(followerID, authorID int) (bool, error) {
	res := fg.db.Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (fg followGorm) exists(followerID, authorID int) (bool, error) {
	var follow domain.Follow
	err := fg.db.First(&follow, "follower_id = ? AND author_id = ?", followerID, authorID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fg followGorm) authorIDs(followerID int) ([]int, error) {
	var ids []int
	err := fg.db.Model(&domain.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (fg followGorm) authorUserExists(authorID int) (bool, error) {
	err := fg.db.First(&domain.User{}, "id = ?", authorID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
