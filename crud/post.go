package crud

import (
	"strings"

	"gorm.io/gorm"

	"quill/domain"
	"quill/errs"
)

// PostService manages Posts.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService
// interface. If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(post *domain.Post) error {
	err := runPostValFns(post,
		pv.textRequired,
		pv.authorRequired,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(post)
}

// Update runs validations needed for updating a Post record in the database.
func (pv *postValidator) Update(post *domain.Post) error {
	err := runPostValFns(post,
		pv.idValid,
		pv.textRequired,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(post)
}

// Delete runs validations needed for deleting existing Post database records.
func (pv *postValidator) Delete(post *domain.Post) error {
	err := runPostValFns(post, pv.idValid)
	if err != nil {
		return err
	}
	return pv.postGorm.Delete(post)
}

// runPostValFns runs any number of functions of type postValFn on the passed
// in Post object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post
// object and returns an error.
type postValFn = func(post *domain.Post) error

// textRequired makes sure that the post's text is not empty.
func (pv *postValidator) textRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Post text must not be empty.")
	}
	return nil
}

// authorRequired makes sure the post carries its author's user ID.
func (pv *postValidator) authorRequired(post *domain.Post) error {
	if post.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post author is required.")
	}
	return nil
}

// groupExists makes sure the referenced group actually exists.
// This check only runs if the incoming Post object references a group.
func (pv *postValidator) groupExists(post *domain.Post) error {
	if post.GroupID == nil {
		return nil
	}
	err := pv.db.First(&domain.Group{}, "id = ?", *post.GroupID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
		}
		return err
	}
	return nil
}

// idValid makes sure that the passed in ID of a Post is greater than 0.
func (pv *postValidator) idValid(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post ID is invalid.")
	}
	return nil
}

// feedOrder is the one ordering every feed uses: newest first, ties
// broken by descending id so the order is deterministic.
const feedOrder = "created_at DESC, id DESC"

// ByID retrieves a Post database record by ID, along with its author and group.
func (pg *postGorm) ByID(id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.Preload("User").Preload("Group").First(&post, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	return &post, nil
}

// All retrieves all Post database records, newest first.
func (pg *postGorm) All() ([]domain.Post, error) {
	var posts []domain.Post
	err := pg.db.Preload("User").Preload("Group").
		Order(feedOrder).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ByGroupID retrieves all posts published into the given group, newest first.
func (pg *postGorm) ByGroupID(groupID int) ([]domain.Post, error) {
	var posts []domain.Post
	err := pg.db.Preload("User").Preload("Group").
		Where("group_id = ?", groupID).
		Order(feedOrder).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ByAuthorID retrieves all posts of the given author, newest first.
func (pg *postGorm) ByAuthorID(authorID int) ([]domain.Post, error) {
	var posts []domain.Post
	err := pg.db.Preload("User").Preload("Group").
		Where("user_id = ?", authorID).
		Order(feedOrder).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ByAuthorIDs retrieves all posts of the given set of authors, newest first.
// An empty set short-circuits to an empty slice without touching the
// database, so a viewer who follows nobody gets an empty feed.
func (pg *postGorm) ByAuthorIDs(authorIDs []int) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return []domain.Post{}, nil
	}
	var posts []domain.Post
	err := pg.db.Preload("User").Preload("Group").
		Where("user_id IN ?", authorIDs).
		Order(feedOrder).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Create stores the data from the Post object in a new database record.
// The record's CreatedAt is the post's publication date, assigned here
// once and excluded from updates.
func (pg *postGorm) Create(post *domain.Post) error {
	return pg.db.Create(post).Error
}

// Update saves changes to text, group and image of an existing post.
// Author and publication date are deliberately not part of the column set.
func (pg *postGorm) Update(post *domain.Post) error {
	return pg.db.Model(post).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

// Delete removes the post record and everything the post owns. Both
// statements run in one transaction, so a failure never leaves comments
// behind that reference a deleted post.
func (pg *postGorm) Delete(post *domain.Post) error {
	return pg.db.Transaction(func(tx *gorm.DB) error {
		// Delete the post's comments.
		err := tx.Delete(&domain.Comment{}, "post_id = ?", post.ID).Error
		if err != nil {
			return err
		}
		// Delete the post itself.
		return tx.Delete(post, "id = ?", post.ID).Error
	})
}
