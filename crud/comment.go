package crud

import (
	"strings"

	"gorm.io/gorm"

	"quill/domain"
	"quill/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(comment *domain.Comment) error {
	err := runCommentValFns(comment,
		cv.textRequired,
		cv.authorRequired,
		cv.postExists)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(comment)
}

// runCommentValFns runs any number of functions of type commentValFn on the
// passed in Comment object.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment
// object and returns an error.
type commentValFn func(comment *domain.Comment) error

// textRequired makes sure that the comment's text is not empty.
func (cv *commentValidator) textRequired(comment *domain.Comment) error {
	if strings.TrimSpace(comment.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Comment text must not be empty.")
	}
	return nil
}

// authorRequired makes sure the comment carries its author's user ID.
func (cv *commentValidator) authorRequired(comment *domain.Comment) error {
	if comment.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Comment author is required.")
	}
	return nil
}

// postExists makes sure the commented post actually exists.
func (cv *commentValidator) postExists(comment *domain.Comment) error {
	err := cv.db.First(&domain.Post{}, "id = ?", comment.PostID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return err
	}
	return nil
}

// ByPostID retrieves all comments of the given post, newest first.
func (cg *commentGorm) ByPostID(postID int) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := cg.db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Create stores the data from the Comment object in a new database record,
// timestamped by the store at creation.
func (cg *commentGorm) Create(comment *domain.Comment) error {
	return cg.db.Create(comment).Error
}
