package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/commentbox/models"
)

// CommentRepository stores comments. Listings are newest first; the id breaks
// ties between comments posted at the same instant so the order is stable.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindRoots(ctx context.Context) ([]models.Comment, error)
	FindByRoot(ctx context.Context, rootID string) ([]models.Comment, error)
	FindByID(ctx context.Context, id string) (*models.Comment, error)
}

type gormCommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *gormCommentRepository) FindRoots(ctx context.Context) ([]models.Comment, error) {
	return r.find(r.db.WithContext(ctx).Where("root_id IS NULL"))
}

func (r *gormCommentRepository) FindByRoot(ctx context.Context, rootID string) ([]models.Comment, error) {
	return r.find(r.db.WithContext(ctx).Where("root_id = ?", rootID))
}

func (r *gormCommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *gormCommentRepository) find(q *gorm.DB) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	if err := q.Order("posted_at DESC").Order("id DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
