package repository

import (
	"context"
	"errors"
	"fmt"

	"reviewservice/db"
	"reviewservice/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when a review points at a missing user or game.
	ErrInvalidReference = errors.New("invalid reference")
)

type ReviewRepository interface {
	List(ctx context.Context) ([]models.Review, error)
	Get(ctx context.Context, id uint) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, id uint, input models.UpdateReviewInput) (*models.Review, error)
	Delete(ctx context.Context, id uint) error
}

// GormReviewRepository stores reviews through GORM. Writes run in one
// transaction each.
type GormReviewRepository struct {
	store *db.Store
}

func NewReviewRepository(store *db.Store) *GormReviewRepository {
	return &GormReviewRepository{store: store}
}

// List returns every review in creation order.
func (r *GormReviewRepository) List(ctx context.Context) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := r.store.DB.WithContext(ctx).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *GormReviewRepository) Get(ctx context.Context, id uint) (*models.Review, error) {
	return findReview(r.store.DB.WithContext(ctx), id)
}

// Create persists review after checking that its user and game exist.
func (r *GormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.store.WithTx(ctx, func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.User{}, review.UserID, "user"); err != nil {
			return err
		}
		if err := requireRow(tx, &models.Game{}, review.GameID, "game"); err != nil {
			return err
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		return nil
	})
}

func (r *GormReviewRepository) Update(ctx context.Context, id uint, input models.UpdateReviewInput) (*models.Review, error) {
	var updated *models.Review
	err := r.store.WithTx(ctx, func(tx *gorm.DB) error {
		review, err := findReview(tx, id)
		if err != nil {
			return err
		}
		input.Apply(review)
		if err := tx.Save(review).Error; err != nil {
			return fmt.Errorf("update review %d: %w", id, err)
		}
		updated = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *GormReviewRepository) Delete(ctx context.Context, id uint) error {
	return r.store.WithTx(ctx, func(tx *gorm.DB) error {
		review, err := findReview(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(review).Error; err != nil {
			return fmt.Errorf("delete review %d: %w", id, err)
		}
		return nil
	})
}

func findReview(tx *gorm.DB, id uint) (*models.Review, error) {
	var review models.Review
	err := tx.First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return &review, nil
}

func requireRow(tx *gorm.DB, model interface{}, id uint, kind string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("look up %s %d: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d does not exist: %w", kind, id, ErrInvalidReference)
	}
	return nil
}
