package repository

import (
	"context"
	"errors"
	"fmt"

	"reviewservice/db"
	"reviewservice/models"

	"gorm.io/gorm"
)

// CatalogRepository reads the users and games that reviews point at.
// Only Create mutates, and it is used for seeding and tests.
type CatalogRepository struct {
	store *db.Store
}

func NewCatalogRepository(store *db.Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

func (r *CatalogRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.store.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *CatalogRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := first(r.store.DB.WithContext(ctx), &user, id); err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	return &user, nil
}

func (r *CatalogRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.store.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

func (r *CatalogRepository) ListGames(ctx context.Context) ([]models.Game, error) {
	games := make([]models.Game, 0)
	if err := r.store.DB.WithContext(ctx).Order("id ASC").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (r *CatalogRepository) GetGame(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	if err := first(r.store.DB.WithContext(ctx), &game, id); err != nil {
		return nil, fmt.Errorf("game %d: %w", id, err)
	}
	return &game, nil
}

func (r *CatalogRepository) CreateGame(ctx context.Context, game *models.Game) error {
	return r.store.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(game).Error
	})
}

func first(tx *gorm.DB, dest interface{}, id uint) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
