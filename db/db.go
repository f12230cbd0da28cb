package db

import (
	"context"
	"errors"
	"fmt"

	"reviewservice/models"
	"reviewservice/utils"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns the GORM handle. Every request-scoped write goes through WithTx.
type Store struct {
	DB *gorm.DB
}

// Open connects to the database using the given driver ("postgres" or "sqlite").
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// An in-memory database lives and dies with its connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	return &Store{DB: gdb}, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	if err := s.DB.AutoMigrate(&models.User{}, &models.Game{}, &models.Review{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// WithTx runs fn inside a single transaction. It commits when fn returns nil
// and rolls back when fn returns an error or panics.
func (s *Store) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.DB.WithContext(ctx).Transaction(fn)
}

// Ping checks that the underlying connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Seed inserts a demo user and game when the tables are empty.
func (s *Store) Seed(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		var user models.User
		err := tx.First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{Name: "Test User"}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			utils.Log.WithField("user_id", user.ID).Info("Seeded user")
		} else if err != nil {
			return err
		}

		var game models.Game
		err = tx.First(&game).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			game = models.Game{Title: "Test Game", Genre: "Action", Platform: "PC", Price: 50}
			if err := tx.Create(&game).Error; err != nil {
				return err
			}
			utils.Log.WithField("game_id", game.ID).Info("Seeded game")
		} else if err != nil {
			return err
		}
		return nil
	})
}
