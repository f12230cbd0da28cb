package db

import (
	"context"
	"errors"
	"testing"

	"reviewservice/models"

	"gorm.io/gorm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func countUsers(t *testing.T, store *Store) int64 {
	t.Helper()
	var n int64
	if err := store.DB.Model(&models.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	return n
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", ""); err == nil {
		t.Fatal("Open(oracle) error = nil, want error")
	}
}

func TestWithTxCommits(t *testing.T) {
	store := openTestStore(t)

	err := store.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&models.User{Name: "alice"}).Error
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if got := countUsers(t, store); got != 1 {
		t.Fatalf("users = %d, want 1", got)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	boom := errors.New("boom")

	err := store.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{Name: "bob"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}
	if got := countUsers(t, store); got != 0 {
		t.Fatalf("users = %d, want 0 after rollback", got)
	}
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	store := openTestStore(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = store.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&models.User{Name: "carol"})
			panic("boom")
		})
	}()

	if got := countUsers(t, store); got != 0 {
		t.Fatalf("users = %d, want 0 after panic", got)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Seed(ctx); err != nil {
			t.Fatalf("Seed() #%d error = %v", i, err)
		}
	}
	if got := countUsers(t, store); got != 1 {
		t.Fatalf("users = %d, want 1", got)
	}
	var game models.Game
	if err := store.DB.First(&game).Error; err != nil {
		t.Fatalf("load game: %v", err)
	}
	if game.Title != "Test Game" {
		t.Fatalf("game title = %q, want Test Game", game.Title)
	}
}

func TestPing(t *testing.T) {
	store := openTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}
