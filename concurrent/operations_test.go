package concurrent

import (
	"context"
	"testing"

	"reviewservice/db"
	"reviewservice/models"
)

func TestCalculateReviewStats(t *testing.T) {
	store, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	stats, err := CalculateReviewStats(ctx, store.DB)
	if err != nil {
		t.Fatalf("CalculateReviewStats() on empty db error = %v", err)
	}
	if *stats != (ReviewStats{}) {
		t.Fatalf("empty stats = %+v, want zero", stats)
	}

	user := models.User{Name: "Test User"}
	game := models.Game{Title: "Test Game"}
	store.DB.Create(&user)
	store.DB.Create(&game)
	for _, score := range []int{6, 9} {
		store.DB.Create(&models.Review{Score: score, UserID: user.ID, GameID: game.ID})
	}

	stats, err = CalculateReviewStats(ctx, store.DB)
	if err != nil {
		t.Fatalf("CalculateReviewStats() error = %v", err)
	}
	want := ReviewStats{TotalReviews: 2, TotalUsers: 1, TotalGames: 1, AverageScore: 7.5}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}
}

func TestCalculateReviewStatsCancelled(t *testing.T) {
	store, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CalculateReviewStats(ctx, store.DB); err == nil {
		t.Fatal("CalculateReviewStats() with cancelled context error = nil")
	}
}
