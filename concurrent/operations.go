package concurrent

import (
	"context"
	"fmt"

	"reviewservice/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ReviewStats summarizes the review table and the rows it references.
type ReviewStats struct {
	TotalReviews int64   `json:"total_reviews"`
	TotalUsers   int64   `json:"total_users"`
	TotalGames   int64   `json:"total_games"`
	AverageScore float64 `json:"average_score"`
}

// CalculateReviewStats runs the aggregate queries in parallel. Each COUNT is
// independent, so the first failure cancels the rest.
func CalculateReviewStats(ctx context.Context, db *gorm.DB) (*ReviewStats, error) {
	stats := &ReviewStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return count(ctx, db, &models.Review{}, &stats.TotalReviews)
	})
	g.Go(func() error {
		return count(ctx, db, &models.User{}, &stats.TotalUsers)
	})
	g.Go(func() error {
		return count(ctx, db, &models.Game{}, &stats.TotalGames)
	})
	g.Go(func() error {
		err := db.WithContext(ctx).
			Model(&models.Review{}).
			Select("COALESCE(AVG(score), 0)").
			Row().
			Scan(&stats.AverageScore)
		if err != nil {
			return fmt.Errorf("average score: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func count(ctx context.Context, db *gorm.DB, model interface{}, dest *int64) error {
	if err := db.WithContext(ctx).Model(model).Count(dest).Error; err != nil {
		return fmt.Errorf("count %T: %w", model, err)
	}
	return nil
}
