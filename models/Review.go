package models

type Review struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Score   int    `gorm:"not null" json:"score"`
	Comment string `json:"comment"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	GameID  uint   `gorm:"not null;index" json:"game_id"`
	User    *User  `gorm:"foreignKey:UserID" json:"-"`
	Game    *Game  `gorm:"foreignKey:GameID" json:"-"`
}

// CreateReviewInput - accepted by POST /reviews, form or JSON
type CreateReviewInput struct {
	Score   *int   `json:"score" form:"score" validate:"required"`
	Comment string `json:"comment" form:"comment"`
	UserID  uint   `json:"user_id" form:"user_id" validate:"required,gte=1"`
	GameID  uint   `json:"game_id" form:"game_id" validate:"required,gte=1"`
}

// Review builds the record to persist; the ID is assigned by the store.
func (in CreateReviewInput) Review() Review {
	r := Review{
		Comment: in.Comment,
		UserID:  in.UserID,
		GameID:  in.GameID,
	}
	if in.Score != nil {
		r.Score = *in.Score
	}
	return r
}

// UpdateReviewInput - partial update, nil fields are left unchanged.
// UserID and GameID are immutable after creation.
type UpdateReviewInput struct {
	Score   *int    `json:"score" form:"score"`
	Comment *string `json:"comment" form:"comment"`
}

// Apply copies the supplied fields onto r.
func (in UpdateReviewInput) Apply(r *Review) {
	if in.Score != nil {
		r.Score = *in.Score
	}
	if in.Comment != nil {
		r.Comment = *in.Comment
	}
}

// Empty reports whether the input carries no fields at all.
func (in UpdateReviewInput) Empty() bool {
	return in.Score == nil && in.Comment == nil
}
