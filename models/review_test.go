package models

import "testing"

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateReviewInputReview(t *testing.T) {
	in := CreateReviewInput{Score: intPtr(8), Comment: "Great game!", UserID: 3, GameID: 4}
	got := in.Review()
	want := Review{Score: 8, Comment: "Great game!", UserID: 3, GameID: 4}
	if got != want {
		t.Fatalf("Review() = %+v, want %+v", got, want)
	}
}

func TestUpdateReviewInputApply(t *testing.T) {
	tests := []struct {
		name string
		in   UpdateReviewInput
		want Review
	}{
		{
			name: "score only",
			in:   UpdateReviewInput{Score: intPtr(9)},
			want: Review{ID: 1, Score: 9, Comment: "Okay", UserID: 2, GameID: 3},
		},
		{
			name: "comment only",
			in:   UpdateReviewInput{Comment: strPtr("Updated comment")},
			want: Review{ID: 1, Score: 5, Comment: "Updated comment", UserID: 2, GameID: 3},
		},
		{
			name: "empty comment clears it",
			in:   UpdateReviewInput{Comment: strPtr("")},
			want: Review{ID: 1, Score: 5, Comment: "", UserID: 2, GameID: 3},
		},
		{
			name: "nothing",
			in:   UpdateReviewInput{},
			want: Review{ID: 1, Score: 5, Comment: "Okay", UserID: 2, GameID: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Review{ID: 1, Score: 5, Comment: "Okay", UserID: 2, GameID: 3}
			tt.in.Apply(&r)
			if r != tt.want {
				t.Fatalf("Apply() = %+v, want %+v", r, tt.want)
			}
		})
	}
}

func TestUpdateReviewInputEmpty(t *testing.T) {
	if !(UpdateReviewInput{}).Empty() {
		t.Fatal("Empty() = false for zero input")
	}
	if (UpdateReviewInput{Score: intPtr(1)}).Empty() {
		t.Fatal("Empty() = true with score set")
	}
}
