package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/cheese-review/internal/domain"
	"github.com/park285/cheese-review/internal/review"
)

func TestMemory_InsertAndGet(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	in := &domain.Review{ID: "r1", White: "Alice", MovesUCI: []string{"e2e4"}, CreatedAt: time.Now()}
	if err := repo.InsertReview(ctx, in); err != nil {
		t.Fatalf("InsertReview: %v", err)
	}
	if err := repo.InsertReview(ctx, in); !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("second insert err = %v, want ErrDuplicateReview", err)
	}

	got, err := repo.GetReview(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if got.White != "Alice" || got.Plies() != 1 {
		t.Fatalf("got %+v", got)
	}
	got.White = "mutated"
	again, _ := repo.GetReview(ctx, "r1")
	if again.White != "Alice" {
		t.Fatalf("stored review was mutated through returned copy")
	}

	if _, err := repo.GetReview(ctx, "missing"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestMemory_RecentReviewsNewestFirst(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		_ = repo.InsertReview(ctx, &domain.Review{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	got, err := repo.RecentReviews(ctx, 2)
	if err != nil {
		t.Fatalf("RecentReviews: %v", err)
	}
	if len(got) != 2 || got[0].ID != "d" || got[1].ID != "c" {
		t.Fatalf("got %v", ids(got))
	}

	all, _ := repo.RecentReviews(ctx, 0)
	if len(all) != 4 || all[3].ID != "a" {
		t.Fatalf("default limit got %v", ids(all))
	}
}

func TestFromSession(t *testing.T) {
	game := review.Game{
		Moves: []review.Move{
			{From: "e2", To: "e4", Notation: "e2e4", SAN: "e4"},
			{From: "a7", To: "a6", Notation: "a7a6", SAN: "a6"},
		},
		Snapshots: []review.Snapshot{"s0", "s1", "s2"},
		Tags:      map[string]string{"White": "Alice", "Black": "Bob", "Result": "*"},
		Opening:   review.Opening{Code: "B00", Title: "St. George Defense"},
	}
	evals := []review.EvaluationSample{
		{Evaluation: 30, RecommendedMove: "e2e4"},
		{Evaluation: 400, RecommendedMove: "e7e5"},
	}
	s, err := review.NewSession("rid", game, evals)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	rv := FromSession(s, "1. e4 a6", 12)
	if rv.ID != "rid" || rv.White != "Alice" || rv.Black != "Bob" || rv.ECO != "B00" || rv.Depth != 12 {
		t.Fatalf("header = %+v", rv)
	}
	if rv.MovesUCI[1] != "a7a6" || rv.MovesSAN[0] != "e4" {
		t.Fatalf("moves = %v %v", rv.MovesUCI, rv.MovesSAN)
	}
	if rv.Labels[0] != "Best Move" || rv.Labels[1] != "Blunder" {
		t.Fatalf("labels = %v", rv.Labels)
	}
	if rv.Evaluations[1] != 400 {
		t.Fatalf("evaluations = %v", rv.Evaluations)
	}
	if rv.WhiteAccuracy != 100 || rv.BlackAccuracy != 5 {
		t.Fatalf("accuracy = %d/%d", rv.WhiteAccuracy, rv.BlackAccuracy)
	}
	if rv.BlackCounts["Blunder"] != 1 || rv.WhiteCounts["Best Move"] != 1 {
		t.Fatalf("counts = %v %v", rv.WhiteCounts, rv.BlackCounts)
	}
	if rv.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not set")
	}
}

func TestJSONColumns_RoundTrip(t *testing.T) {
	in := &domain.Review{MovesUCI: []string{"e2e4"}, WhiteCounts: map[string]int{"Good": 2}}
	cols, err := encodeColumns(in)
	if err != nil {
		t.Fatalf("encodeColumns: %v", err)
	}
	if string(cols.movesSAN) != "[]" || string(cols.blackCounts) != "{}" {
		t.Fatalf("nil fields encoded as %s / %s", cols.movesSAN, cols.blackCounts)
	}
	var out domain.Review
	if err := decodeColumns(cols, &out); err != nil {
		t.Fatalf("decodeColumns: %v", err)
	}
	if out.MovesUCI[0] != "e2e4" || out.WhiteCounts["Good"] != 2 {
		t.Fatalf("decoded %+v", out)
	}
}

func ids(rs []*domain.Review) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
