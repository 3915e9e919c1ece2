package reviewpresenter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/park285/cheese-review/internal/domain"
	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/pkg/reviewdto"
)

func sampleSession(t *testing.T) *review.Session {
	t.Helper()
	game := review.Game{
		Moves: []review.Move{
			{From: "e2", To: "e4", Notation: "e2e4", SAN: "e4"},
			{From: "a7", To: "a6", Notation: "a7a6", SAN: "a6"},
			{From: "d2", To: "d4", Notation: "d2d4", SAN: "d4"},
		},
		Snapshots: []review.Snapshot{"p0", "p1", "p2", "p3"},
		Tags:      map[string]string{"White": "Alice", "Black": "Bob", "Result": "*", "Annotator": "x"},
		Opening:   review.Opening{Code: "B00", Title: "St. George Defense"},
	}
	evals := []review.EvaluationSample{
		{Evaluation: 30, RecommendedMove: "e2e4"},
		{Evaluation: 400, RecommendedMove: "e7e5"},
		{Evaluation: 410, RecommendedMove: "d2d4"},
	}
	s, err := review.NewSession("rid", game, evals)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestToReport(t *testing.T) {
	r := ToReport(sampleSession(t))
	if r.ID != "rid" || r.ECO != "B00" || r.WhiteAccuracy != 100 || r.BlackAccuracy != 5 {
		t.Fatalf("header = %+v", r)
	}
	if _, ok := r.Tags["Annotator"]; ok || r.Tags["White"] != "Alice" {
		t.Fatalf("tags = %v", r.Tags)
	}
	if len(r.Plies) != 3 {
		t.Fatalf("plies = %d", len(r.Plies))
	}
	p := r.Plies[1]
	if p.Side != "black" || p.Label != "Blunder" || p.Score != 5 || p.EvalText != "4.00" || p.Recommended != "e7e5" {
		t.Fatalf("ply 1 = %+v", p)
	}
	if p.PositionBefore != "p1" || p.PositionAfter != "p2" {
		t.Fatalf("positions = %s -> %s", p.PositionBefore, p.PositionAfter)
	}
	if r.WhiteCounts["Best Move"] != 2 || r.BlackCounts["Blunder"] != 1 {
		t.Fatalf("counts = %v %v", r.WhiteCounts, r.BlackCounts)
	}
	if _, err := json.Marshal(r); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
}

func TestStoredToReport(t *testing.T) {
	rv := &domain.Review{
		ID:          "x",
		White:       "Alice",
		MovesUCI:    []string{"e2e4", "f7f6", "d1h5"},
		MovesSAN:    []string{"e4", "f6", "Qh5+"},
		Labels:      []string{"Best Move", "Mistake", "Game Over"},
		Evaluations: []int{30, 250, 3},
		CreatedAt:   time.Now(),
	}
	r := StoredToReport(rv)
	if r.Tags["White"] != "Alice" || len(r.Tags) != 1 {
		t.Fatalf("tags = %v", r.Tags)
	}
	if r.Plies[1].Score != 25 || r.Plies[1].Side != "black" || r.Plies[1].EvalText != "2.50" {
		t.Fatalf("ply 1 = %+v", r.Plies[1])
	}
	if !r.Plies[2].Mate || r.Plies[2].EvalText != "M3" {
		t.Fatalf("ply 2 = %+v", r.Plies[2])
	}
}

func TestFormatter_SummaryAndMoveList(t *testing.T) {
	s := sampleSession(t)
	f := NewFormatter(false)

	sum := f.Summary(s)
	for _, want := range []string{"Alice vs Bob  *", "Opening: B00 St. George Defense", "Accuracy: white 100%  black 5%", "Best Move", "Blunder"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary missing %q:\n%s", want, sum)
		}
	}
	if strings.Contains(sum, "Inaccuracy") {
		t.Fatalf("summary lists empty labels:\n%s", sum)
	}

	lines := strings.Split(strings.TrimRight(f.MoveList(s), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("move list lines = %d:\n%v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "  1. e4") || !strings.Contains(lines[0], "a6") || !strings.Contains(lines[0], "Blunder") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  2. d4") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestFormatter_View(t *testing.T) {
	s := sampleSession(t)
	f := NewFormatter(true)

	start := f.View(s.ViewAt(-1))
	if !strings.Contains(start, "Start position") || !strings.Contains(start, "Eval 0.00") || strings.Contains(start, "Highlight") {
		t.Fatalf("start view:\n%s", start)
	}

	v := f.View(s.ViewAt(1))
	for _, want := range []string{"Ply 1: 1... a6", review.Blunder.Icon() + " Blunder", "Eval 4.00", "Engine: e7e5", "Highlight: a7 a6", "FEN: p2"} {
		if !strings.Contains(v, want) {
			t.Fatalf("view missing %q:\n%s", want, v)
		}
	}
}

func TestEvalBarText(t *testing.T) {
	tests := []struct {
		bar  review.EvalBar
		want string
	}{
		{review.EvalBar{WhiteShare: 50, Label: "0.0"}, "[##########----------] 0.0"},
		{review.EvalBar{WhiteShare: 100, Label: "M2"}, "[####################] M2"},
		{review.EvalBar{WhiteShare: 0, Label: "M1"}, "[--------------------] M1"},
		{review.EvalBar{WhiteShare: 95}, "[###################-] "},
	}
	for _, tt := range tests {
		if got := EvalBarText(tt.bar); got != tt.want {
			t.Errorf("EvalBarText(%+v) = %q, want %q", tt.bar, got, tt.want)
		}
	}
}

func TestFormatter_History(t *testing.T) {
	f := NewFormatter(false)
	if got := f.History(nil); got != "No stored reviews.\n" {
		t.Fatalf("empty history = %q", got)
	}
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	got := f.History([]*domain.Review{{ID: "r1", White: "Alice", MovesUCI: []string{"e2e4"}, WhiteAccuracy: 90, BlackAccuracy: 100, CreatedAt: at}})
	if got != "2026-03-01 09:30  r1  Alice vs -  1 plies  90%/100%\n" {
		t.Fatalf("history = %q", got)
	}
}

func TestPresenter(t *testing.T) {
	var buf bytes.Buffer
	images := map[string][]byte{}
	p := NewPresenter(&buf, func(name string, png []byte) error {
		images[name] = png
		return nil
	})

	if err := p.Text("hello\n"); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if err := p.Text("   "); err != nil {
		t.Fatalf("Text blank: %v", err)
	}
	if err := p.JSON(reviewdto.DomainError{Code: "bad_request", Message: "x"}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "hello\n{\n") || !strings.Contains(buf.String(), `"code": "bad_request"`) {
		t.Fatalf("output = %q", buf.String())
	}
	if err := p.Image("ply-1.png", []byte{1}); err != nil || len(images["ply-1.png"]) != 1 {
		t.Fatalf("Image: %v %v", err, images)
	}

	failing := NewPresenter(nil, func(string, []byte) error { return errors.New("disk full") })
	if err := failing.Image("a.png", []byte{1}); err == nil {
		t.Fatalf("expected image write error")
	}
}
