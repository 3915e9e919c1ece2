package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/park285/cheese-review/internal/review"
)

const (
	startFEN    = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	afterE4FEN  = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	blunderTone = "#c62c2c"
)

func TestRenderPNG_Decodes(t *testing.T) {
	data, err := New().RenderPNG(context.Background(), Frame{Position: startFEN, Bar: review.NewEvalBar(0, false)})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 596 || got.Dy() != 572 {
		t.Fatalf("bounds = %v", got)
	}
}

func TestRender_HighlightUsesAccent(t *testing.T) {
	r := New()
	img, err := r.Render(context.Background(), Frame{Position: afterE4FEN, From: "e2", To: "e4", Accent: blunderTone})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	l := r.layout()

	e2 := cellRect(l, 4, 6).Min.Add(image.Pt(1, 1))
	if got := img.RGBAAt(e2.X, e2.Y); got == lightSquare || got.G >= lightSquare.G {
		t.Fatalf("e2 corner = %v, want tinted toward %s", got, blunderTone)
	}
	d2 := cellRect(l, 3, 6).Min.Add(image.Pt(1, 1))
	if got := img.RGBAAt(d2.X, d2.Y); got != darkSquare {
		t.Fatalf("d2 corner = %v, want untouched %v", got, darkSquare)
	}
}

func TestRender_EvalBarSplit(t *testing.T) {
	r := New()
	img, err := r.Render(context.Background(), Frame{Position: startFEN, Bar: review.EvalBar{WhiteShare: 75}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	l := r.layout()
	x := l.bar.Min.X + 1
	if got := img.RGBAAt(x, l.bar.Min.Y+1); got != barBlack {
		t.Fatalf("bar top = %v, want black", got)
	}
	if got := img.RGBAAt(x, l.bar.Max.Y-1); got != barWhite {
		t.Fatalf("bar bottom = %v, want white", got)
	}
	quarter := l.bar.Min.Y + l.bar.Dy()/4
	if got := img.RGBAAt(x, quarter-2); got != barBlack {
		t.Fatalf("above split = %v, want black", got)
	}
	if got := img.RGBAAt(x, quarter+2); got != barWhite {
		t.Fatalf("below split = %v, want white", got)
	}
}

func TestRender_Errors(t *testing.T) {
	r := New()
	if _, err := r.Render(context.Background(), Frame{}); err == nil {
		t.Fatalf("expected error for empty position")
	}
	if _, err := r.Render(context.Background(), Frame{Position: "not a fen"}); err == nil {
		t.Fatalf("expected error for invalid fen")
	}
	if _, err := r.Render(context.Background(), Frame{Position: startFEN, From: "e2", To: "e4", Accent: "#zzzzzz"}); err == nil {
		t.Fatalf("expected error for bad accent")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, Frame{Position: startFEN}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFrameFromView(t *testing.T) {
	game := review.Game{
		Moves:     []review.Move{{From: "e2", To: "e4", Notation: "e2e4", SAN: "e4"}},
		Snapshots: []review.Snapshot{startFEN, afterE4FEN},
	}
	s, err := review.NewSession("id", game, []review.EvaluationSample{{Evaluation: 30, RecommendedMove: "e2e4"}})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	start := FrameFromView(s.ViewAt(-1))
	if start.From != "" || start.Accent != "" || start.Position != startFEN || start.Caption != "Start 0.00" {
		t.Fatalf("start frame = %+v", start)
	}

	f := FrameFromView(s.ViewAt(0))
	if f.From != "e2" || f.To != "e4" || f.Position != afterE4FEN {
		t.Fatalf("frame = %+v", f)
	}
	if f.Accent != review.BestMove.Color() {
		t.Fatalf("accent = %q", f.Accent)
	}
	if f.Caption != "1. e4 0.30  Best Move" {
		t.Fatalf("caption = %q", f.Caption)
	}
	if f.Bar.WhiteShare != 53 {
		t.Fatalf("bar = %+v", f.Bar)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#81b64c", color.NRGBA{R: 0x81, G: 0xb6, B: 0x4c, A: 255}, false},
		{"c62c2c", color.NRGBA{R: 0xc6, G: 0x2c, B: 0x2c, A: 255}, false},
		{"#fff", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseHexColor(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
