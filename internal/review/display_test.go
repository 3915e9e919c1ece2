package review

import "testing"

func TestNewEvalBar(t *testing.T) {
	tests := []struct {
		eval  int
		mate  bool
		share float64
		label string
	}{
		{0, false, 50, "0.0"},
		{150, false, 65, "1.5"},
		{-150, false, 35, "1.5"},
		{2000, false, 95, "20.0"},
		{-2000, false, 5, "20.0"},
		{450, false, 95, "4.5"},
		{3, true, 100, "M3"},
		{-2, true, 0, "M2"},
	}
	for _, tt := range tests {
		got := NewEvalBar(tt.eval, tt.mate)
		if got.WhiteShare != tt.share || got.Label != tt.label {
			t.Errorf("NewEvalBar(%d, %v) = %+v, want {%v %s}", tt.eval, tt.mate, got, tt.share, tt.label)
		}
	}
}

func TestFormatEvaluation(t *testing.T) {
	tests := []struct {
		eval int
		mate bool
		want string
	}{
		{0, false, "0.00"},
		{35, false, "0.35"},
		{-120, false, "-1.20"},
		{4, true, "M4"},
		{-4, true, "M4"},
	}
	for _, tt := range tests {
		if got := FormatEvaluation(tt.eval, tt.mate); got != tt.want {
			t.Errorf("FormatEvaluation(%d, %v) = %q, want %q", tt.eval, tt.mate, got, tt.want)
		}
	}
}

func TestMovePairs(t *testing.T) {
	moves := []Move{{SAN: "e4"}, {SAN: "e5"}, {SAN: "Nf3"}}
	pairs := MovePairs(moves)
	if len(pairs) != 2 {
		t.Fatalf("len = %d, want 2", len(pairs))
	}
	if pairs[0].Number != 1 || pairs[0].White.SAN != "e4" || pairs[0].Black.SAN != "e5" {
		t.Fatalf("pairs[0] = %+v", pairs[0])
	}
	if pairs[1].Number != 2 || pairs[1].White.SAN != "Nf3" || pairs[1].Black != nil {
		t.Fatalf("pairs[1] = %+v", pairs[1])
	}
	if pairs[1].WhiteIndex != 2 {
		t.Fatalf("WhiteIndex = %d, want 2", pairs[1].WhiteIndex)
	}
	if len(MovePairs(nil)) != 0 {
		t.Fatalf("MovePairs(nil) not empty")
	}
}
