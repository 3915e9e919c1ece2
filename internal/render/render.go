// Package render draws a review position as a PNG: board, move highlight in the
// classification colour, and the evaluation bar.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-review/internal/review"
)

// Frame is everything drawn for one cursor position.
type Frame struct {
	Position string
	From     string
	To       string
	// Accent is the "#rrggbb" colour used for the from/to squares.
	Accent  string
	Bar     review.EvalBar
	Caption string
}

// FrameFromView builds a frame for a cursor view. Ply -1 has no highlight.
func FrameFromView(v review.View) Frame {
	f := Frame{
		Position: string(v.Position),
		Bar:      v.EvalBar(),
		Caption:  "Start " + v.EvalText(),
	}
	if v.Move != nil {
		f.From, f.To = string(v.Move.From), string(v.Move.To)
		notation := v.Move.SAN
		if notation == "" {
			notation = v.Move.UCI()
		}
		f.Caption = fmt.Sprintf("%d%s %s %s", v.Ply/2+1, dots(v.Move.Side), notation, v.EvalText())
	}
	if v.Classification != nil {
		f.Accent = v.Classification.Color
		f.Caption += "  " + v.Classification.Label.String()
	}
	return f
}

func dots(s review.Side) string {
	if s == review.Black {
		return "..."
	}
	return "."
}

type Renderer struct {
	squareSize int
}

type Option func(*Renderer)

// WithSquareSize sets the edge of one board square in pixels.
func WithSquareSize(px int) Option {
	return func(r *Renderer) {
		if px >= 16 {
			r.squareSize = px
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{squareSize: 64}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const (
	margin       = 24
	barWidth     = 24
	barGap       = 12
	headerHeight = 36
)

var (
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	backgroundColor = color.RGBA{28, 31, 46, 255}
	barWhite        = color.RGBA{240, 240, 240, 255}
	barBlack        = color.RGBA{50, 50, 50, 255}
	textColor       = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	defaultAccent   = color.NRGBA{R: 255, G: 228, B: 120, A: 255}
)

// layout holds pixel geometry derived from the square size.
type layout struct {
	square int
	board  image.Rectangle
	bar    image.Rectangle
	total  image.Rectangle
}

func (r *Renderer) layout() layout {
	boardSize := r.squareSize * 8
	origin := image.Pt(margin+barWidth+barGap, headerHeight)
	return layout{
		square: r.squareSize,
		board:  image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize),
		bar:    image.Rect(margin, origin.Y, margin+barWidth, origin.Y+boardSize),
		total:  image.Rect(0, 0, origin.X+boardSize+margin, origin.Y+boardSize+margin),
	}
}

// RenderPNG draws f and encodes it.
func (r *Renderer) RenderPNG(ctx context.Context, f Frame) ([]byte, error) {
	img, err := r.Render(ctx, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) Render(ctx context.Context, f Frame) (*image.RGBA, error) {
	board, err := boardOf(f.Position)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := r.layout()
	img := image.NewRGBA(l.total)
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawSquares(img, l)
	if err := drawHighlight(img, l, f); err != nil {
		return nil, err
	}
	if err := drawPieces(ctx, img, l, board); err != nil {
		return nil, err
	}
	drawEvalBar(img, l, f.Bar)
	drawCoordinates(img, l)
	drawText(img, strings.TrimSpace(f.Caption), l.board.Min.X, headerHeight/2+5, textColor)
	return img, nil
}

func boardOf(fen string) (*nchess.Board, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, fmt.Errorf("render: empty position")
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("render: invalid fen: %w", err)
	}
	return nchess.NewGame(opt).Position().Board(), nil
}

func drawSquares(img *image.RGBA, l layout) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			clr := lightSquare
			if (col+7-row)%2 == 0 {
				clr = darkSquare
			}
			imagedraw.Draw(img, cellRect(l, col, row), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawHighlight(img *image.RGBA, l layout, f Frame) error {
	if f.From == "" && f.To == "" {
		return nil
	}
	accent := defaultAccent
	if f.Accent != "" {
		c, err := ParseHexColor(f.Accent)
		if err != nil {
			return err
		}
		accent = c
	}
	accent.A = 150
	for _, name := range []string{f.From, f.To} {
		col, row, ok := squareCell(name)
		if !ok {
			continue
		}
		imagedraw.Draw(img, cellRect(l, col, row), image.NewUniform(accent), image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawPieces(ctx context.Context, img *image.RGBA, l layout, board *nchess.Board) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		disc, err := renderPieceDisc(piece.Color(), l.square)
		if err != nil {
			return err
		}
		rect := cellRect(l, int(sq.File()), 7-int(sq.Rank()))
		imagedraw.Draw(img, rect, disc, image.Point{}, imagedraw.Over)

		letter := pieceLetter(piece)
		face := basicfont.Face7x13
		w := font.MeasureString(face, letter).Round()
		drawText(img, letter, rect.Min.X+(rect.Dx()-w)/2, rect.Min.Y+rect.Dy()/2+4, pieceLetterColor(piece))
	}
	return nil
}

// drawEvalBar fills White's share from the bottom, Black's from the top.
func drawEvalBar(img *image.RGBA, l layout, bar review.EvalBar) {
	share := math.Max(0, math.Min(100, bar.WhiteShare))
	whiteHeight := int(math.Round(float64(l.bar.Dy()) * share / 100))
	split := l.bar.Max.Y - whiteHeight

	imagedraw.Draw(img, image.Rect(l.bar.Min.X, l.bar.Min.Y, l.bar.Max.X, split), image.NewUniform(barBlack), image.Point{}, imagedraw.Src)
	imagedraw.Draw(img, image.Rect(l.bar.Min.X, split, l.bar.Max.X, l.bar.Max.Y), image.NewUniform(barWhite), image.Point{}, imagedraw.Src)

	if bar.Label == "" {
		return
	}
	w := font.MeasureString(basicfont.Face7x13, bar.Label).Round()
	x := l.bar.Min.X + (l.bar.Dx()-w)/2
	if share >= 50 {
		drawText(img, bar.Label, x, l.bar.Max.Y-4, barBlack)
	} else {
		drawText(img, bar.Label, x, l.bar.Min.Y+13, barWhite)
	}
}

func drawCoordinates(img *image.RGBA, l layout) {
	for i := 0; i < 8; i++ {
		file := string(rune('a' + i))
		x := l.board.Min.X + i*l.square + l.square/2 - 3
		drawText(img, file, x, l.board.Max.Y+15, textColor)
	}
}

func drawText(img *image.RGBA, text string, x, baseline int, clr color.Color) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

func cellRect(l layout, col, row int) image.Rectangle {
	x := l.board.Min.X + col*l.square
	y := l.board.Min.Y + row*l.square
	return image.Rect(x, y, x+l.square, y+l.square)
}

// squareCell maps "e4" to its column and row, row 0 being rank 8.
func squareCell(name string) (col, row int, ok bool) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return 0, 0, false
	}
	return int(name[0] - 'a'), 7 - int(name[1]-'1'), true
}

// ParseHexColor accepts "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("render: bad colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("render: bad colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
