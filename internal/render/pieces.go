package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// pieceSVG is a token disc; the piece letter is drawn on top of it.
const pieceSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<circle cx="50" cy="52" r="38" fill="#000000" fill-opacity="0.25"/>
<circle cx="50" cy="48" r="38" fill="%s" stroke="%s" stroke-width="6"/>
</svg>`

var (
	whitePieceFill   = "#f4f1ea"
	whitePieceStroke = "#3a3a3a"
	blackPieceFill   = "#2b2b2b"
	blackPieceStroke = "#f4f1ea"
)

type pieceCacheKey struct {
	color nchess.Color
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceDisc(c nchess.Color, size int) (image.Image, error) {
	key := pieceCacheKey{color: c, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	fill, stroke := whitePieceFill, whitePieceStroke
	if c == nchess.Black {
		fill, stroke = blackPieceFill, blackPieceStroke
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(fmt.Sprintf(pieceSVG, fill, stroke)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}

func pieceLetter(p nchess.Piece) string {
	switch p.Type() {
	case nchess.King:
		return "K"
	case nchess.Queen:
		return "Q"
	case nchess.Rook:
		return "R"
	case nchess.Bishop:
		return "B"
	case nchess.Knight:
		return "N"
	case nchess.Pawn:
		return "P"
	}
	return ""
}

func pieceLetterColor(p nchess.Piece) color.Color {
	if p.Color() == nchess.Black {
		return color.NRGBA{R: 244, G: 241, B: 234, A: 255}
	}
	return color.NRGBA{R: 43, G: 43, B: 43, A: 255}
}
