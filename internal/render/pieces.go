package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
)

// pieceShape returns the outline of a piece kind on a 45x45 canvas.
func pieceShape(k chess.Kind) (string, bool) {
	switch k {
	case chess.Pawn:
		return `<circle cx="22.5" cy="15" r="6"/><path d="M14 38 L31 38 L27 24 L18 24 Z"/>`, true
	case chess.Rook:
		return `<path d="M11 38 H34 V34 H31 V18 H34 V10 H30 V13 H26 V10 H19 V13 H15 V10 H11 V18 H14 V34 H11 Z"/>`, true
	case chess.Knight:
		return `<path d="M13 38 H33 C33 26 30 14 22 9 L19 12 L14 17 L12 23 L16 24 L20 21 C20 26 14 30 13 38 Z"/>`, true
	case chess.Bishop:
		return `<path d="M15 38 H30 L27 30 C31 26 30 18 22.5 10 C15 18 14 26 18 30 Z"/><circle cx="22.5" cy="8" r="2.5"/>`, true
	case chess.Queen:
		return `<path d="M10 38 H35 L33 30 L37 14 L29 24 L27 10 L22.5 24 L18 10 L16 24 L8 14 L12 30 Z"/>`, true
	case chess.King:
		return `<path d="M12 38 H33 L31 28 C35 22 31 16 25 18 L24 16 H21 L20 18 C14 16 10 22 14 28 Z"/>` +
			`<path d="M21.5 5 H23.5 V8 H26.5 V10 H23.5 V15 H21.5 V10 H18.5 V8 H21.5 Z"/>`, true
	}
	return "", false
}

func pieceSVG(p chess.Piece) ([]byte, error) {
	shape, ok := pieceShape(p.Kind)
	if !ok {
		return nil, fmt.Errorf("no shape for %v", p)
	}
	fill, stroke := "#f8f8f8", "#111111"
	if p.Color == chess.Black {
		fill, stroke = "#222222", "#dddddd"
	}
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45">`+
			`<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">%s</g></svg>`,
		fill, stroke, shape)), nil
}

type pieceCacheKey struct {
	piece chess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece chess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
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
