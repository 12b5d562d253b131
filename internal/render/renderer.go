// Package render draws board snapshots as PNG images.
package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
)

// Options tweak a single render.
type Options struct {
	// Highlight marks the start and end squares of a move, usually the last one.
	Highlight *chess.Move
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, b chess.Board, opts Options) ([]byte, error)
}

const (
	squareSize = 56
	margin     = 24
	boardSize  = squareSize * 8
)

var (
	lightSquare    = color.RGBA{R: 0xee, G: 0xee, B: 0xd2, A: 0xff}
	darkSquare     = color.RGBA{R: 0x76, G: 0x96, B: 0x56, A: 0xff}
	frameColor     = color.RGBA{R: 0x30, G: 0x2e, B: 0x2b, A: 0xff}
	labelColor     = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	highlightColor = color.RGBA{R: 0xf6, G: 0xf6, B: 0x69, A: 0x90}
)

type pngRenderer struct{}

// NewPNGRenderer returns the default renderer, White at the bottom.
func NewPNGRenderer() BoardRenderer { return pngRenderer{} }

func (pngRenderer) RenderPNG(ctx context.Context, b chess.Board, opts Options) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	total := boardSize + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	draw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, draw.Src)
	origin := image.Point{X: margin, Y: margin}

	drawSquares(img, origin)
	if opts.Highlight != nil {
		drawSquareOverlay(img, opts.Highlight.Start, origin, highlightColor)
		drawSquareOverlay(img, opts.Highlight.End, origin, highlightColor)
	}
	if err := drawPieces(img, &b, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, origin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// squareRect maps a board position to pixels; rank 8 is the top row.
func squareRect(p chess.Position, origin image.Point) image.Rectangle {
	x := origin.X + (p.Col-1)*squareSize
	y := origin.Y + (8-p.Row)*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawSquares(dst draw.Image, origin image.Point) {
	for row := 1; row <= 8; row++ {
		for col := 1; col <= 8; col++ {
			clr := lightSquare
			if (row+col)%2 == 0 {
				clr = darkSquare
			}
			draw.Draw(dst, squareRect(chess.Pos(row, col), origin), image.NewUniform(clr), image.Point{}, draw.Src)
		}
	}
}

func drawSquareOverlay(dst draw.Image, p chess.Position, origin image.Point, clr color.Color) {
	if !p.InBounds() {
		return
	}
	draw.Draw(dst, squareRect(p, origin), image.NewUniform(clr), image.Point{}, draw.Over)
}

func drawPieces(dst draw.Image, b *chess.Board, origin image.Point) error {
	for row := 1; row <= 8; row++ {
		for col := 1; col <= 8; col++ {
			p := chess.Pos(row, col)
			piece, _ := b.Get(p)
			if piece.Empty() {
				continue
			}
			pimg, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			r := squareRect(p, origin)
			draw.Draw(dst, r, pimg, image.Point{}, draw.Over)
		}
	}
	return nil
}

func drawCoordinates(dst draw.Image, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(labelColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		rank := string(rune('8' - i))
		y := origin.Y + i*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, rank, origin.X/2, y)

		file := string(rune('a' + i))
		x := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, file, x, origin.Y+boardSize+ascent+2)
	}
}

func drawCenteredText(d *font.Drawer, text string, centerX, baseline int) {
	w := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(centerX-w/2, baseline)
	d.DrawString(text)
}
