package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
)

func TestRenderStartingBoard(t *testing.T) {
	r := NewPNGRenderer()
	raw, err := r.RenderPNG(context.Background(), chess.StartingBoard(), Options{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != boardSize+2*margin || b.Dy() != boardSize+2*margin {
		t.Fatalf("bounds = %v", b)
	}

	// An empty middle square keeps its plain colour; an occupied one does not.
	e4 := squareRect(chess.Pos(4, 5), imagePointMargin())
	cr, cg, cb, _ := img.At(e4.Min.X+2, e4.Min.Y+2).RGBA()
	lr, lg, lb, _ := lightSquare.RGBA()
	if cr != lr || cg != lg || cb != lb {
		t.Fatalf("e4 corner is not a light square")
	}
	e1 := squareRect(chess.Pos(1, 5), imagePointMargin())
	center := img.At(e1.Min.X+squareSize/2, e1.Min.Y+squareSize*3/4)
	pr, pg, pb, _ := center.RGBA()
	dr, dg, db, _ := darkSquare.RGBA()
	lr2, lg2, lb2, _ := lightSquare.RGBA()
	if (pr == dr && pg == dg && pb == db) || (pr == lr2 && pg == lg2 && pb == lb2) {
		t.Fatalf("king square shows no piece")
	}
}

func TestHighlightChangesOutput(t *testing.T) {
	r := NewPNGRenderer()
	b := chess.StartingBoard()
	plain, _ := r.RenderPNG(context.Background(), b, Options{})
	m := chess.Move{Start: chess.Pos(2, 5), End: chess.Pos(4, 5)}
	lit, err := r.RenderPNG(context.Background(), b, Options{Highlight: &m})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if bytes.Equal(plain, lit) {
		t.Fatalf("highlight had no effect")
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPNGRenderer().RenderPNG(ctx, chess.StartingBoard(), Options{}); err == nil {
		t.Fatalf("cancelled context ignored")
	}
}

func imagePointMargin() image.Point { return image.Point{X: margin, Y: margin} }
