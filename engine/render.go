package engine

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Snake colours, indexed by registration order.
var palette = [...][3]float64{
	{0.91, 0.27, 0.38},
	{0.20, 0.60, 0.86},
	{0.18, 0.80, 0.44},
	{0.95, 0.77, 0.06},
	{0.61, 0.35, 0.71},
	{0.90, 0.49, 0.13},
	{0.10, 0.74, 0.61},
	{0.93, 0.44, 0.69},
}

type RenderOptions struct {
	BlockSize int  // pixels per cell
	Width     int  // if > 0, the image is scaled to this width
	Grid      bool // draw cell grid lines
}

// RenderBoard draws the current state of g. Games still in the lobby or
// finished render an empty board.
func RenderBoard(g *Game, opts RenderOptions) image.Image {
	if opts.BlockSize <= 0 {
		opts.BlockSize = 8
	}
	bs := float64(opts.BlockSize)
	w, h := g.board.Width*opts.BlockSize, g.board.Height*opts.BlockSize

	dc := gg.NewContext(w, h)
	dc.SetRGB(0.1, 0.1, 0.18)
	dc.Clear()

	if opts.Grid {
		dc.SetRGB(0.16, 0.16, 0.26)
		dc.SetLineWidth(1)
		for x := 0; x <= w; x += opts.BlockSize {
			dc.DrawLine(float64(x), 0, float64(x), float64(h))
			dc.Stroke()
		}
		for y := 0; y <= h; y += opts.BlockSize {
			dc.DrawLine(0, float64(y), float64(w), float64(y))
			dc.Stroke()
		}
	}

	g.Inspect(func(st State) {
		playing, ok := st.(*Playing)
		if !ok {
			return
		}
		dc.SetRGB(0.85, 0.1, 0.1)
		for _, a := range playing.Apples {
			dc.DrawCircle(float64(a.X)*bs+bs/2, float64(a.Y)*bs+bs/2, bs/2.5)
			dc.Fill()
		}
		for i, id := range g.players {
			s, ok := playing.alive(id)
			if !ok {
				continue
			}
			c := palette[i%len(palette)]
			for j, cell := range g.board.Cells(s) {
				shade := 1.0
				if j > 0 {
					shade = 0.75
				}
				if s.Frozen.Active() {
					dc.SetRGB(0.7, 0.85, 1)
				} else {
					dc.SetRGB(c[0]*shade, c[1]*shade, c[2]*shade)
				}
				dc.DrawRectangle(float64(cell.X)*bs, float64(cell.Y)*bs, bs, bs)
				dc.Fill()
			}
		}
	})

	img := dc.Image()
	if opts.Width > 0 && opts.Width != w {
		img = imaging.Resize(img, opts.Width, 0, imaging.NearestNeighbor)
	}
	return img
}
