package preview

import (
	"image"
	"math"
)

// frameBuffer is the splat target: flat color and depth slices for cache
// locality. Depth starts at -inf; a splat lands only if it is nearer.
type frameBuffer struct {
	width  int
	height int
	color  []uint8   // RGBA interleaved, len = W*H*4
	depth  []float64 // per pixel, len = W*H
}

func newFrameBuffer(w, h int) *frameBuffer {
	n := w * h
	depth := make([]float64, n)
	for i := range depth {
		depth[i] = math.Inf(-1)
	}
	return &frameBuffer{
		width:  w,
		height: h,
		color:  make([]uint8, n*4),
		depth:  depth,
	}
}

// splat writes one point if it passes the depth test. Out-of-bounds
// coordinates are dropped.
func (fb *frameBuffer) splat(x, y int, z float64, r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	i := y*fb.width + x
	if z <= fb.depth[i] {
		return
	}
	fb.depth[i] = z
	ci := i * 4
	fb.color[ci] = r
	fb.color[ci+1] = g
	fb.color[ci+2] = b
	fb.color[ci+3] = a
}

// toImage copies the color plane into an NRGBA image.
func (fb *frameBuffer) toImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.width, fb.height))
	copy(img.Pix, fb.color)
	return img
}
