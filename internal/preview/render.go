// Package preview renders a decoded point block into a top-down
// orthographic splat image. Points project X→right, Y→up with Z as depth;
// blocks without color data get a height ramp so structure stays visible.
package preview

import (
	"image"

	"potree-preview/internal/mathutil"
	"potree-preview/internal/points"
)

// margin keeps splats off the image border, as a fraction of the target
// size per side.
const margin = 0.04

// Render splats block into a size×size image. bboxMin/bboxMax frame the
// projection; a degenerate box falls back to the block's own extent.
// supersample > 1 renders at a multiple of size and lets the caller
// downsample.
func Render(block *points.PointBlock, bboxMin, bboxMax mathutil.Vec3, size, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	px := size * supersample
	fb := newFrameBuffer(px, px)

	if block.Len() == 0 {
		return fb.toImage()
	}

	min, max := bboxMin, bboxMax
	if max.Sub(min).Len() == 0 {
		min, max = blockBounds(block)
	}

	span := max.Sub(min)
	extent := span[0]
	if span[1] > extent {
		extent = span[1]
	}
	if extent <= 0 {
		extent = 1
	}
	usable := float64(px) * (1 - 2*margin)
	scale := usable / extent

	// Center the footprint.
	cx := (min[0] + max[0]) / 2
	cy := (min[1] + max[1]) / 2

	zLo, zHi := min[2], max[2]
	zSpan := zHi - zLo
	if zSpan <= 0 {
		zSpan = 1
	}

	for i, p := range block.Positions {
		x := int(float64(px)/2 + (p[0]-cx)*scale)
		// Image rows grow downward.
		y := int(float64(px)/2 - (p[1]-cy)*scale)

		var r, g, b, a uint8
		if block.Colors != nil {
			c := block.Colors[i]
			r, g, b, a = c.R, c.G, c.B, c.A
		} else {
			// Height ramp: dark at the box floor, bright at the top.
			t := (p[2] - zLo) / zSpan
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			v := uint8(55 + t*200)
			r, g, b, a = v, v, v, 255
		}
		fb.splat(x, y, p[2], r, g, b, a)
	}

	return fb.toImage()
}

func blockBounds(block *points.PointBlock) (min, max mathutil.Vec3) {
	min = block.Positions[0]
	max = block.Positions[0]
	for _, p := range block.Positions[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}
