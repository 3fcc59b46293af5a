// Package textures generates the images samples use as textures. They are
// computed at start up so no image files need to ship with the binaries.
package textures

import (
	"image"
	"image/color"
	"math"
)

// Checkerboard returns a size x size image of cells x cells squares
// alternating between a and b. The top left square is a.
func Checkerboard(size, cells int, a, b color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if cells < 1 {
		cells = 1
	}

	ca := color.RGBAModel.Convert(a).(color.RGBA)
	cb := color.RGBAModel.Convert(b).(color.RGBA)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			cx := x * cells / size
			cy := y * cells / size
			if (cx+cy)%2 == 0 {
				img.SetRGBA(x, y, ca)
			} else {
				img.SetRGBA(x, y, cb)
			}
		}
	}

	return img
}

// Tiles is a size x size texture of bright tiles with dark grout lines,
// shaded a little towards the edges.
func Tiles(size, cells int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if cells < 1 {
		cells = 1
	}

	cell := float64(size) / float64(cells)
	grout := math.Max(1, cell/16)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := math.Mod(float64(x), cell)
			fy := math.Mod(float64(y), cell)
			edge := math.Min(math.Min(fx, cell-fx), math.Min(fy, cell-fy))

			if edge < grout {
				img.SetRGBA(x, y, color.RGBA{R: 60, G: 55, B: 50, A: 255})
				continue
			}

			// 1 in the middle of a tile, dropping to 0.8 at its border.
			shade := 0.8 + 0.2*math.Min(1, (edge-grout)/(cell/4))
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(220 * shade),
				G: uint8(200 * shade),
				B: uint8(170 * shade),
				A: 255,
			})
		}
	}

	return img
}
