package textures

import (
	"image/color"
	"testing"

	. "github.com/onsi/gomega"
)

func TestCheckerboard(t *testing.T) {
	g := NewWithT(t)

	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	img := Checkerboard(64, 4, white, black)
	g.Expect(img.Bounds().Dx()).To(Equal(64))
	g.Expect(img.Bounds().Dy()).To(Equal(64))

	g.Expect(img.RGBAAt(0, 0)).To(Equal(white))
	g.Expect(img.RGBAAt(15, 15)).To(Equal(white))
	g.Expect(img.RGBAAt(16, 0)).To(Equal(black))
	g.Expect(img.RGBAAt(0, 16)).To(Equal(black))
	g.Expect(img.RGBAAt(16, 16)).To(Equal(white))
	g.Expect(img.RGBAAt(63, 0)).To(Equal(black))
}

func TestTiles(t *testing.T) {
	g := NewWithT(t)

	img := Tiles(128, 4)
	g.Expect(img.Bounds().Dx()).To(Equal(128))

	grout := img.RGBAAt(0, 0)
	centre := img.RGBAAt(16, 16)
	g.Expect(grout).To(Equal(color.RGBA{60, 55, 50, 255}))
	g.Expect(centre.R).To(BeNumerically(">", grout.R))
	g.Expect(centre.A).To(Equal(uint8(255)))
}
