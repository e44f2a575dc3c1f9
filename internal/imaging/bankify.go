package imaging

import (
	"image"
	"image/draw"
)

// Bank slot frame dimensions in the bank interface.
const (
	BankFrameWidth  = 36
	BankFrameHeight = 32
)

// stackStripHeight is the band at the top of a bank slot occupied by the
// overlaid stack-count glyph. It is erased wholesale rather than detected.
const stackStripHeight = 9

// Bankify centers a sprite in a 36x32 frame and erases the top rows where the
// bank interface draws the item stack count. The second return value reports
// that the sprite was larger than the frame; such sprites are returned
// unchanged so the caller can still persist them, but they are unlikely to be
// useful for bank-slot matching.
//
// A sprite that is exactly 36x32 is returned unchanged as well. Smaller
// sprites are placed at a truncated half-difference offset on each axis, so an
// odd pixel of slack ends up on the bottom/right edge rather than being split.
func Bankify(src image.Image) (image.Image, bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if h > BankFrameHeight || w > BankFrameWidth {
		return src, true
	}
	if h == BankFrameHeight && w == BankFrameWidth {
		return src, false
	}

	offX := (BankFrameWidth - w) / 2
	offY := (BankFrameHeight - h) / 2

	dst := image.NewNRGBA(image.Rect(0, 0, BankFrameWidth, BankFrameHeight))
	target := image.Rect(offX, offY, offX+w, offY+h)
	draw.Draw(dst, target, src, b.Min, draw.Src)

	// Erase the stack-count band regardless of where the sprite landed.
	clearRect(dst, image.Rect(0, 0, BankFrameWidth, stackStripHeight))

	return dst, false
}

func clearRect(img *image.NRGBA, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := range row {
			row[i] = 0
		}
	}
}
