package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/devicepilot/internal/model"
)

// LabelMode controls what text is drawn on each annotated element.
type LabelMode int

const (
	// LabelIDs draws "[id]" element IDs.
	LabelIDs LabelMode = iota
	// LabelCoords draws "(x,y)" center coordinates in device pixels.
	LabelCoords
)

var (
	boxColor     = color.NRGBA{R: 255, G: 0, B: 0, A: 100}
	textColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.NRGBA{R: 0, G: 0, B: 0, A: 200}
)

// Annotate draws a box and label for every element in the tree onto a copy
// of img. Element bounds are device pixels; size is the display size they
// refer to, so screenshots captured at another resolution still line up.
func Annotate(img image.Image, elements []model.ScreenElement, size model.ScreenSize, mode LabelMode) *image.RGBA {
	rgba := toRGBA(img)

	b := img.Bounds()
	scaleX, scaleY := 1.0, 1.0
	if size.Width > 0 {
		scaleX = float64(b.Dx()) / float64(size.Width)
	}
	if size.Height > 0 {
		scaleY = float64(b.Dy()) / float64(size.Height)
	}

	model.Walk(elements, func(el *model.ScreenElement) bool {
		drawElement(rgba, *el, scaleX, scaleY, mode)
		return true
	})
	return rgba
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

func drawElement(img *image.RGBA, el model.ScreenElement, scaleX, scaleY float64, mode LabelMode) {
	x := int(float64(el.Bounds[0]) * scaleX)
	y := int(float64(el.Bounds[1]) * scaleY)
	w := int(float64(el.Bounds[2]) * scaleX)
	h := int(float64(el.Bounds[3]) * scaleY)
	if w <= 0 || h <= 0 {
		return
	}
	drawRectangle(img, x, y, x+w, y+h, boxColor)

	var label string
	switch mode {
	case LabelCoords:
		cx, cy := el.Center()
		label = fmt.Sprintf("(%d,%d)", cx, cy)
	default:
		label = fmt.Sprintf("[%d]", el.ID)
	}
	drawTextWithOutline(img, label, x+w/2, y+h/2)
}

// drawRectangle draws an outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawTextWithOutline centers text at (x, y) with a one-pixel outline.
// basicfont.Face7x13 glyphs are 7 pixels wide and 13 high.
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	originX := x - len(text)*7/2
	originY := y + 13/2

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, text, originX+dx, originY+dy, outlineColor)
		}
	}
	drawString(img, text, originX, originY, textColor)
}

func drawString(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
