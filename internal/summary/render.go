// Package summary renders and serves the post-refresh summary image.
package summary

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stacklok/country-cache-server/internal/service"
)

const (
	// Width of the rendered image in pixels
	Width = 800
	// Height of the rendered image in pixels
	Height = 600

	// TopCount is the number of countries listed on the image
	TopCount = 5

	// Title is the heading drawn at the top of the image
	Title = "Country Currency & Exchange Summary"

	timestampLayout = "2006-01-02 15:04:05 UTC"
)

var (
	backgroundColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	textColor       = color.RGBA{A: 255}
	headerColor     = color.RGBA{R: 41, G: 128, B: 185, A: 255}
)

// Text sizes, as scale factors over the 13px basicfont face
const (
	titleScale  = 2.4
	headerScale = 1.8
	textScale   = 1.4
	smallScale  = 1.1
)

// Data is everything drawn on the summary image
type Data struct {
	TotalCountries int64
	Top            []*service.Country
	RefreshedAt    time.Time
}

// Render draws the summary and encodes it as PNG into w
func Render(w io.Writer, data Data) error {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	refreshed := data.RefreshedAt.UTC().Format(timestampLayout)

	drawText(img, 50, 30, Title, headerColor, titleScale)

	y := 100
	drawText(img, 50, y, fmt.Sprintf("Total Countries: %d", data.TotalCountries), textColor, headerScale)

	y += 30
	drawText(img, 50, y, "Last Updated: "+refreshed, textColor, smallScale)

	y += 40
	drawText(img, 50, y, fmt.Sprintf("Top %d Countries by Estimated GDP:", TopCount), headerColor, headerScale)

	y += 40
	for i, line := range TopLines(data.Top) {
		drawText(img, 70, y, fmt.Sprintf("%d. %s", i+1, line), textColor, textScale)
		y += 35
	}

	y += 40
	drawText(img, 50, y, "Last Refreshed: "+refreshed, textColor, textScale)

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode summary image: %w", err)
	}
	return nil
}

// TopLines formats the ranked entries as "Name: $1,234.56", or N/A without a GDP
func TopLines(top []*service.Country) []string {
	p := message.NewPrinter(language.English)

	if len(top) > TopCount {
		top = top[:TopCount]
	}
	lines := make([]string, 0, len(top))
	for _, c := range top {
		gdp := "N/A"
		if c.EstimatedGDP != nil && !c.EstimatedGDP.IsZero() {
			gdp = p.Sprintf("$%.2f", c.EstimatedGDP.InexactFloat64())
		}
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, gdp))
	}
	return lines
}

// drawText renders s with the 7x13 bitmap face and scales it onto dst with its
// top-left corner at (x, y)
func drawText(dst draw.Image, x, y int, s string, col color.Color, scale float64) {
	face := basicfont.Face7x13
	metrics := face.Metrics()

	width := font.MeasureString(face, s).Ceil()
	height := metrics.Height.Ceil()
	if width == 0 || height == 0 {
		return
	}

	src := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	d.DrawString(s)

	target := image.Rect(x, y, x+int(float64(width)*scale), y+int(float64(height)*scale))
	draw.CatmullRom.Scale(dst, target, src, src.Bounds(), draw.Over, nil)
}
