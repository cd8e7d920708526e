package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas geometry in pixels.
const (
	Width  = 800
	Height = 480

	marginLeft   = 56
	marginRight  = 24
	marginTop    = 40
	marginBottom = 72

	// MaxBars caps how many categories a bar chart draws.
	MaxBars = 40

	glyphWidth = 7 // basicfont.Face7x13 advance
)

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ink        = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	axis       = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	// BarColor fills bars and traces lines.
	BarColor = color.RGBA{R: 0x4c, G: 0x78, B: 0xa8, A: 0xff}
)

// Point is one labeled value.
type Point struct {
	Label string
	Value int
}

// plotArea is the region inside the margins.
func plotArea() image.Rectangle {
	return image.Rect(marginLeft, marginTop, Width-marginRight, Height-marginBottom)
}

// Bar renders a bar chart of points, in the given order, as PNG. Only the
// first MaxBars points are drawn.
func Bar(w io.Writer, title string, points []Point) error {
	if len(points) > MaxBars {
		points = points[:MaxBars]
	}
	c := newCanvas(title)
	plot := plotArea()
	maxV := maxValue(points)
	if maxV == 0 {
		c.noData(plot)
		return c.encode(w)
	}
	c.yAxis(plot, maxV)

	slot := plot.Dx() / len(points)
	barW := max(slot*7/10, 1)
	for i, p := range points {
		h := p.Value * plot.Dy() / maxV
		x0 := plot.Min.X + i*slot + (slot-barW)/2
		c.fill(image.Rect(x0, plot.Max.Y-h, x0+barW, plot.Max.Y), BarColor)

		center := plot.Min.X + i*slot + slot/2
		if slot >= 2*glyphWidth {
			v := strconv.Itoa(p.Value)
			c.text(center-len(v)*glyphWidth/2, plot.Max.Y-h-4, v, ink)
		}
		label := truncate(p.Label, slot/glyphWidth)
		c.text(center-len(label)*glyphWidth/2, plot.Max.Y+16, label, ink)
	}
	return c.encode(w)
}

// Line renders points as a line chart, in the given order, as PNG.
func Line(w io.Writer, title string, points []Point) error {
	c := newCanvas(title)
	plot := plotArea()
	maxV := maxValue(points)
	if maxV == 0 {
		c.noData(plot)
		return c.encode(w)
	}
	c.yAxis(plot, maxV)

	n := len(points)
	xAt := func(i int) int {
		if n == 1 {
			return plot.Min.X + plot.Dx()/2
		}
		return plot.Min.X + i*plot.Dx()/(n-1)
	}
	yAt := func(v int) int { return plot.Max.Y - v*plot.Dy()/maxV }

	// Label every step-th point so labels never overlap.
	widest := 1
	for _, p := range points {
		widest = max(widest, len(p.Label))
	}
	step := max(1, (n*(widest+1)*glyphWidth+plot.Dx()-1)/plot.Dx())

	for i, p := range points {
		x, y := xAt(i), yAt(p.Value)
		if i > 0 {
			c.line(xAt(i-1), yAt(points[i-1].Value), x, y, BarColor)
		}
		c.fill(image.Rect(x-2, y-2, x+3, y+3), BarColor)
		if i%step == 0 {
			c.text(x-len(p.Label)*glyphWidth/2, plot.Max.Y+16, p.Label, ink)
		}
	}
	return c.encode(w)
}

type canvas struct {
	img *image.RGBA
}

func newCanvas(title string) *canvas {
	c := &canvas{img: image.NewRGBA(image.Rect(0, 0, Width, Height))}
	c.fill(c.img.Bounds(), background)
	c.text((Width-len(title)*glyphWidth)/2, marginTop/2+4, title, ink)

	plot := plotArea()
	c.line(plot.Min.X, plot.Min.Y, plot.Min.X, plot.Max.Y, axis)
	c.line(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y, axis)
	return c
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// line draws a one-pixel line with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1 int, col color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.img.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *canvas) yAxis(plot image.Rectangle, maxV int) {
	top := strconv.Itoa(maxV)
	c.text(plot.Min.X-6-len(top)*glyphWidth, plot.Min.Y+5, top, ink)
	c.text(plot.Min.X-6-glyphWidth, plot.Max.Y+4, "0", ink)
}

func (c *canvas) noData(plot image.Rectangle) {
	msg := "no data"
	c.text(plot.Min.X+(plot.Dx()-len(msg)*glyphWidth)/2, plot.Min.Y+plot.Dy()/2, msg, axis)
}

func (c *canvas) encode(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	return nil
}

func maxValue(points []Point) int {
	m := 0
	for _, p := range points {
		m = max(m, p.Value)
	}
	return m
}

// truncate shortens s to at most n runes, marking the cut with "~".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "~"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
