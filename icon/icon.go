// Package icon renders the tray icon frames: three vertical bars that
// stand still while idle and ripple while speaking.
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

const (
	size     = 16
	barWidth = 2

	// FrameCount is the length of the speaking animation cycle.
	FrameCount = 8

	minBarHeight = 4
	maxBarHeight = 10

	// Per-bar phase offset through the sine cycle.
	phaseStep = 0.33

	capAlpha = 180
)

var (
	barX          = [3]int{3, 7, 11}
	staticHeights = [3]int{6, 10, 8}
	barColor      = color.NRGBA{R: 30, G: 144, B: 255, A: 255} // DodgerBlue
)

var (
	staticFrame []byte
	cycleFrames [FrameCount][]byte
)

func init() {
	staticFrame = renderBars(staticHeights)
	for f := range cycleFrames {
		cycleFrames[f] = renderBars(animatedHeights(f))
	}
}

// Static returns the idle frame.
func Static() []byte {
	return staticFrame
}

// Frames returns the speaking animation cycle in order.
func Frames() [][]byte {
	out := make([][]byte, FrameCount)
	copy(out, cycleFrames[:])
	return out
}

func animatedHeights(frame int) [3]int {
	var heights [3]int
	span := float64(maxBarHeight - minBarHeight)
	for bar := range heights {
		phase := 2 * math.Pi * (float64(frame)/FrameCount + phaseStep*float64(bar))
		heights[bar] = minBarHeight + int(math.Round((math.Sin(phase)+1)/2*span))
	}
	return heights
}

func renderBars(heights [3]int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for bar, h := range heights {
		top := size - h
		for y := top; y < size; y++ {
			c := barColor
			if y == top {
				c.A = capAlpha
			}
			for x := barX[bar]; x < barX[bar]+barWidth; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}
