// Package qr renders a decorative QR-style placeholder for a bill's
// share link. It is not a scannable QR code: the pattern is a
// deterministic hash of the link, drawn with real finder squares so it
// reads as "scan me" in the share view. The link itself is shown as
// text next to the image.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

const (
	// moduleCount is the grid dimension, 25x25 like a version 2 code.
	moduleCount = 25

	// DefaultSize is the rendered image size in pixels.
	DefaultSize = 200
)

// Generate renders the placeholder PNG for the given value at the given
// pixel size. The same value always renders the same image.
func Generate(value string, size int) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("qr value is empty")
	}
	if size <= 0 {
		size = DefaultSize
	}

	moduleSize := size / moduleCount
	if moduleSize < 1 {
		return nil, fmt.Errorf("size %d too small for %d modules", size, moduleCount)
	}

	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	drawFinderPattern(img, 0, 0, moduleSize)
	drawFinderPattern(img, moduleCount-7, 0, moduleSize)
	drawFinderPattern(img, 0, moduleCount-7, moduleSize)

	// Seed from the value with the same 31-based string hash the share
	// view has always used, then run an LCG over the data area.
	var hash int32
	for _, c := range value {
		hash = (hash << 5) - hash + int32(c)
	}
	for row := 0; row < moduleCount; row++ {
		for col := 0; col < moduleCount; col++ {
			if inFinderArea(row, col) {
				continue
			}
			hash = (hash*1103515245 + 12345) & 0x7fffffff
			if hash%3 == 0 {
				fillModule(img, col, row, moduleSize, moduleSize)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// inFinderArea reports whether the module falls inside one of the three
// corner finder zones, including their one-module quiet border.
func inFinderArea(row, col int) bool {
	return (row < 8 && col < 8) ||
		(row < 8 && col >= moduleCount-8) ||
		(row >= moduleCount-8 && col < 8)
}

// drawFinderPattern draws the nested 7x7 corner square at module (x, y).
func drawFinderPattern(img *image.Gray, x, y, moduleSize int) {
	fillRect(img, x*moduleSize, y*moduleSize, 7*moduleSize, 7*moduleSize, color.Gray{Y: 0})
	fillRect(img, (x+1)*moduleSize, (y+1)*moduleSize, 5*moduleSize, 5*moduleSize, color.Gray{Y: 0xff})
	fillRect(img, (x+2)*moduleSize, (y+2)*moduleSize, 3*moduleSize, 3*moduleSize, color.Gray{Y: 0})
}

func fillModule(img *image.Gray, col, row, w, h int) {
	fillRect(img, col*w, row*h, w, h, color.Gray{Y: 0})
}

func fillRect(img *image.Gray, x, y, w, h int, c color.Gray) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			img.SetGray(x+dx, y+dy, c)
		}
	}
}
