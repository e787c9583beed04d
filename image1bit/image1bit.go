// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image1bit implements black and white (1 bit per pixel) images in
// the vertical LSB packing used by paged OLED controllers.
//
// Byte k of a row band holds 8 vertically stacked pixels of column k, least
// significant bit topmost. This is the native layout of SH1107/SSD1306 class
// display memory, so a full image can be streamed to the controller without
// repacking.
package image1bit

import (
	"image"
	"image/color"
	"image/draw"
)

// Bit implements a 1 bit color.
type Bit bool

// RGBA returns fully saturated white or fully saturated black.
func (b Bit) RGBA() (uint32, uint32, uint32, uint32) {
	if b {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// Possible bitness.
const (
	On  Bit = true
	Off Bit = false
)

// BitModel is the color model for 1 bit color.
var BitModel = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	return convertBit(c)
}

// convertBit thresholds a color at 50% of the ITU-R 601 luminance range.
func convertBit(c color.Color) Bit {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// VerticalLSB is a 1 bit image with pixels packed vertically, least
// significant bit first.
//
// The image is stored as horizontal bands of 8 rows, one byte per column per
// band. Bands are aligned to Rect.Min.Y, so a band always covers exactly 8
// consecutive rows of the image.
type VerticalLSB struct {
	// Pix holds the image's pixels, as vertically LSB-first packed bitmap.
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent bands.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewVerticalLSB returns an initialized (all Off) VerticalLSB instance.
//
// The height of r is rounded up to the next band boundary; pixels in the
// rounding slack read as Off and writes to them are discarded by the bounds
// check.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	w := r.Dx()
	bands := (r.Dy() + 7) / 8
	return &VerticalLSB{
		Pix:    make([]byte, w*bands),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (i *VerticalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds implements image.Image.
func (i *VerticalLSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *VerticalLSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt is the faster version of At().
//
// Out of bounds coordinates read as Off.
func (i *VerticalLSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return Off
	}
	offset, mask := i.PixOffset(x, y)
	return Bit(i.Pix[offset]&mask != 0)
}

// Set implements draw.Image.
//
// Out of bounds writes are discarded.
func (i *VerticalLSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, convertBit(c))
}

// SetBit is the faster version of Set().
//
// Out of bounds writes are discarded.
func (i *VerticalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	offset, mask := i.PixOffset(x, y)
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// PixOffset returns the index into Pix and the bit mask for the pixel at
// (x, y).
//
// It does not bounds-check the coordinates. This function is the only place
// the coordinate-to-bit mapping is defined; every pixel access goes through
// it so the mapping cannot diverge between call sites.
func (i *VerticalLSB) PixOffset(x, y int) (int, byte) {
	ny := y - i.Rect.Min.Y
	return (ny/8)*i.Stride + (x - i.Rect.Min.X), 1 << uint(ny&7)
}

var _ draw.Image = &VerticalLSB{}
var _ image.Image = &VerticalLSB{}
