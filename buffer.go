// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"bytes"
	"image"

	"github.com/shulltronics/sh1107/image1bit"
)

// geometry is the panel dimension set, fixed at construction.
type geometry struct {
	// w is the number of columns.
	w int
	// h is the number of rows. Always a multiple of 8.
	h int
}

func (g geometry) pageCount() int {
	return g.h / 8
}

// frameBuffer is the in-host mirror of the display RAM: pageCount() pages of
// w column bytes each, plus one dirty flag per page.
//
// A page is dirty when its buffered content has changed since the last
// successful transmission to the controller. The flags are the only state
// the flush path consults; the pixel data itself never records history.
type frameBuffer struct {
	geometry
	img   *image1bit.VerticalLSB
	dirty []byte // 1 flag per page
}

func newFrameBuffer(g geometry) *frameBuffer {
	return &frameBuffer{
		geometry: g,
		img:      image1bit.NewVerticalLSB(image.Rect(0, 0, g.w, g.h)),
		dirty:    make([]byte, bitfieldLen(g.pageCount())),
	}
}

// setPixel sets or clears one pixel and marks its page dirty if the stored
// bit actually changed. Writes that do not change the bit leave the page
// clean so they cost nothing at flush time. Out of range coordinates are
// ignored.
//
// This is the only function that derives a page index from a y coordinate;
// the byte/bit offset math lives in image1bit.PixOffset.
func (f *frameBuffer) setPixel(x, y int, b image1bit.Bit) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	if f.img.BitAt(x, y) == b {
		return
	}
	f.img.SetBit(x, y, b)
	setBit(f.dirty, y/8)
}

// pixel reads one pixel. Out of range coordinates read as Off.
func (f *frameBuffer) pixel(x, y int) image1bit.Bit {
	return f.img.BitAt(x, y)
}

// clear zeroes every page and marks every page dirty. The controller still
// shows the old frame until the next flush.
func (f *frameBuffer) clear() {
	for i := range f.img.Pix {
		f.img.Pix[i] = 0
	}
	for page := 0; page < f.pageCount(); page++ {
		setBit(f.dirty, page)
	}
}

// writeFrame replaces the whole buffer content, marking only the pages whose
// bytes differ from what is already buffered.
//
// len(pixels) must equal pageCount()*w; the caller validates.
func (f *frameBuffer) writeFrame(pixels []byte) {
	for page := 0; page < f.pageCount(); page++ {
		start, end := page*f.w, (page+1)*f.w
		if bytes.Equal(f.img.Pix[start:end], pixels[start:end]) {
			continue
		}
		copy(f.img.Pix[start:end], pixels[start:end])
		setBit(f.dirty, page)
	}
}

// page returns page i's column bytes. The slice aliases the buffer and must
// not be retained across mutations.
func (f *frameBuffer) page(i int) []byte {
	return f.img.Pix[i*f.w : (i+1)*f.w]
}

func (f *frameBuffer) pageDirty(i int) bool {
	return hasBit(f.dirty, i)
}

func (f *frameBuffer) markClean(i int) {
	unsetBit(f.dirty, i)
}
