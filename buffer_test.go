// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"testing"

	"github.com/shulltronics/sh1107/image1bit"
)

func TestGeometryPageCount(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{128, 128, 16},
		{128, 64, 8},
		{64, 128, 16},
		{8, 8, 1},
	}
	for _, tt := range tests {
		if got := (geometry{w: tt.w, h: tt.h}).pageCount(); got != tt.want {
			t.Errorf("geometry{%d, %d}.pageCount() = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestFrameBufferMapping(t *testing.T) {
	tests := []struct {
		name     string
		x, y     int
		wantPage int
		wantByte int
		wantBits byte
	}{
		{"origin", 0, 0, 0, 0, 0x01},
		{"band bottom", 0, 7, 0, 0, 0x80},
		{"next band", 0, 8, 1, 0, 0x01},
		{"mid panel", 5, 64, 8, 5, 0x01},
		{"last pixel", 127, 127, 15, 127, 0x80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFrameBuffer(geometry{w: 128, h: 128})
			fb.setPixel(tt.x, tt.y, image1bit.On)
			for page := 0; page < fb.pageCount(); page++ {
				for i, b := range fb.page(page) {
					want := byte(0)
					if page == tt.wantPage && i == tt.wantByte {
						want = tt.wantBits
					}
					if b != want {
						t.Fatalf("page %d byte %d = %#02x, want %#02x", page, i, b, want)
					}
				}
			}
		})
	}
}

func TestFrameBufferRoundTrip(t *testing.T) {
	fb := newFrameBuffer(geometry{w: 16, h: 16})
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			fb.setPixel(x, y, image1bit.On)
			if fb.pixel(x, y) != image1bit.On {
				t.Fatalf("pixel(%d, %d) not On after set", x, y)
			}
			fb.setPixel(x, y, image1bit.Off)
			if fb.pixel(x, y) != image1bit.Off {
				t.Fatalf("pixel(%d, %d) not Off after clear", x, y)
			}
		}
	}
}

func TestFrameBufferDirty(t *testing.T) {
	fb := newFrameBuffer(geometry{w: 128, h: 128})
	for page := 0; page < fb.pageCount(); page++ {
		if fb.pageDirty(page) {
			t.Fatalf("fresh buffer: page %d dirty", page)
		}
	}

	// A write dirties exactly the page it lands in.
	fb.setPixel(5, 64, image1bit.On)
	for page := 0; page < fb.pageCount(); page++ {
		if got, want := fb.pageDirty(page), page == 8; got != want {
			t.Errorf("after set: pageDirty(%d) = %t, want %t", page, got, want)
		}
	}

	// Re-writing the same value does not re-dirty a flushed page.
	fb.markClean(8)
	fb.setPixel(5, 64, image1bit.On)
	if fb.pageDirty(8) {
		t.Error("no-op write dirtied the page")
	}

	// Changing the value does.
	fb.setPixel(5, 64, image1bit.Off)
	if !fb.pageDirty(8) {
		t.Error("changing write left the page clean")
	}
}

func TestFrameBufferOutOfRange(t *testing.T) {
	fb := newFrameBuffer(geometry{w: 128, h: 64})
	for _, p := range []struct{ x, y int }{
		{-1, 0}, {0, -1}, {128, 0}, {0, 64}, {1000, 1000},
	} {
		fb.setPixel(p.x, p.y, image1bit.On)
		if fb.pixel(p.x, p.y) != image1bit.Off {
			t.Errorf("pixel(%d, %d) out of range reads On", p.x, p.y)
		}
	}
	for page := 0; page < fb.pageCount(); page++ {
		if fb.pageDirty(page) {
			t.Fatalf("out of range write dirtied page %d", page)
		}
	}
}

func TestFrameBufferClear(t *testing.T) {
	fb := newFrameBuffer(geometry{w: 128, h: 128})
	fb.setPixel(0, 0, image1bit.On)
	fb.setPixel(127, 127, image1bit.On)
	fb.markClean(0)
	fb.markClean(15)

	fb.clear()
	for page := 0; page < fb.pageCount(); page++ {
		if !fb.pageDirty(page) {
			t.Errorf("after clear: page %d not dirty", page)
		}
		for i, b := range fb.page(page) {
			if b != 0 {
				t.Fatalf("after clear: page %d byte %d = %#02x", page, i, b)
			}
		}
	}
	if fb.pixel(0, 0) != image1bit.Off || fb.pixel(127, 127) != image1bit.Off {
		t.Error("after clear: pixel still On")
	}
}

func TestFrameBufferWriteFrame(t *testing.T) {
	fb := newFrameBuffer(geometry{w: 128, h: 128})
	frame := make([]byte, 16*128)
	frame[8*128+5] = 0x01 // page 8, column 5

	fb.writeFrame(frame)
	for page := 0; page < fb.pageCount(); page++ {
		if got, want := fb.pageDirty(page), page == 8; got != want {
			t.Errorf("pageDirty(%d) = %t, want %t", page, got, want)
		}
	}
	if fb.pixel(5, 64) != image1bit.On {
		t.Error("frame content not applied")
	}

	// Writing the identical frame again dirties nothing new.
	fb.markClean(8)
	fb.writeFrame(frame)
	for page := 0; page < fb.pageCount(); page++ {
		if fb.pageDirty(page) {
			t.Fatalf("identical frame dirtied page %d", page)
		}
	}
}
