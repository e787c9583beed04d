// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sh1107test emulates a SH1107 OLED panel behind an I²C bus.
//
// Useful to exercise display code without the hardware: point the driver at a
// Panel instead of a real bus, then inspect the decoded frame with Image or
// print it to a terminal with Render using ANSI color codes.
//
// The emulated controller holds the full 16 page × 128 column display RAM
// regardless of the panel geometry, like the real chip does; the panel
// dimensions only select the window that is visible on the glass.
package sh1107test

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/maruel/ansi256"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/shulltronics/sh1107/image1bit"
)

// RAM geometry of the controller itself, independent of the attached glass.
const (
	ramW     = 128
	ramH     = 128
	ramPages = ramH / 8
)

// Opts represents the options available for the emulated panel.
type Opts struct {
	// W and H is the size of the glass in pixels, at most 128x128.
	W int
	H int
	// Addr is the I²C device address the panel answers to. Defaults to 0x3C.
	Addr uint16
	// Palette used by Render. Defaults to ansi256.Default.
	Palette *ansi256.Palette

	_ struct{}
}

// Panel is a SH1107 emulator that can be used wherever the driver expects an
// i2c.Bus.
type Panel struct {
	w       int
	h       int
	addr    uint16
	palette ansi256.Palette

	mu        sync.Mutex
	freq      physic.Frequency
	ram       []byte
	page      int
	col       int
	vertical  bool
	on        bool
	allOn     bool
	inverted  bool
	segRemap  bool
	comRev    bool
	contrast  byte
	multiplex byte
	dcdc      byte
	clock     byte
	precharge byte
	vcom      byte
	startLine int
	offset    int
}

// New returns an emulated panel of the requested geometry.
func New(opts *Opts) (*Panel, error) {
	if opts.W < 1 || opts.W > ramW {
		return nil, fmt.Errorf("sh1107test: invalid panel width %d", opts.W)
	}
	if opts.H < 1 || opts.H > ramH {
		return nil, fmt.Errorf("sh1107test: invalid panel height %d", opts.H)
	}
	addr := opts.Addr
	if addr == 0 {
		addr = 0x3C
	}
	pal := opts.Palette
	if pal == nil {
		pal = ansi256.Default
	}
	return &Panel{
		w:       opts.W,
		h:       opts.H,
		addr:    addr,
		palette: *pal,
		ram:     make([]byte, ramPages*ramW),
	}, nil
}

func (p *Panel) String() string {
	return "panel"
}

// SetSpeed implements i2c.Bus.
func (p *Panel) SetSpeed(f physic.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freq = f
	return nil
}

// Tx implements i2c.Bus. It decodes the SH1107 I²C framing: a transaction is
// a control byte, 0x00 for commands or 0x40 for display RAM data, followed by
// the payload.
func (p *Panel) Tx(addr uint16, w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if addr != p.addr {
		return fmt.Errorf("sh1107test: unexpected device address %#02x", addr)
	}
	if len(r) != 0 {
		return errors.New("sh1107test: read transactions are not supported")
	}
	if len(w) == 0 {
		return errors.New("sh1107test: empty write")
	}
	switch w[0] {
	case 0x00:
		return p.command(w[1:])
	case 0x40:
		p.data(w[1:])
		return nil
	default:
		return fmt.Errorf("sh1107test: unsupported control byte %#02x", w[0])
	}
}

// command decodes a command stream. Unknown opcodes are rejected so a driver
// bug shows up as a transaction error instead of silent garbage.
func (p *Panel) command(c []byte) error {
	for i := 0; i < len(c); i++ {
		op := c[i]
		switch {
		case op == 0xAE:
			p.on = false
		case op == 0xAF:
			p.on = true
		case op == 0x20:
			p.vertical = false
		case op == 0x21:
			p.vertical = true
		case op == 0xA0:
			p.segRemap = false
		case op == 0xA1:
			p.segRemap = true
		case op == 0xC0:
			p.comRev = false
		case op == 0xC8:
			p.comRev = true
		case op == 0xA4:
			p.allOn = false
		case op == 0xA5:
			p.allOn = true
		case op == 0xA6:
			p.inverted = false
		case op == 0xA7:
			p.inverted = true
		case op == 0xE3:
			// NOP.
		case op&0xF0 == 0xB0:
			p.page = int(op & 0x0F)
		case op&0xF0 == 0x00:
			p.col = p.col&^0x0F | int(op&0x0F)
		case op >= 0x10 && op <= 0x17:
			p.col = p.col&0x0F | int(op&0x07)<<4
		case op == 0x81 || op == 0xA8 || op == 0xAD || op == 0xD3 ||
			op == 0xD5 || op == 0xD9 || op == 0xDB || op == 0xDC:
			i++
			if i == len(c) {
				return fmt.Errorf("sh1107test: truncated command %#02x", op)
			}
			arg := c[i]
			switch op {
			case 0x81:
				p.contrast = arg
			case 0xA8:
				p.multiplex = arg
			case 0xAD:
				p.dcdc = arg
			case 0xD3:
				p.offset = int(arg)
			case 0xD5:
				p.clock = arg
			case 0xD9:
				p.precharge = arg
			case 0xDB:
				p.vcom = arg
			case 0xDC:
				p.startLine = int(arg)
			}
		default:
			return fmt.Errorf("sh1107test: unsupported command %#02x", op)
		}
	}
	return nil
}

// data writes a payload into display RAM at the current page and column,
// advancing the address pointer the way the selected memory mode does.
func (p *Panel) data(b []byte) {
	for _, v := range b {
		p.ram[p.page*ramW+p.col] = v
		if p.vertical {
			p.page++
			if p.page == ramPages {
				p.page = 0
				p.col++
				if p.col == ramW {
					p.col = 0
				}
			}
		} else {
			p.col++
			if p.col == ramW {
				p.col = 0
			}
		}
	}
}

// On reports whether the display drive is enabled.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Inverted reports whether the panel drives RAM content inverted.
func (p *Panel) Inverted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inverted
}

// Contrast returns the last programmed contrast value.
func (p *Panel) Contrast() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contrast
}

// Image returns what the glass shows, as RAM content mapped through the
// programmed start line, display offset, segment remap and common scan
// direction. Optical state (display off, invert, all on) is not applied;
// Render handles that.
func (p *Panel) Image() *image1bit.VerticalLSB {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, p.w, p.h))
	for y := 0; y < p.h; y++ {
		row := (y + p.startLine + p.offset) % ramH
		gy := y
		if p.comRev {
			gy = p.h - 1 - y
		}
		for x := 0; x < p.w; x++ {
			if p.ram[(row/8)*ramW+x]&(1<<uint(row&7)) == 0 {
				continue
			}
			gx := x
			if p.segRemap {
				gx = p.w - 1 - x
			}
			img.SetBit(gx, gy, image1bit.On)
		}
	}
	return img
}

// Render draws the panel to w using ANSI color codes, one block per pixel,
// applying the optical state on top of the glass image.
func (p *Panel) Render(w io.Writer) error {
	img := p.Image()
	p.mu.Lock()
	on, allOn, inverted := p.on, p.allOn, p.inverted
	p.mu.Unlock()

	white := color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	black := color.NRGBA{A: 0xFF}
	var buf bytes.Buffer
	for y := 0; y < p.h; y++ {
		_, _ = buf.WriteString("\033[0m")
		for x := 0; x < p.w; x++ {
			lit := img.BitAt(x, y) == image1bit.On
			if inverted {
				lit = !lit
			}
			if allOn {
				lit = true
			}
			if !on {
				lit = false
			}
			c := black
			if lit {
				c = white
			}
			_, _ = io.WriteString(&buf, p.palette.Block(c))
		}
		_, _ = buf.WriteString("\033[0m\n")
	}
	_, err := buf.WriteTo(w)
	return err
}

var _ i2c.Bus = &Panel{}
var _ fmt.Stringer = &Panel{}
