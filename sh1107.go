// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/shulltronics/sh1107/image1bit"
)

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W:    128,
	H:    128,
	Addr: 0x3C,
}

// Opts defines the options for the device.
type Opts struct {
	// W is the panel width in pixels (columns). Valid range is [8, 128].
	W int
	// H is the panel height in pixels (rows). Valid range is [8, 128] and it
	// must be a multiple of 8, the height of one page.
	H int
	// Rotated flips the panel by 180° in hardware, by reversing both the
	// segment scan and the COM scan direction.
	Rotated bool
	// Addr is the I²C address, used by NewI2C. Zero selects the default 0x3C;
	// boards strapping SA0 high use 0x3D.
	Addr uint16
}

// NewSPI returns a Dev object that communicates over SPI to a SH1107 display
// controller.
//
// # Wiring
//
// Connect SDA to SPI_MOSI, SCK to SPI_CLK, CS to SPI_CS.
//
// In 3-wire SPI mode, pass nil for 'dc'. In 4-wire SPI mode, pass a GPIO pin
// to use.
//
// The RES (reset) pin can be used outside of this driver but is not supported
// natively. In case of external reset via the RES pin, this device driver
// must be reinstantiated.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == gpio.INVALID {
		return nil, fmt.Errorf("sh1107: use nil for dc to use 3-wire mode, do not use gpio.INVALID")
	}
	bits := 8
	if dc == nil {
		// 3-wire SPI uses 9 bits per word.
		bits = 9
	} else if err := dc.Out(gpio.Low); err != nil {
		return nil, err
	}
	c, err := p.Connect(3300*physic.KiloHertz, spi.Mode0, bits)
	if err != nil {
		return nil, err
	}
	return newDev(c, opts, true, dc)
}

// NewI2C returns a Dev object that communicates over I²C to a SH1107 display
// controller.
func NewI2C(i i2c.Bus, opts *Opts) (*Dev, error) {
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultOpts.Addr
	}
	// Maximum clock speed is 1/2.5µs = 400KHz.
	return newDev(&i2c.Dev{Bus: i, Addr: addr}, opts, false, nil)
}

// Dev is an open handle to the display controller.
//
// All drawing goes through an in-memory mirror of the controller's display
// RAM; pages whose content changed are tracked and Flush transmits exactly
// those. SetPixel/Pixel/Clear operate on the buffer only; Draw and Write
// additionally flush, so the panel is updated when they return.
type Dev struct {
	// Communication.
	c   conn.Conn
	dc  gpio.PinOut
	spi bool

	// Panel geometry, fixed at construction.
	rect image.Rectangle

	// fb mirrors the display RAM, one dirty flag per page.
	fb *frameBuffer

	halted bool
}

func (d *Dev) String() string {
	if d.spi {
		return fmt.Sprintf("sh1107.Dev{%s, %s, %s}", d.c, d.dc, d.rect.Max)
	}
	return fmt.Sprintf("sh1107.Dev{%s, %s}", d.c, d.rect.Max)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// At returns the buffered value of the pixel at (x, y).
//
// It reads the host mirror, not the panel: a pixel set but not yet flushed
// reads back with its new value. Out of range coordinates read as Off.
func (d *Dev) At(x, y int) color.Color {
	return d.fb.pixel(x, y)
}

// Set implements draw.Image.
//
// The color is reduced to one bit by image1bit.BitModel (50% luminance
// threshold). The write lands in the buffer only; call Flush to update the
// panel. Out of range writes are discarded, following the image convention,
// so clipped drawing never fails.
func (d *Dev) Set(x, y int, c color.Color) {
	d.fb.setPixel(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit))
}

// SetPixel turns one pixel on or off in the buffer.
//
// The page containing the pixel is marked for transmission only if the pixel
// actually changed, so redundant writes cost nothing at Flush time. Out of
// range coordinates are discarded. The bus is not touched; call Flush.
func (d *Dev) SetPixel(x, y int, on bool) {
	d.fb.setPixel(x, y, image1bit.Bit(on))
}

// Pixel reads one pixel back from the buffer. Out of range coordinates read
// as false.
func (d *Dev) Pixel(x, y int) bool {
	return bool(d.fb.pixel(x, y))
}

// Clear turns every buffered pixel off and marks the whole frame for
// transmission. The panel keeps showing the previous frame until Flush is
// called.
func (d *Dev) Clear() {
	d.fb.clear()
}

// Flush transmits every page whose buffered content changed since the last
// successful flush, in ascending page order, re-addressing the controller at
// the start of each page.
//
// On a transport error the flush stops: pages already transmitted are clean,
// the rest stay marked, and calling Flush again sends exactly the remainder.
// The error is returned unchanged.
func (d *Dev) Flush() error {
	return flushDirty(d, d.fb)
}

// Draw implements display.Drawer.
//
// It draws synchronously, once this function returns, the display is
// updated: the source is composed into the buffer and all changed pages are
// flushed. It means that on slow buses (I²C), it may be preferable to defer
// Draw() calls to a background goroutine.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if img, ok := src.(*image1bit.VerticalLSB); ok && r == d.rect && img.Rect == d.rect && sp.X == 0 && sp.Y == 0 {
		// Exact size, full frame, image1bit encoding: fast path that diffs
		// whole pages instead of converting pixel by pixel.
		d.fb.writeFrame(img.Pix)
		return d.Flush()
	}
	draw.Src.Draw(d, r, src, sp)
	return d.Flush()
}

// Write writes a buffer of pixels to the display, then flushes it.
//
// The format is unusual as each byte represents 8 vertical pixels at a time.
// The format is horizontal bands of 8 pixels high. This function accepts the
// content of image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.fb.img.Pix) {
		return 0, fmt.Errorf("sh1107: invalid pixel stream length; expected %d bytes, got %d bytes", len(d.fb.img.Pix), len(pixels))
	}
	d.fb.writeFrame(pixels)
	if err := d.Flush(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.sendCommand([]byte{_SETCONTRAST, level})
}

// SetDisplayStartLine shifts the panel to start displaying from the given
// RAM line, effectively scrolling the screen vertically without rewriting
// display RAM.
//
// startLine must be in [0, 127]. The SH1107 uses a dedicated two byte
// command for this, unlike the rest of the family.
func (d *Dev) SetDisplayStartLine(startLine byte) error {
	if startLine > 0x7F {
		return fmt.Errorf("sh1107: invalid start line %d", startLine)
	}
	return d.sendCommand([]byte{_SETSTARTLINE, startLine})
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	b := []byte{_NORMALDISPLAY}
	if blackOnWhite {
		b[0] = _INVERTDISPLAY
	}
	return d.sendCommand(b)
}

// Halt turns off the display.
//
// Sending any other command afterward reenables the display.
func (d *Dev) Halt() error {
	d.halted = false
	err := d.sendCommand([]byte{_DISPLAYOFF})
	if err == nil {
		d.halted = true
	}
	return err
}

// newDev is the common initialization code that is independent of the
// communication protocol (I²C or SPI) being used.
func newDev(c conn.Conn, opts *Opts, usingSPI bool, dc gpio.PinOut) (*Dev, error) {
	// Panel geometry is validated before the first byte hits the bus.
	if opts.W < 8 || opts.W > 128 {
		return nil, fmt.Errorf("sh1107: invalid width %d", opts.W)
	}
	if opts.H < 8 || opts.H > 128 || opts.H&7 != 0 {
		return nil, fmt.Errorf("sh1107: invalid height %d", opts.H)
	}
	d := &Dev{
		c:    c,
		dc:   dc,
		spi:  usingSPI,
		rect: image.Rect(0, 0, opts.W, opts.H),
		fb:   newFrameBuffer(geometry{w: opts.W, h: opts.H}),
	}
	// The buffer starts zeroed with every page clean; the display RAM content
	// is undefined at power on, so a first Clear+Flush (or a full frame draw)
	// is needed to put the panel in a known state.
	if err := d.sendCommand(getInitCmd(opts)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) sendData(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		if err := d.sendCommand(nil); err != nil {
			return err
		}
	}
	if d.spi {
		// 4-wire SPI.
		if err := d.dc.Out(gpio.High); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cData}, c...), nil)
}

func (d *Dev) sendCommand(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		c = append([]byte{_DISPLAYON}, c...)
		d.halted = false
	}
	if d.spi {
		if d.dc == nil {
			// 3-wire SPI.
			return fmt.Errorf("sh1107: 3-wire SPI mode is not yet implemented")
		}
		// 4-wire SPI.
		if err := d.dc.Out(gpio.Low); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cCmd}, c...), nil)
}

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes
)

var _ display.Drawer = &Dev{}
var _ draw.Image = &Dev{}
