// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

// SH1107 command set. See the command table in the SH1107 datasheet. Unlike
// the SSD1306, the memory addressing mode is a single byte command and the
// display start line is a two byte command (0xDC).
const (
	_COMSCANDEC          = 0xC8 // COM output scan direction reversed
	_COMSCANINC          = 0xC0 // COM output scan direction normal
	_DC_DC_SETTING       = 0xAD // DC-DC converter control; 2nd byte 0x8A|enable
	_DISPLAYALLON        = 0xA5 // All pixels lit regardless of RAM
	_DISPLAYALLON_RESUME = 0xA4 // Display follows RAM content
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE_PAGE     = 0x20 // Column auto-increment within the page
	_MEMORYMODE_VERTICAL = 0x21 // Page auto-increment within the column
	_NOP                 = 0xE3
	_NORMALDISPLAY       = 0xA6
	_PAGESTARTADDRESS    = 0xB0 // OR'd with the page index
	_SEGREMAP            = 0xA0 // Segment scan normal
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10 // OR'd with the column address high nibble
	_SETLOWCOLUMN        = 0x00 // OR'd with the column address low nibble
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1 // Segment scan reversed
	_SETSTARTLINE        = 0xDC // Two byte form, SH1107 specific
	_SETVCOMDETECT       = 0xDB
)

// getInitCmd returns the power-on configuration for the panel described by
// opts, as a single command transaction. The display is configured in page
// addressing mode; the values follow the datasheet power-on defaults except
// where noted.
func getInitCmd(opts *Opts) []byte {
	// 180° hardware rotation is the combination of reversed segment scan and
	// reversed COM scan.
	segRemap := byte(_SEGREMAP)
	comScan := byte(_COMSCANINC)
	if opts.Rotated {
		segRemap = _SETSEGMENTREMAP
		comScan = _COMSCANDEC
	}
	return []byte{
		_DISPLAYOFF,         // Display off while reconfiguring
		_MEMORYMODE_PAGE,    // Page addressing; flush re-addresses every page
		_PAGESTARTADDRESS,   // Cursor to page 0
		_SETSTARTLINE, 0x00, // Map RAM line 0 to the top of the panel
		segRemap,
		comScan,
		_SETMULTIPLEX, byte(opts.H - 1), // Number of lines driven
		_SETDISPLAYOFFSET, 0x00,
		_SETDISPLAYCLOCKDIV, 0x50, // Power-on reset oscillator, divide ratio 1
		_SETPRECHARGE, 0x22,
		_SETVCOMDETECT, 0x35,
		_DC_DC_SETTING, 0x8B, // Internal DC-DC converter enabled
		_SETCONTRAST, 0x7F,
		_DISPLAYALLON_RESUME, // Show RAM content, not the all-on test pattern
		_NORMALDISPLAY,
		_DISPLAYON,
	}
}
