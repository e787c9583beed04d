// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import "fmt"

// controller is the narrow boundary between the framebuffer logic and the
// physical bus: one operation for command bytes, one for data bytes, each a
// single bus transaction. *Dev implements it over I²C or SPI; tests implement
// it in memory.
type controller interface {
	sendCommand([]byte) error
	sendData([]byte) error
}

// setCursor programs the controller's (page, column) write pointer as one
// command transaction: page select, column low nibble, column high nibble.
// The SH1107 has no column base offset (the SH1106 needs +2; this one does
// not).
//
// Out of range arguments are a programming error, rejected before any bus
// traffic.
func setCursor(ctrl controller, g geometry, page, column int) error {
	if page < 0 || page >= g.pageCount() {
		return fmt.Errorf("sh1107: invalid page %d", page)
	}
	if column < 0 || column >= g.w {
		return fmt.Errorf("sh1107: invalid column %d", column)
	}
	return ctrl.sendCommand([]byte{
		_PAGESTARTADDRESS | byte(page),
		_SETLOWCOLUMN | (byte(column) & 0x0F),
		_SETHIGHCOLUMN | (byte(column) >> 4),
	})
}

// flushDirty transmits every dirty page in ascending page order. Each page
// is re-addressed to its column 0 first, then streamed whole as one data
// transaction, then marked clean. Re-addressing every page rather than
// trusting the auto-increment to wrap page boundaries sidesteps a documented
// quirk of this controller family; sending the full page rather than a
// column sub-range keeps a failed transaction from ever leaving a partially
// described page behind.
//
// A transport error stops the flush where it is: pages already sent stay
// clean, the failed page and everything after it stay dirty, so calling
// flushDirty again resumes exactly the remaining work. Retry policy belongs
// to the caller.
func flushDirty(ctrl controller, fb *frameBuffer) error {
	for page := 0; page < fb.pageCount(); page++ {
		if !fb.pageDirty(page) {
			continue
		}
		if err := setCursor(ctrl, fb.geometry, page, 0); err != nil {
			return err
		}
		if err := ctrl.sendData(fb.page(page)); err != nil {
			return err
		}
		fb.markClean(page)
	}
	return nil
}
