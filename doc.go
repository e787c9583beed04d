// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sh1107 controls a monochrome OLED display via a SH1107 controller.
//
// The SH1107 exposes its display RAM as pages, horizontal bands of 8 rows
// each packed one byte per column. The driver keeps a full frame in memory,
// tracks which pages changed and only retransmits those on Flush. This is
// especially important when using I²C as the bus default speed (often
// 100kHz) is slow enough to saturate the bus at less than 10 frames per
// second.
//
// The device can be driven on either I²C or SPI with 4 wires. Changing
// between protocol is likely done through resistor soldering, for boards
// that support both.
//
// Some boards expose a RES / Reset pin. If present, it must be normally be
// High. When set to Low (Ground), it enables the reset circuitry. It can be
// used externally to this driver, if used, the driver must be reinstantiated.
//
// # Datasheets
//
// Product page:
//
// https://www.adafruit.com/product/5297
//
// https://www.displayfuture.com/Display/datasheet/controller/SH1107.pdf
package sh1107
