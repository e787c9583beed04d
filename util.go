// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

// Bitfield helpers for the per-page dirty flags.

// bitfieldLen returns the number of bytes needed to hold n flags.
func bitfieldLen(n int) int {
	return (n + 7) / 8
}

func setBit(buf []byte, n int) {
	buf[n/8] |= 1 << uint(n%8)
}

func unsetBit(buf []byte, n int) {
	buf[n/8] &^= 1 << uint(n%8)
}

func hasBit(buf []byte, n int) bool {
	return buf[n/8]&(1<<uint(n%8)) != 0
}
