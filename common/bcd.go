// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains the codecs shared by the device drivers.
package common

// ToBCD encodes a decimal value in 0..99 as packed binary-coded decimal, the
// tens digit in the high nibble. Values above 99 do not fit a single byte and
// must be rejected by the caller.
func ToBCD(value uint8) byte {
	return (value/10)*16 + value%10
}

// ToDecimal decodes a packed binary-coded decimal byte.
func ToDecimal(bcd byte) uint8 {
	return (bcd/16)*10 + bcd%16
}
