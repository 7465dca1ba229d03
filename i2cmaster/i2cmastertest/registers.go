// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmastertest

// Registers simulates a device with a register pointer, such as a real-time
// clock or an EEPROM: the first byte written after the address sets the
// pointer, further writes store at the pointer and reads return from it, the
// pointer incrementing and wrapping after each access.
type Registers struct {
	Addr uint16
	Data []byte
	// NackAddress makes the device ignore its address.
	NackAddress bool
	// NackPointer makes the device reject the register pointer byte.
	NackPointer bool

	ptr     int
	havePtr bool
}

// Address implements Target.
func (r *Registers) Address() uint16 {
	return r.Addr
}

// Begin implements Target.
func (r *Registers) Begin(read bool) bool {
	if r.NackAddress {
		return false
	}
	if !read {
		r.havePtr = false
	}
	return true
}

// Write implements Target.
func (r *Registers) Write(b byte) bool {
	if !r.havePtr {
		if r.NackPointer || int(b) >= len(r.Data) {
			return false
		}
		r.ptr = int(b)
		r.havePtr = true
		return true
	}
	r.Data[r.ptr] = b
	r.ptr = (r.ptr + 1) % len(r.Data)
	return true
}

// Read implements Target.
func (r *Registers) Read() byte {
	if len(r.Data) == 0 {
		return 0xFF
	}
	b := r.Data[r.ptr]
	r.ptr = (r.ptr + 1) % len(r.Data)
	return b
}

var _ Target = &Registers{}
